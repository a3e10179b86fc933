package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorMessageFormats(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{New(CodeSSH, "connect failed"), "connect failed"},
		{Wrap(CodeTimeout, "dial", stderrors.New("refused")), "dial: refused"},
		{&Error{Code: CodeConfig, Err: stderrors.New("bad yaml")}, "bad yaml"},
		{&Error{Code: CodeAPI}, "api"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("root cause")
	wrapped := Wrap(CodeToolExecution, "run tool", inner)

	if !stderrors.Is(wrapped, inner) {
		t.Fatal("expected errors.Is to reach the inner error")
	}

	var coded *Error
	if !stderrors.As(wrapped, &coded) {
		t.Fatal("expected errors.As to find *Error")
	}
	if coded.Code != CodeToolExecution {
		t.Fatalf("unexpected code: %s", coded.Code)
	}
}

func TestNilError(t *testing.T) {
	var e *Error
	if e.Error() != "" {
		t.Fatal("nil error should render empty")
	}
	if e.Unwrap() != nil {
		t.Fatal("nil error should unwrap to nil")
	}
}
