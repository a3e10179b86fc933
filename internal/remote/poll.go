package remote

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	apperrors "github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/errors"
)

// PollInterval is the pause between readiness probes.
const PollInterval = 2 * time.Second

// WaitForPort polls the target over the executor until a TCP listener shows
// up on the given port or the timeout elapses.
func WaitForPort(ctx context.Context, ex Executor, osType OS, port int, timeout time.Duration) error {
	if timeout < time.Second {
		timeout = time.Second
	}

	var command string
	switch osType {
	case OSWindows:
		command = fmt.Sprintf(`netstat -ano | findstr LISTENING | findstr :%d`, port)
	case OSLinux:
		command = `bash -lc "ss -ltn || netstat -ltn"`
	default:
		return apperrors.New(apperrors.CodeToolExecution, "unsupported operating system")
	}

	pattern := regexp.MustCompile(fmt.Sprintf(`:%d(\s|$)`, port))
	deadline := time.Now().Add(timeout)

	for {
		out, errOut, err := ex.Run(ctx, command)
		if err == nil && pattern.MatchString(out+"\n"+errOut) {
			return nil
		}

		if time.Now().After(deadline) {
			return apperrors.New(apperrors.CodeTimeout,
				fmt.Sprintf("timed out after %s waiting for port %d to listen", timeout, port))
		}
		select {
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.CodeTimeout, "port poll cancelled", ctx.Err())
		case <-time.After(PollInterval):
		}
	}
}

// WaitForHTTP polls the URL until a response with status below 500 arrives or
// the timeout elapses. The last observed status code is returned either way;
// zero means no response was ever received.
func WaitForHTTP(ctx context.Context, url string, timeout time.Duration) (int, error) {
	if timeout < time.Second {
		timeout = time.Second
	}

	client := &http.Client{Timeout: 3 * time.Second}
	deadline := time.Now().Add(timeout)

	lastStatus := 0
	var lastErr error

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, apperrors.Wrap(apperrors.CodeToolExecution, "build request", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			resp.Body.Close()
			lastStatus = resp.StatusCode
			// A 404 from Tomcat still proves the connector answers; only
			// server errors keep the poll going.
			if resp.StatusCode < http.StatusInternalServerError {
				return lastStatus, nil
			}
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
		}

		if time.Now().After(deadline) {
			return lastStatus, apperrors.Wrap(apperrors.CodeTimeout,
				fmt.Sprintf("timed out after %s waiting for %s", timeout, url), lastErr)
		}
		select {
		case <-ctx.Done():
			return lastStatus, apperrors.Wrap(apperrors.CodeTimeout, "http poll cancelled", ctx.Err())
		case <-time.After(PollInterval):
		}
	}
}
