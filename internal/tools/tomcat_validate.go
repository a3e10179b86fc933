package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/remote"
)

const tomcatValidateName = "remote_tomcat_validate"

// TomcatValidateParams carries the caller-facing validation knobs.
type TomcatValidateParams struct {
	Server       string `json:"server,omitempty" jsonschema:"description=Inventory server name (optional when only one server is configured)"`
	TomcatHome   string `json:"tomcat_home,omitempty" jsonschema:"description=Tomcat home directory (reported back for reference only)"`
	Port         int    `json:"port,omitempty" jsonschema:"description=Override the HTTP port checked for readiness"`
	HostTemplate string `json:"host_template,omitempty" jsonschema:"description=Override the HTTP host template (defaults to {host})"`
	WaitSeconds  int    `json:"wait_seconds,omitempty" jsonschema:"description=Override wait time for HTTP readiness"`
}

func (rt *Runtime) registerTomcatValidate(r *Registry) {
	r.RegisterTool(&ToolDefinition{
		NameValue:        tomcatValidateName,
		DescriptionValue: "Validate a remote Tomcat instance by polling its HTTP endpoint from this machine.",
		ParametersValue:  mustSchemaParametersFor[TomcatValidateParams](),
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var p TomcatValidateParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			// Validation talks HTTP from the controller, so no SSH dial.
			server, err := rt.Inventory.Lookup(p.Server)
			if err != nil {
				return failure(tomcatValidateName, err.Error(), nil).Render(), nil
			}
			result := TomcatValidate(ctx, rt.section("post_install", "tomcat_validation"), server, p, rt.Logger)
			rt.Logger.Info().
				Str("tool", tomcatValidateName).
				Str("server", server.Name).
				Str("status", string(result.Status)).
				Msg(result.Details)
			return result.Render(), nil
		},
	})
}

// TomcatValidate polls http://<host>:<port> until Tomcat answers with any
// status below 500 or the wait budget runs out. The probe runs from the
// controller, not over SSH, so it exercises the same path a browser would.
func TomcatValidate(ctx context.Context, section config.Section, server *config.Server, p TomcatValidateParams, logger zerolog.Logger) *Result {
	var logs []string

	waitSeconds := p.WaitSeconds
	if waitSeconds <= 0 {
		waitSeconds = section.Int("wait_seconds", 30)
	}
	if waitSeconds < 1 {
		waitSeconds = 1
	}
	hostTemplate := p.HostTemplate
	if hostTemplate == "" {
		hostTemplate = section.String("host_template", "{host}")
	}
	port := p.Port
	if port <= 0 {
		port = section.Int("port", 8080)
	}

	httpHost := strings.ReplaceAll(hostTemplate, "{host}", server.Host)
	httpHost = strings.ReplaceAll(httpHost, "{name}", server.Name)
	url := fmt.Sprintf("http://%s:%d", httpHost, port)

	logs = append(logs, fmt.Sprintf("Waiting up to %ds for HTTP %s", waitSeconds, url))
	logger.Debug().Str("tool", tomcatValidateName).Str("url", url).Msg("polling endpoint")

	statusCode, err := remote.WaitForHTTP(ctx, url, time.Duration(waitSeconds)*time.Second)

	running := err == nil && statusCode >= 200 && statusCode < 500
	status := StatusFailed
	var details string
	if running {
		status = StatusSuccess
		details = fmt.Sprintf("Tomcat responded at %s with HTTP %d", url, statusCode)
		logs = append(logs, fmt.Sprintf("Received HTTP %d", statusCode))
	} else {
		reason := "unknown error"
		if err != nil {
			reason = err.Error()
		}
		details = fmt.Sprintf("Tomcat did not respond at %s: %s", url, reason)
		logs = append(logs, "Timed out waiting for HTTP response")
	}

	return &Result{
		Name:       tomcatValidateName,
		Status:     status,
		Command:    "Validate Tomcat at " + url,
		Details:    details,
		Output:     joinLogs(logs),
		URL:        url,
		StatusCode: statusCode,
		TomcatHome: p.TomcatHome,
	}
}
