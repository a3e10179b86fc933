// Copyright (C) 2025 Mohammad Gayas Khan
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package workflow runs the fixed provisioning sequence against every server
// in the inventory: Java, then Tomcat, then start, validate, and an optional
// stop. The conversational agent drives single tools; this package is the
// batch path.
package workflow

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/config"
	"github.com/MohammadGayasKhan/AgenticAiBot4Tomcat/internal/tools"
)

// Step names as reported per server.
const (
	StepConnection = "connection"
	StepJava       = "pre_install_java"
	StepTomcat     = "install_tomcat"
	StepStart      = "post_install_tomcat_start"
	StepValidate   = "post_install_tomcat_validation"
	StepStop       = "post_install_tomcat_stop"
)

// StepResult pairs a workflow step with its tool outcome.
type StepResult struct {
	Step   string        `json:"step"`
	Result *tools.Result `json:"result"`
}

// ServerReport collects one server's run.
type ServerReport struct {
	Server string       `json:"server"`
	Steps  []StepResult `json:"steps"`
}

// Failed reports whether any step of the run failed.
func (r *ServerReport) Failed() bool {
	for _, step := range r.Steps {
		if step.Result != nil && step.Result.Status == tools.StatusFailed {
			return true
		}
	}
	return false
}

// Runner executes the provisioning sequence. A nil Dial uses SSH.
type Runner struct {
	Settings  *config.Settings
	Inventory *config.Inventory
	Dial      tools.DialFunc
	Logger    zerolog.Logger

	// SkipStop leaves Tomcat running even when a stop block is configured.
	SkipStop bool
}

// NewRunner wires a Runner with the production dialer unless one is given.
func NewRunner(settings *config.Settings, inventory *config.Inventory, dial tools.DialFunc, logger zerolog.Logger) *Runner {
	if dial == nil {
		dial = tools.DialSSH
	}
	return &Runner{
		Settings:  settings,
		Inventory: inventory,
		Dial:      dial,
		Logger:    logger,
	}
}

// Run executes the sequence for every server (or just the named one). A
// server that cannot be reached is reported and the run moves on.
func (r *Runner) Run(ctx context.Context, serverFilter string) ([]ServerReport, error) {
	var servers []config.Server
	if serverFilter != "" {
		server, err := r.Inventory.Lookup(serverFilter)
		if err != nil {
			return nil, err
		}
		servers = []config.Server{*server}
	} else {
		servers = r.Inventory.Servers
	}

	reports := make([]ServerReport, 0, len(servers))
	for i := range servers {
		reports = append(reports, r.runServer(ctx, &servers[i]))
	}
	return reports, nil
}

func (r *Runner) runServer(ctx context.Context, server *config.Server) ServerReport {
	report := ServerReport{Server: server.Name}
	logger := r.Logger.With().Str("server", server.Name).Logger()

	ex, err := r.Dial(ctx, server)
	if err != nil {
		logger.Error().Err(err).Msg("connection failed")
		report.Steps = append(report.Steps, StepResult{
			Step: StepConnection,
			Result: &tools.Result{
				Name:    StepConnection,
				Status:  tools.StatusFailed,
				Details: "Unable to connect: " + err.Error(),
			},
		})
		return report
	}
	defer ex.Close()

	addStep := func(step string, result *tools.Result) bool {
		report.Steps = append(report.Steps, StepResult{Step: step, Result: result})
		logger.Info().Str("step", step).Str("status", string(result.Status)).Msg(result.Details)
		return result.Status == tools.StatusSuccess
	}

	if javaCfg := r.Settings.Stage("pre_install", "java"); javaCfg != nil {
		result := tools.JavaInstall(ctx, ex, javaCfg, logger)
		if !addStep(StepJava, result) {
			return report
		}
	}

	tomcatHome := ""
	if installCfg := r.Settings.Stage("install", "tomcat"); installCfg != nil {
		result := tools.TomcatInstall(ctx, ex, installCfg, logger)
		if !addStep(StepTomcat, result) {
			return report
		}
		tomcatHome = result.TomcatHome
	}

	startCfg := r.Settings.Stage("post_install", "tomcat_start")
	validationCfg := r.Settings.Stage("post_install", "tomcat_validation")
	stopCfg := r.Settings.Stage("post_install", "tomcat_stop")

	effectiveHome := firstNonEmpty(
		tomcatHome,
		startCfg.String("tomcat_home", ""),
		validationCfg.String("tomcat_home", ""),
		stopCfg.String("tomcat_home", ""),
		r.Settings.StageOptions("post_install").String("default_tomcat_home", ""),
	)

	if startCfg != nil {
		result := tools.TomcatStart(ctx, ex, startCfg, tools.TomcatStartParams{TomcatHome: effectiveHome}, logger)
		addStep(StepStart, result)
	}

	if validationCfg != nil {
		if effectiveHome != "" {
			result := tools.TomcatValidate(ctx, validationCfg, server, tools.TomcatValidateParams{TomcatHome: effectiveHome}, logger)
			addStep(StepValidate, result)
		} else {
			addStep(StepValidate, &tools.Result{
				Name:    StepValidate,
				Status:  tools.StatusSkipped,
				Details: "Tomcat home not available for validation",
			})
		}
	}

	if stopCfg != nil && !r.SkipStop {
		result := tools.TomcatStop(ctx, ex, stopCfg, tools.TomcatStopParams{TomcatHome: effectiveHome}, logger)
		addStep(StepStop, result)
	}

	return report
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
