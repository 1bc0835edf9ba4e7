// Package harness orchestrates one tethered word-count verification run:
// workspace preparation, input container write, ground-truth derivation,
// controller launch, and output verification, with cleanup guaranteed on
// every exit path.
package harness

import (
	"context"
	"fmt"
	"os"

	"tetherharness/internal/container"
	"tetherharness/internal/launcher"
	"tetherharness/internal/oracle"
	"tetherharness/internal/shared/config"
	"tetherharness/internal/shared/logging"
	"tetherharness/internal/verifier"
	"tetherharness/internal/workspace"
)

type Harness struct {
	cfg    *config.HarnessConfig
	logger logging.Logger
}

func New(cfg *config.HarnessConfig, logger logging.Logger) *Harness {
	return &Harness{cfg: cfg, logger: logger}
}

// Run drives scenario to completion and returns nil only when the worker's
// output matched the ground truth. The workspace, transient artifacts, and
// the controller process never outlive the call, regardless of how it exits.
func (h *Harness) Run(ctx context.Context, scenario Scenario) (err error) {
	ws, err := workspace.New(h.cfg.Workspace.Root, h.logger)
	if err != nil {
		return err
	}
	defer ws.Teardown()

	h.logger.Info("Prepared workspace", "scenario", scenario.Name, "base", ws.Base())

	inputFile := ws.InputFile(scenario.InputFileName)
	if err := container.WriteLines(inputFile, scenario.Lines); err != nil {
		return err
	}
	if _, err := os.Stat(inputFile); err != nil {
		return fmt.Errorf("harness: input container missing after write: %w", err)
	}

	truth := oracle.Count(scenario.Lines)

	schemaFile, err := ws.MaterializeSchema(container.PairSchema)
	if err != nil {
		return err
	}
	program, err := ws.MaterializeLauncher(h.cfg.Worker.Script)
	if err != nil {
		return err
	}

	args := launcher.Args{
		Command:    h.cfg.Controller.Command,
		InputDir:   ws.InputDir(),
		OutputDir:  ws.OutputDir(),
		SchemaFile: schemaFile,
		Protocol:   h.cfg.Controller.Protocol,
		Program:    program,
	}

	handle, err := launcher.Launch(args, h.logger)
	if err != nil {
		return err
	}
	// The process must be dead before teardown, whatever happens below.
	defer handle.Kill()

	stop := context.AfterFunc(ctx, handle.Kill)
	defer stop()

	outcome, err := handle.Await(h.cfg.Scenario.Timeout)
	if err != nil {
		return err
	}
	switch outcome.State {
	case launcher.Completed:
		if outcome.ExitCode != 0 {
			return fmt.Errorf("harness: controller exited with code %d", outcome.ExitCode)
		}
	case launcher.AlreadyFaulted:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("harness: controller was terminated before completing")
	default:
		return fmt.Errorf("harness: unexpected controller outcome %s", outcome.State)
	}

	h.logger.Info("Controller finished", "scenario", scenario.Name, "exit_code", outcome.ExitCode)

	v := verifier.New(h.logger)
	if err := v.Verify(ws.OutputDir(), truth); err != nil {
		return err
	}

	h.logger.Info("Scenario passed", "scenario", scenario.Name, "distinct_words", len(truth))
	return nil
}
