package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/monitoring"
	"github.com/sells-group/lead-ingest/internal/pipeline"
)

var ingestURL string

// runner is the part of the pipeline the commands depend on.
type runner interface {
	Run(ctx context.Context, sourceURL string) (*pipeline.RunContext, error)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one NDJSON lead export",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "ingest")
		if err != nil {
			return err
		}
		defer env.Close()

		result, runErr := executeRun(ctx, env.Pipeline, env.Alerter, ingestURL)
		if err := writeRunResult(os.Stdout, result); err != nil {
			return err
		}
		return runErr
	},
}

// executeRun runs one ingestion and checks its health. The result holds
// partial counts when err is non-nil.
func executeRun(ctx context.Context, r runner, alerter *monitoring.Alerter, sourceURL string) (model.RunResult, error) {
	rc, err := r.Run(ctx, sourceURL)
	if rc == nil {
		return model.RunResult{}, err
	}
	if err != nil {
		zap.L().Error("ingest run failed",
			zap.String("run_id", rc.ID),
			zap.String("state", string(rc.State)),
			zap.Error(err),
		)
	}

	if alerter != nil {
		snap := monitoring.NewRunSnapshot(sourceURL, rc.Stats, rc.Notifier.Failures(), rc.Elapsed())
		alerter.Check(context.WithoutCancel(ctx), snap)
	}
	return rc.Stats.Result(), err
}

func writeRunResult(w io.Writer, result model.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return eris.Wrap(err, "write run result")
	}
	return nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "URL of the NDJSON export (required)")
	_ = ingestCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(ingestCmd)
}
