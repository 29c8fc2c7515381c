package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/ratefit/internal/adapters/repository"
	service "github.com/okian/ratefit/internal/app"
	"github.com/okian/ratefit/internal/config"
	"github.com/okian/ratefit/internal/domain/classify"
	"github.com/okian/ratefit/internal/domain/irt"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/spf13/cobra"
)

// Estimate builds the estimate command, which replays a contest history and
// merges the fitted problem models into the configured store.
func Estimate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate [input]",
		Short: "Replay the contest history and merge fitted problem models into the store",
		Args:  cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Input = args[0]
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			rep, err := svc.Run(ctx, cfg.Input)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}

	addRunFlags(cmd)

	return cmd
}

// addRunFlags registers the flags shared by estimate and serve.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("store-driver", "", "Model store driver: json, sqlite or postgres")
	cmd.Flags().String("store-path", "", "Model document or database file")
	cmd.Flags().String("store-dsn", "", "Postgres connection string")
	cmd.Flags().BoolP("overwrite", "f", false, "Re-fit problems that already have a stored model")
	cmd.Flags().Bool("recompute-history", false, "Emulate ratings for contests held before the rating system by replaying them, and mark their models experimental")
	cmd.Flags().IntP("workers", "w", 0, "Number of fit workers")
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("store-driver") {
		cfg.StoreDriver, _ = flags.GetString("store-driver")
	}
	if flags.Changed("store-path") {
		cfg.StorePath, _ = flags.GetString("store-path")
	}
	if flags.Changed("store-dsn") {
		cfg.StoreDSN, _ = flags.GetString("store-dsn")
	}
	if flags.Changed("overwrite") {
		cfg.Overwrite, _ = flags.GetBool("overwrite")
	}
	if flags.Changed("recompute-history") {
		cfg.RecomputeHistory, _ = flags.GetBool("recompute-history")
	}
	if flags.Changed("workers") {
		cfg.WorkerCount, _ = flags.GetInt("workers")
	}
	return cfg.Validate()
}

// newService opens the configured store and builds a Service around it.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	classifier, err := classify.New(cfg.VeryEasyRules, cfg.AgcEasiestRules, cfg.ProhibitedProblems)
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, cfg.StoreDriver, cfg.StorePath, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}
	fitter := irt.NewFitter(
		irt.WithMinSamples(cfg.MinSamples),
		irt.WithMaxDifficulty(cfg.MaxDifficulty),
	)
	return service.New(store,
		service.WithLogger(logger.Get().Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithSolveParallelism(cfg.SolveParallelism),
		service.WithOverwrite(cfg.Overwrite),
		service.WithRecomputeHistory(cfg.RecomputeHistory),
		service.WithClassifier(classifier),
		service.WithFitter(fitter),
		service.WithOldSponsored(cfg.OldSponsoredContests),
	), nil
}

func printReport(w io.Writer, rep service.Report) {
	fmt.Fprintf(w, "run %s\n", rep.RunID)
	fmt.Fprintf(w, "  contests:    %d (%d skipped)\n", rep.Contests, rep.Skipped)
	fmt.Fprintf(w, "  contestants: %d\n", rep.Contestants)
	fmt.Fprintf(w, "  problems:    %d (%d unsolved)\n", rep.Problems, len(rep.Unsolved))
	fmt.Fprintf(w, "  fitted:      %d, %d sub-model rejections\n", rep.Fitted, rep.Rejections)
	fmt.Fprintf(w, "  written:     %d\n", rep.Written)
	fmt.Fprintf(w, "  took:        %s\n", rep.Duration)
}
