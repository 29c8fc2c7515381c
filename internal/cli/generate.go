package cli

import (
	"fmt"

	"github.com/okian/ratefit/internal/adapters/ingest"
	"github.com/okian/ratefit/internal/synth"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/spf13/cobra"
)

// Generate builds the generate command, which writes a synthetic contest
// history.
func Generate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [output]",
		Short: "Write a synthetic contest history for local runs",
		Args:  cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			out := cfg.Input
			if len(args) == 1 {
				out = args[0]
			}

			flags := cmd.Flags()
			seed, _ := flags.GetUint64("seed")
			contests, _ := flags.GetInt("contests")
			old, _ := flags.GetInt("old-contests")
			contestants, _ := flags.GetInt("contestants")
			tasks, _ := flags.GetInt("tasks")
			participation, _ := flags.GetFloat64("participation")

			gen := synth.New(
				synth.WithSeed(seed),
				synth.WithContests(contests),
				synth.WithOldContests(old),
				synth.WithContestants(contestants),
				synth.WithTasks(tasks),
				synth.WithParticipation(participation),
			)
			history, _, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}
			if err := ingest.Save(out, history); err != nil {
				return err
			}

			logger.Get().Named("generate").Info(cmd.Context(), "contest history written",
				logger.String("path", out),
				logger.Int("contests", len(history)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d contests to %s\n", len(history), out)
			return nil
		},
	}

	cmd.Flags().Uint64("seed", 1, "Random seed")
	cmd.Flags().Int("contests", 12, "Number of contests")
	cmd.Flags().Int("old-contests", 4, "Leading contests held before ratings existed")
	cmd.Flags().Int("contestants", 300, "Number of contestants")
	cmd.Flags().Int("tasks", 6, "Tasks per contest")
	cmd.Flags().Float64("participation", 0.7, "Chance a contestant enters a contest")

	return cmd
}
