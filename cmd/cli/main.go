package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"liftcast/app"
	"liftcast/domain/core"
	"liftcast/domain/typicality"
	"liftcast/internal"
	"liftcast/internal/config"
	"liftcast/internal/container"
	"liftcast/internal/testkit"
)

// sourceFlags override the environment's data source selection.
type sourceFlags struct {
	logFile    string
	layoutFile string
	timezone   string
	asJSON     bool
}

func main() {
	_ = godotenv.Load()

	flags := &sourceFlags{}
	rootCmd := &cobra.Command{
		Use:   "liftcast-cli",
		Short: "Query the elevator typicality model from the command line",
		Long: `Build the typicality model from the configured raw log store and query it.

The data source comes from the environment (DATA_SOURCE, LOG_FILE, DATABASE_URL, ...)
unless --log-file is given.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Historical log (.csv or .xlsx); overrides DATA_SOURCE")
	rootCmd.PersistentFlags().StringVar(&flags.layoutFile, "layout", "", "YAML column layout for --log-file")
	rootCmd.PersistentFlags().StringVar(&flags.timezone, "timezone", "", "IANA time zone for the current time (default TIMEZONE)")
	rootCmd.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(
		newPredictCmd(flags),
		newTableCmd(flags),
		newSummaryCmd(flags),
		newBucketCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadModel(ctx context.Context, flags *sourceFlags) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil && flags.logFile == "" {
		return nil, err
	}
	if cfg == nil {
		// the environment may be incomplete when a log file is given explicitly
		cfg = &config.Config{Model: config.ModelConfig{Timezone: "Asia/Rangoon", AdviceEntropyThreshold: app.DefaultAdviceThreshold}}
	}
	if flags.logFile != "" {
		cfg.Data.Source = config.SourceFile
		cfg.Data.LogFile = flags.logFile
		cfg.Data.LayoutFile = flags.layoutFile
	}
	if flags.timezone != "" {
		cfg.Model.Timezone = flags.timezone
	}

	level := internal.LogLevelWarn
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = internal.ParseLogLevel(v)
	}
	return container.New(ctx, cfg, internal.NewLogger(level))
}

func newPredictCmd(flags *sourceFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict [HH:MM]",
		Short: "Predict the typical floor for a time of day",
		Long: `Predict the typical elevator floor, its confidence and entropy.

Without an argument the current time in the configured zone is used.

Example: liftcast-cli predict 9:17 --log-file elevator.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadModel(ctx, flags)
			if err != nil {
				return err
			}
			defer c.Close()

			var pred *app.Prediction
			if len(args) == 1 {
				hour, minute, perr := parseClock(args[0])
				if perr != nil {
					return perr
				}
				pred, err = c.Model.Predict(ctx, hour, minute)
			} else {
				pred, err = c.Model.PredictNow(ctx)
			}
			if core.IsMissingKeyError(err) {
				fmt.Fprintln(cmd.OutOrStdout(), c.Model.Advisor().NoData())
				return err
			}
			if err != nil {
				return err
			}

			if flags.asJSON {
				return printJSON(cmd.OutOrStdout(), pred)
			}
			r := pred.Record
			fmt.Fprintf(cmd.OutOrStdout(), "%d:%02d -> slot %s\n", pred.RequestedHour, pred.RequestedMinute, r.Key())
			fmt.Fprintf(cmd.OutOrStdout(), "Predicted floor: %d\nConfidence:      %.1f%%\nEntropy:         %.2f bits\n", r.TypicalFloor, r.Confidence*100, r.Entropy)
			fmt.Fprintln(cmd.OutOrStdout(), strings.ReplaceAll(pred.Advice, "**", ""))
			return nil
		},
	}
	return cmd
}

func newTableCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the full typicality table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadModel(ctx, flags)
			if err != nil {
				return err
			}
			defer c.Close()

			snap, err := c.Model.Model(ctx)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"snapshot_id": snap.ID,
					"fingerprint": snap.Table.Fingerprint(),
					"records":     snap.Table.Records(),
					"gaps":        snap.Table.Gaps(),
				})
			}
			return writeTable(cmd.OutOrStdout(), snap.Table)
		},
	}
}

func newSummaryCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Summarize how predictable the day is",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadModel(ctx, flags)
			if err != nil {
				return err
			}
			defer c.Close()

			summary, err := c.Model.Summary(ctx)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			writeSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newBucketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bucket [minute...]",
		Short: "Show which 5-minute bucket minutes fall into",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				minute, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid minute %q: %w", arg, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d -> %d\n", minute, typicality.Bucketize(minute))
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	genConfig := testkit.DefaultElevatorConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic wide-format elevator log",
		Long: `Generate a deterministic synthetic log in the historical wide format
(Day, Hour, 5min..60min). An .xlsx --out writes a workbook instead of CSV.

Example: liftcast-cli generate --days 30 --seed 42 --out elevator.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if genConfig.Days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			rows := testkit.NewElevatorDataGenerator(genConfig).GenerateRows()

			if strings.EqualFold(filepath.Ext(out), ".xlsx") {
				if err := testkit.WriteXLSX(out, rows); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), out)
				return nil
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := testkit.WriteCSV(w, rows); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), out)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&genConfig.Days, "days", genConfig.Days, "Number of days to generate")
	cmd.Flags().Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Random seed for deterministic output")
	cmd.Flags().IntVar(&genConfig.TopFloor, "top-floor", genConfig.TopFloor, "Highest floor")
	cmd.Flags().IntVar(&genConfig.LobbyFloor, "lobby-floor", genConfig.LobbyFloor, "Lobby (parking) floor")
	cmd.Flags().StringVar(&out, "out", "", "Output file, .csv or .xlsx (default CSV on stdout)")
	return cmd
}

// parseClock accepts "H:MM" or "HH:MM".
func parseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	if hour, err = strconv.Atoi(h); err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	if minute, err = strconv.Atoi(m); err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	return hour, minute, nil
}

func writeTable(w io.Writer, table *typicality.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Hour\tMinute\tFloor\tConfidence\tEntropy\tSamples\t")
	for _, r := range table.Records() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.1f%%\t%.3f\t%d\t\n", r.Hour, r.Minute, r.TypicalFloor, r.Confidence*100, r.Entropy, r.Samples)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if gaps := table.Gaps(); len(gaps) > 0 {
		fmt.Fprintf(w, "%d slots without data\n", len(gaps))
	}
	return nil
}

func writeSummary(w io.Writer, s *app.DaySummary) {
	fmt.Fprintf(w, "Snapshot %s from %s (fingerprint %s)\n", s.SnapshotID, s.Source, s.Fingerprint.Short())
	fmt.Fprintf(w, "Observations: %d, slots: %d, gaps: %d, idle slots: %d\n", s.Observations, s.Slots, len(s.Gaps), s.IdleSlots)
	fmt.Fprintf(w, "Mean confidence: %.1f%%\n", s.MeanConfidence*100)
	fmt.Fprintf(w, "Entropy median/p90/max: %.2f / %.2f / %.2f bits\n", s.MedianEntropy, s.P90Entropy, s.MaxEntropy)

	fmt.Fprintln(w, "Most predictable:")
	for _, r := range s.MostPredictable {
		fmt.Fprintf(w, "  %s floor %d (%.1f%%, %.2f bits)\n", r.Label, r.TypicalFloor, r.Confidence*100, r.Entropy)
	}
	fmt.Fprintln(w, "Least predictable:")
	for _, r := range s.LeastPredictable {
		fmt.Fprintf(w, "  %s floor %d (%.1f%%, %.2f bits)\n", r.Label, r.TypicalFloor, r.Confidence*100, r.Entropy)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
