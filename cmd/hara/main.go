package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jayanthmani8045/hara-tool/config"
	"github.com/jayanthmani8045/hara-tool/pkg/asil"
	"github.com/jayanthmani8045/hara-tool/pkg/matching"
	"github.com/jayanthmani8045/hara-tool/pkg/processor"
	"github.com/jayanthmani8045/hara-tool/pkg/tableio"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hara",
		Short: "HARA record linkage and ASIL classification",
		Long:  `Aligns operating scenario tables with risk assessment tables and determines ASIL levels`,
	}

	rootCmd.AddCommand(createProcessCmd())
	rootCmd.AddCommand(createClassifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() ectologger.Logger {
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func createProcessCmd() *cobra.Command {
	var (
		output        string
		threshold     int
		algorithm     string
		fuzzyDisabled bool
		caseSensitive bool
		osWeight      int
		hazardWeight  int
		quiet         bool
	)

	cmd := &cobra.Command{
		Use:   "process [scenarios.csv] [risks.csv]",
		Short: "Run the full pipeline over two CSV files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			settings, err := cfg.EngineSettings()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("threshold") {
				settings.Threshold = threshold
			}
			if cmd.Flags().Changed("algorithm") {
				alg, err := matching.ParseAlgorithm(algorithm)
				if err != nil {
					return err
				}
				settings.Algorithm = alg
			}
			if fuzzyDisabled {
				settings.FuzzyEnabled = false
			}
			if caseSensitive {
				settings.CaseSensitive = true
			}
			if cmd.Flags().Changed("os-weight") {
				settings.PrimaryWeight = float64(osWeight)
			}
			if cmd.Flags().Changed("hazard-weight") {
				settings.SecondaryWeight = float64(hazardWeight)
			}

			scenarios, err := tableio.ReadFile(args[0])
			if err != nil {
				return err
			}
			risks, err := tableio.ReadFile(args[1])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var progress matching.Progress
			if !quiet {
				progress = func(done, total int) {
					fmt.Fprintf(os.Stderr, "\raligning %d/%d", done, total)
					if done == total {
						fmt.Fprintln(os.Stderr)
					}
				}
			}

			proc := processor.New(newLogger(), settings)
			result, err := proc.Process(ctx, scenarios, risks, progress)
			if err != nil && !processor.IsCancelled(err) {
				return err
			}

			if err := tableio.WriteFile(output, result.Table); err != nil {
				return err
			}

			fmt.Printf("rows: %d  exact: %d  fuzzy: %d  unmatched: %d\n",
				result.Stats.RowsProcessed, result.Stats.ExactMatches, result.Stats.FuzzyMatches, result.Stats.Unmatched)
			for level, count := range result.Distribution {
				fmt.Printf("ASIL %s: %d\n", level, count)
			}
			for _, diag := range result.Diagnostics {
				fmt.Fprintln(os.Stderr, diag)
			}
			if result.Cancelled {
				fmt.Fprintln(os.Stderr, "cancelled: partial results written")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "hara_output.csv", "output CSV path")
	cmd.Flags().IntVar(&threshold, "threshold", 80, "minimum combined score for a fuzzy match")
	cmd.Flags().StringVar(&algorithm, "algorithm", string(matching.DefaultAlgorithm), "scoring algorithm")
	cmd.Flags().BoolVar(&fuzzyDisabled, "no-fuzzy", false, "disable fuzzy matching, exact only")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "compare values case sensitively")
	cmd.Flags().IntVar(&osWeight, "os-weight", 70, "operating scenario score weight")
	cmd.Flags().IntVar(&hazardWeight, "hazard-weight", 30, "hazard score weight")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	return cmd
}

func createClassifyCmd() *cobra.Command {
	var exposure int

	cmd := &cobra.Command{
		Use:   "classify [severity] [controllability]",
		Short: "Determine the ASIL level for one set of ratings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := asil.Classify(asil.Input{
				Severity:        args[0],
				Controllability: args[1],
				Exposure:        exposure,
			})
			if !result.Classified() {
				return fmt.Errorf("cannot classify: %s", result.Diagnostic)
			}
			fmt.Println(result.Level)
			return nil
		},
	}

	cmd.Flags().IntVarP(&exposure, "exposure", "e", 4, "exposure rating, 1 to 4")

	return cmd
}
