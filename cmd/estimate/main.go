// Command estimate runs a single analysis from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"resalelens/server/config"
	"resalelens/server/internal/analysis"
	"resalelens/server/internal/chart"
	"resalelens/server/internal/completion"
	"resalelens/server/internal/estimator"
	"resalelens/server/internal/models"
	"resalelens/server/internal/trend"
)

type options struct {
	category    string
	description string
	image       string
	strategy    string
	seed        int64
	xlsxPath    string
	svgPath     string
}

func main() {
	if err := newEstimateCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newEstimateCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the resale price of a used item",
		Long: `Runs one submission through the estimator and prints the estimate
together with a simulated 12-month price trend.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.Context(), cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.category, "category", "c", string(models.CategoryOther), "item category (English name or Korean label)")
	flags.StringVarP(&opts.description, "description", "d", "", "free-text item description")
	flags.StringVarP(&opts.image, "image", "i", "", "optional JPEG or PNG photo")
	flags.StringVarP(&opts.strategy, "strategy", "s", "", "estimator strategy: template, external or keyword (default from ESTIMATOR_STRATEGY)")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed; 0 uses RANDOM_SEED or the clock")
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "write the trend workbook to this path")
	flags.StringVar(&opts.svgPath, "svg", "", "write the trend chart to this path")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func runEstimate(ctx context.Context, cmd *cobra.Command, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.strategy != "" {
		cfg.Estimator.Strategy = opts.strategy
	}
	if opts.seed != 0 {
		cfg.Estimator.RandomSeed = opts.seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.LoadTemplates(cfg.Estimator.TemplateFile); err != nil {
		return err
	}

	var collaborator completion.Collaborator
	if cfg.Estimator.Strategy == config.StrategyExternal {
		collaborator, err = completion.New(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create completion client: %w", err)
		}
	}
	strategy, err := estimator.New(cfg, collaborator)
	if err != nil {
		return err
	}

	var image []byte
	if opts.image != "" {
		image, err = os.ReadFile(opts.image)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
	}

	service := analysis.NewService(strategy, trend.NewSimulator(), analysis.NewRandFactory(cfg.Estimator.RandomSeed), logger)
	result, err := service.Analyze(ctx, "", analysis.Input{
		Description: opts.description,
		Category:    opts.category,
		Image:       image,
	})
	if result != nil {
		printAnalysis(cmd.OutOrStdout(), result)
	}
	if err != nil {
		return err
	}

	if result.Trend == nil {
		return errors.New("no trend was produced")
	}
	if opts.svgPath != "" {
		svg, err := chart.SVG(*result.Trend)
		if err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		if err := os.WriteFile(opts.svgPath, []byte(svg), 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
	}
	if opts.xlsxPath != "" {
		buf, err := chart.Workbook(*result.Trend)
		if err != nil {
			return fmt.Errorf("failed to build workbook: %w", err)
		}
		if err := os.WriteFile(opts.xlsxPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}
	return nil
}

func printAnalysis(w io.Writer, a *models.Analysis) {
	fmt.Fprintf(w, "카테고리: %s (%s)\n", a.CategoryLabel, a.Category)
	for _, n := range a.Notices {
		fmt.Fprintf(w, "참고: %s\n", n.Message)
	}

	if est := a.Estimate; est != nil {
		if est.HasAmount() {
			fmt.Fprintf(w, "예상 가격: %s원\n", models.FormatAmount(*est.Amount))
		} else {
			fmt.Fprintln(w, "예상 가격: 산출 불가")
		}
		if est.Basis != "" {
			fmt.Fprintf(w, "분석 근거: %s\n", est.Basis)
		}
		if est.Outlook != "" {
			fmt.Fprintf(w, "시장 전망: %s\n", est.Outlook)
		}
		if est.Tips != "" {
			fmt.Fprintf(w, "거래 팁: %s\n", est.Tips)
		}
	}
	if a.Message != "" {
		fmt.Fprintln(w, a.Message)
	}

	if a.Trend == nil {
		return
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, p := range a.Trend.Points {
		marker := " "
		if p.Current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %4s %12s원  (%s ~ %s)\n", marker, p.Label,
			models.FormatAmount(int64(p.Price)), models.FormatAmount(int64(p.Low)), models.FormatAmount(int64(p.High)))
	}
}
