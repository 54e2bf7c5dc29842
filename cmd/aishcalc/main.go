package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/config"
	"github.com/rgehrsitz/aishcalc/internal/observability"
	"github.com/rgehrsitz/aishcalc/internal/output"
	"github.com/rgehrsitz/aishcalc/internal/store"
	"github.com/rgehrsitz/aishcalc/internal/tracker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aishcalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// session is the wiring shared by every command that touches stored state
type session struct {
	settings *config.Settings
	logger   *zap.Logger
	engine   *calculation.CalculationEngine
	repo     *store.Repository
	metrics  *observability.Metrics
	svc      *tracker.Service
}

// openSession resolves settings from the config file, environment and
// flags, then loads the tracker from the configured store
func openSession(cmd *cobra.Command) (*session, error) {
	configFile, _ := cmd.Flags().GetString("config")
	settings, err := config.LoadSettings(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(settings.Log.Level)
	if err != nil {
		return nil, err
	}

	rules, err := settings.LoadRules()
	if err != nil {
		return nil, err
	}
	engine := calculation.NewCalculationEngineWithRules(rules)
	engine.SetLogger(logger.Sugar())

	repo, err := store.Open(settings, logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		settings: settings,
		logger:   logger,
		engine:   engine,
		repo:     repo,
	}
	if cmd.Name() == "serve" {
		s.metrics = observability.NewMetrics()
	}

	svc, err := tracker.New(cmd.Context(), engine, repo,
		tracker.WithLogger(logger),
		tracker.WithMetrics(s.metrics))
	if err != nil {
		repo.Close()
		return nil, err
	}
	s.svc = svc
	return s, nil
}

func (s *session) Close() {
	if err := s.repo.Close(); err != nil {
		s.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// withSession opens the tracker for the duration of fn
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, args, s)
	}
}

// render writes report to the command output in the --format selected
func render(cmd *cobra.Command, report *output.Report) error {
	name, _ := cmd.Flags().GetString("format")
	f, err := output.GetFormatterByName(name)
	if err != nil {
		return err
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aishcalc",
		Short: "AISH benefit calculator CLI",
		Long: "Estimates the monthly AISH disability benefit from household income and " +
			"learns an adjustment factor from the benefit payments actually received.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Settings file (default ./aishcalc.yaml when present)")
	pf.StringP("format", "f", "console", "Output format: console, json or csv")
	pf.String("store.backend", config.BackendFile, "State store: file, sqlite, redis or memory")
	pf.String("store.path", "aishcalc-data.json", "State file or database path")
	pf.String("redis.addr", "localhost:6379", "Redis address for the redis store")
	pf.String("log.level", "info", "Log level: debug, info, warn or error")
	pf.String("rules.file", "", "Benefit rules YAML overriding the built-in rules")

	root.AddCommand(
		calculateCmd(),
		validateCmd(),
		periodCmd(),
		thresholdCmd(),
		compareCmd(),
		paydayCmd(),
		paymentCmd(),
		adjustmentCmd(),
		exportCmd(),
		importCmd(),
		clearAllCmd(),
		serveCmd(),
		versionCmd(),
	)
	return root
}

func execute(ctx context.Context, args []string, out io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}
