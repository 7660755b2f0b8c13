// Package main provides the CLI entrypoint for primespiral.
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/primespiral/internal/config"
	"github.com/verte-zerg/primespiral/internal/generator"
	"github.com/verte-zerg/primespiral/internal/model"
	"github.com/verte-zerg/primespiral/internal/primelist"
	"github.com/verte-zerg/primespiral/internal/report"
	"github.com/verte-zerg/primespiral/internal/spiral"
	"github.com/verte-zerg/primespiral/internal/store"
	"github.com/verte-zerg/primespiral/internal/viewer"
)

const (
	defaultCount         = 2000
	defaultAngle         = 36.0
	defaultPredictions   = 5
	defaultPolicy        = string(model.PolicyResidue)
	defaultAngleMode     = string(model.AngleModeRaw)
	defaultMinCluster    = spiral.DefaultAngularMinPoints
	defaultSweepFrom     = 1.0
	defaultSweepTo       = 180.0
	defaultSweepStep     = 1.0
	defaultSweepTop      = 20
	defaultHistoryWindow = 5
	maxCount             = 5_000_000
)

var (
	logger  *zap.Logger
	verbose bool

	spiralCount       int
	spiralPrimesFile  string
	spiralAngle       float64
	spiralPredictions int
	spiralPolicy      string
	spiralAngleMode   string
	spiralMinCluster  int

	analyzeFormat string
	analyzePlot   bool
	analyzeSave   bool

	sweepFrom    float64
	sweepTo      float64
	sweepStep    float64
	sweepTop     int
	sweepWorkers int
	sweepFormat  string

	historyPolicy string
	historyLast   int
	historyWindow int

	viewerDebounceMs int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "primespiral",
		Short:         "Explore spiral arms in a polar plot of the primes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The viewer owns the terminal; log lines would tear the alt screen.
			if cmd.Name() == "primespiral" {
				logger = zap.NewNop()
				return nil
			}
			var err error
			logger, err = newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runViewerCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&spiralCount, "count", defaultCount, "number of primes to generate")
	flags.StringVar(&spiralPrimesFile, "primes-file", "", "read primes from a file (one per line) instead of generating")
	flags.Float64Var(&spiralAngle, "angle", defaultAngle, "angle delta in degrees between consecutive primes")
	flags.IntVar(&spiralPredictions, "predictions", defaultPredictions, "predicted points per arm (1-20)")
	flags.StringVar(&spiralPolicy, "policy", defaultPolicy, "arm grouping policy (residue|angular)")
	flags.StringVar(&spiralAngleMode, "angle-mode", defaultAngleMode, "steps per rotation for angles above 360 (raw|normalize)")
	flags.IntVar(&spiralMinCluster, "min-cluster", defaultMinCluster, "minimum points per angular cluster")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().IntVar(&viewerDebounceMs, "debounce-ms", int(viewer.DefaultDebounce/time.Millisecond), "delay before recomputing after a change")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// spiralSetup is the resolved input shared by every analysis command.
type spiralSetup struct {
	file   config.FileConfig
	params model.Params
	primes []int
}

func loadSpiralSetup(cmd *cobra.Command) (spiralSetup, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return spiralSetup{}, fmt.Errorf("failed to load config: %w", err)
	}
	sc := fileCfg.Spiral
	applyIntConfig(cmd, "count", &spiralCount, sc.Count)
	applyStringConfig(cmd, "primes-file", &spiralPrimesFile, sc.PrimesFile)
	applyFloatConfig(cmd, "angle", &spiralAngle, sc.Angle)
	applyIntConfig(cmd, "predictions", &spiralPredictions, sc.Predictions)
	applyStringConfig(cmd, "policy", &spiralPolicy, sc.Policy)
	applyStringConfig(cmd, "angle-mode", &spiralAngleMode, sc.AngleMode)
	applyIntConfig(cmd, "min-cluster", &spiralMinCluster, sc.MinCluster)

	params := model.Params{
		AngleDelta:      spiralAngle,
		PredictionCount: spiralPredictions,
		Policy:          model.Policy(strings.ToLower(strings.TrimSpace(spiralPolicy))),
		AngleMode:       model.AngleMode(strings.ToLower(strings.TrimSpace(spiralAngleMode))),
		MinClusterSize:  spiralMinCluster,
	}
	if err := validateParams(params); err != nil {
		return spiralSetup{}, err
	}

	primes, err := loadPrimes(spiralPrimesFile, spiralCount)
	if err != nil {
		return spiralSetup{}, err
	}
	logger.Debug("primes loaded",
		zap.Int("count", len(primes)),
		zap.String("source", primeSource(spiralPrimesFile)))
	return spiralSetup{file: fileCfg, params: params, primes: primes}, nil
}

func loadPrimes(path string, count int) ([]int, error) {
	if strings.TrimSpace(path) == "" {
		if count <= 0 || count > maxCount {
			return nil, fmt.Errorf("--count must be between 1 and %d", maxCount)
		}
		return generator.First(count), nil
	}
	primes, err := primelist.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load primes: %w", err)
	}
	if err := primelist.Validate(primes); err != nil {
		return nil, fmt.Errorf("invalid primes in %s: %w", path, err)
	}
	return primes, nil
}

func primeSource(path string) string {
	if strings.TrimSpace(path) == "" {
		return "generated"
	}
	return path
}

func runViewerCmd(cmd *cobra.Command, _ []string) error {
	setup, err := loadSpiralSetup(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "debounce-ms", &viewerDebounceMs, setup.file.Spiral.DebounceMs)
	if viewerDebounceMs < 0 {
		return fmt.Errorf("--debounce-ms must be >= 0")
	}
	if setup.params.AngleDelta >= 360 {
		return fmt.Errorf("--angle must be < 360 in the viewer")
	}

	m := viewer.NewModel(spiral.NewAnalyzer(logger), setup.primes, setup.params, time.Duration(viewerDebounceMs)*time.Millisecond)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect arms, predict and score once",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().StringVar(&analyzeFormat, "format", report.FormatText, "output format (text|json|yaml)")
	cmd.Flags().BoolVar(&analyzePlot, "plot", true, "draw the braille spiral plot (text format)")
	cmd.Flags().BoolVar(&analyzeSave, "save", false, "record the run in the history database")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	format, err := validateFormat(analyzeFormat)
	if err != nil {
		return err
	}
	setup, err := loadSpiralSetup(cmd)
	if err != nil {
		return err
	}
	applyBoolConfig(cmd, "save", &analyzeSave, setup.file.Spiral.SaveRuns)

	res, err := spiral.NewAnalyzer(logger).Analyze(setup.primes, setup.params)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == report.FormatText {
		if err := renderAnalysis(out, res, analyzePlot); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if err := report.Export(out, res, format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if analyzeSave {
		id, err := saveRun(cmd.Context(), res)
		if err != nil {
			return err
		}
		logErrf("Saved run %s\n", id)
	}
	return nil
}

func renderAnalysis(w io.Writer, res spiral.Result, plot bool) error {
	if err := report.RenderSummary(w, res); err != nil {
		return err
	}
	if err := report.RenderArmTable(w, res.Arms); err != nil {
		return err
	}
	if !plot || len(res.Positions) == 0 {
		return nil
	}
	return report.PlotSpiral(w, res, 0, 0, false)
}

func saveRun(ctx context.Context, res spiral.Result) (string, error) {
	st, err := store.Open(config.DefaultDBPath(), logger)
	if err != nil {
		return "", fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertRun(ctx, runRecord(res))
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

func runRecord(res spiral.Result) model.RunRecord {
	return model.RunRecord{
		Params:           res.Params,
		PrimeCount:       res.PrimeCount,
		ArmCount:         len(res.Arms),
		StepsPerRotation: res.StepsPerRotation,
		Report:           res.Report,
	}
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Analyze a range of angle deltas and rank them by accuracy",
		Args:  cobra.NoArgs,
		RunE:  runSweepCmd,
	}
	cmd.Flags().Float64Var(&sweepFrom, "from", defaultSweepFrom, "first angle delta in degrees")
	cmd.Flags().Float64Var(&sweepTo, "to", defaultSweepTo, "last angle delta in degrees")
	cmd.Flags().Float64Var(&sweepStep, "step", defaultSweepStep, "angle increment in degrees")
	cmd.Flags().IntVar(&sweepTop, "top", defaultSweepTop, "rows to print (0 = all)")
	cmd.Flags().IntVar(&sweepWorkers, "sweep-workers", 0, "concurrent analyses (0 = one per angle)")
	cmd.Flags().StringVar(&sweepFormat, "format", report.FormatText, "output format (text|json|yaml)")
	return cmd
}

func runSweepCmd(cmd *cobra.Command, _ []string) error {
	format, err := validateFormat(sweepFormat)
	if err != nil {
		return err
	}
	setup, err := loadSpiralSetup(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "sweep-workers", &sweepWorkers, setup.file.Spiral.SweepWorkers)
	if sweepWorkers < 0 {
		return fmt.Errorf("--sweep-workers must be >= 0")
	}
	if sweepTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	deltas, err := spiral.SweepDeltas(sweepFrom, sweepTo, sweepStep)
	if err != nil {
		return fmt.Errorf("invalid sweep range: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	points, err := spiral.NewAnalyzer(logger).Sweep(ctx, setup.primes, setup.params, deltas, sweepWorkers)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	logger.Debug("sweep complete", zap.Int("angles", len(points)), zap.Duration("elapsed", time.Since(start)))

	out := cmd.OutOrStdout()
	if format != report.FormatText {
		ranked := report.RankSweep(points)
		if sweepTop > 0 && sweepTop < len(ranked) {
			ranked = ranked[:sweepTop]
		}
		return report.Export(out, ranked, format)
	}
	if err := report.RenderSweep(out, points, sweepTop); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved runs and the accuracy trend",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyPolicy, "policy", "", "only runs with this policy")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to the last N runs")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the trend")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	filter := model.HistoryFilter{
		Policy: strings.ToLower(strings.TrimSpace(historyPolicy)),
		Last:   historyLast,
	}
	if err := validateHistoryFilter(filter, historyWindow); err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := report.RenderHistory(cmd.OutOrStdout(), runs, historyWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template when path does not exist.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# primespiral configuration
# Uncomment a value to enable it. CLI flags override config values.

[spiral]
# count = %d            # Primes to generate
# primes-file = ""        # Read primes from this file instead
# angle = %.1f            # Angle delta in degrees
# predictions = %d         # Predicted points per arm (1-20)
# policy = %q       # Arm grouping: residue or angular
# angle-mode = %q       # Angles above 360: raw or normalize
# min-cluster = %d         # Minimum points per angular cluster
# save = false            # Record analyze runs in the history database
# sweep-workers = 0       # Concurrent sweep analyses (0 = one per angle)
# debounce-ms = %d       # Viewer delay before recomputing
`,
		defaultCount,
		defaultAngle,
		defaultPredictions,
		defaultPolicy,
		defaultAngleMode,
		defaultMinCluster,
		int(viewer.DefaultDebounce/time.Millisecond),
	)
}

func validateParams(p model.Params) error {
	if math.IsNaN(p.AngleDelta) || math.IsInf(p.AngleDelta, 0) || p.AngleDelta <= 0 {
		return fmt.Errorf("--angle must be > 0")
	}
	if p.PredictionCount < spiral.MinPredictionCount || p.PredictionCount > spiral.MaxPredictionCount {
		return fmt.Errorf("--predictions must be between %d and %d", spiral.MinPredictionCount, spiral.MaxPredictionCount)
	}
	switch p.Policy {
	case model.PolicyResidue, model.PolicyAngular:
	default:
		return fmt.Errorf("--policy must be %q or %q", model.PolicyResidue, model.PolicyAngular)
	}
	switch p.AngleMode {
	case model.AngleModeRaw, model.AngleModeNormalize:
	default:
		return fmt.Errorf("--angle-mode must be %q or %q", model.AngleModeRaw, model.AngleModeNormalize)
	}
	if p.MinClusterSize < 1 {
		return fmt.Errorf("--min-cluster must be >= 1")
	}
	return nil
}

func validateFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case report.FormatText, report.FormatJSON, report.FormatYAML:
		return format, nil
	}
	return "", fmt.Errorf("--format must be one of text, json, yaml")
}

func validateHistoryFilter(filter model.HistoryFilter, window int) error {
	switch model.Policy(filter.Policy) {
	case "", model.PolicyResidue, model.PolicyAngular:
	default:
		return fmt.Errorf("--policy must be %q or %q", model.PolicyResidue, model.PolicyAngular)
	}
	if filter.Last < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
