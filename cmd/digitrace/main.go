// Package main provides the CLI entrypoint for digitrace.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/digitrace/internal/catalog"
	"github.com/verte-zerg/digitrace/internal/config"
	"github.com/verte-zerg/digitrace/internal/logger"
	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/practice"
	"github.com/verte-zerg/digitrace/internal/progress"
	"github.com/verte-zerg/digitrace/internal/stats"
	"github.com/verte-zerg/digitrace/internal/statsui"
	"github.com/verte-zerg/digitrace/internal/store"
	"github.com/verte-zerg/digitrace/internal/tui"
)

const (
	defaultDigit         = 0
	defaultWeakTop       = 3
	defaultWeakFactor    = 2.0
	defaultWeakWindow    = 50
	defaultFeedbackDelay = 1500
	defaultLogLevel      = "info"
	defaultStatsWindow   = 5
)

var (
	practiceDigit         int
	practiceFocusWeak     bool
	practiceWeakTop       int
	practiceWeakFactor    float64
	practiceWeakWindow    int
	practiceFeedbackDelay int
	practiceTemplates     string
	practiceLogLevel      string

	traceCanvasSize     float64
	traceStartTolerance float64
	traceEndTolerance   float64
	tracePathTolerance  float64
	traceMinAccuracy    float64
	traceMinPoints      int
	traceGuideRadius    float64
	tracePulseEvery     int
	traceStars          int

	statsSince  string
	statsLast   int
	statsWindow int
	statsPlain  bool

	resetHistory bool
	resetYes     bool

	templatesDigit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "digitrace",
		Short:         "TUI digit tracing practice",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	defaults := model.DefaultTraceSettings()
	flags := rootCmd.Flags()
	flags.IntVar(&practiceDigit, "digit", defaultDigit, "digit to start with (0-9)")
	flags.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias digit selection toward weak digits")
	flags.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak digits to focus on")
	flags.Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "extra weight for weak digits")
	flags.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent attempts used to find weak digits")
	flags.IntVar(&practiceFeedbackDelay, "feedback-delay-ms", defaultFeedbackDelay, "milliseconds before feedback is dismissed (0 waits for a key)")
	flags.StringVar(&practiceTemplates, "templates", "", "digit template overlay file (default: config dir)")
	flags.StringVar(&practiceLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.Float64Var(&traceCanvasSize, "canvas-size", defaults.CanvasSize, "logical canvas side in pixels")
	flags.Float64Var(&traceStartTolerance, "start-tolerance", defaults.StartTolerance, "max distance from the start point in pixels")
	flags.Float64Var(&traceEndTolerance, "end-tolerance", defaults.EndTolerance, "max distance from the end point in pixels")
	flags.Float64Var(&tracePathTolerance, "path-tolerance", defaults.PathTolerance, "waypoint radius as a fraction of the canvas side")
	flags.Float64Var(&traceMinAccuracy, "min-accuracy", defaults.MinAccuracy, "fraction of waypoints required to pass (0-1)")
	flags.IntVar(&traceMinPoints, "min-points", defaults.MinPoints, "minimum stroke samples for an attempt")
	flags.Float64Var(&traceGuideRadius, "guide-radius", defaults.GuideRadius, "distance from the end point at which the approach ring appears")
	flags.IntVar(&tracePulseEvery, "pulse-every", defaults.PulseEvery, "marker pulse period in moves")
	flags.IntVar(&traceStars, "stars", defaults.StarsPerDigit, "stars awarded per newly completed digit")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newTemplatesCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolvePracticeConfig(cmd)
	if err != nil {
		return err
	}

	log, logFile, err := logger.Setup(config.DefaultLogPath(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	cat, err := catalog.Load(cfg.TemplatesPath)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	tracker := progress.NewTracker(st,
		progress.WithLogger(log),
		progress.WithHistory(st),
		progress.WithStarsPerDigit(cfg.Trace.StarsPerDigit),
	)
	// Closed before the store so queued writes land.
	defer tracker.Close()
	if err := tracker.Load(context.Background()); err != nil {
		logErrln("could not load saved progress; starting fresh")
	}

	session, err := practice.New(cat, tracker, cfg.Digit, cfg.Trace.CanvasSize, cfg.Trace,
		practice.WithLogger(log),
		practice.WithWeakFactor(cfg.WeakFactor),
	)
	if err != nil {
		return err
	}

	m := tui.NewModel(cfg, session, st, log)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	log.Info("practice finished", "run_id", session.RunID(), "stars", tracker.TotalStars())
	return nil
}

func resolvePracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyConfigFile(cmd, fileCfg)

	templates := practiceTemplates
	if templates == "" {
		templates = config.DefaultTemplatesPath()
	}
	cfg := model.Config{
		Digit:           practiceDigit,
		FocusWeak:       practiceFocusWeak,
		WeakTop:         practiceWeakTop,
		WeakFactor:      practiceWeakFactor,
		WeakWindow:      practiceWeakWindow,
		FeedbackDelayMs: practiceFeedbackDelay,
		TemplatesPath:   templates,
		LogLevel:        practiceLogLevel,
		Trace: model.TraceSettings{
			CanvasSize:     traceCanvasSize,
			StartTolerance: traceStartTolerance,
			EndTolerance:   traceEndTolerance,
			PathTolerance:  tracePathTolerance,
			MinAccuracy:    traceMinAccuracy,
			MinPoints:      traceMinPoints,
			GuideRadius:    traceGuideRadius,
			PulseEvery:     tracePulseEvery,
			StarsPerDigit:  traceStars,
		},
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func applyConfigFile(cmd *cobra.Command, fileCfg config.FileConfig) {
	p := fileCfg.Practice
	applyIntConfig(cmd, "digit", &practiceDigit, p.Digit)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)
	applyIntConfig(cmd, "feedback-delay-ms", &practiceFeedbackDelay, p.FeedbackDelayMs)
	applyStringConfig(cmd, "templates", &practiceTemplates, p.Templates)
	applyStringConfig(cmd, "log-level", &practiceLogLevel, p.LogLevel)

	t := fileCfg.Trace
	applyFloatConfig(cmd, "canvas-size", &traceCanvasSize, t.CanvasSize)
	applyFloatConfig(cmd, "start-tolerance", &traceStartTolerance, t.StartTolerance)
	applyFloatConfig(cmd, "end-tolerance", &traceEndTolerance, t.EndTolerance)
	applyFloatConfig(cmd, "path-tolerance", &tracePathTolerance, t.PathTolerance)
	applyFloatConfig(cmd, "min-accuracy", &traceMinAccuracy, t.MinAccuracy)
	applyIntConfig(cmd, "min-points", &traceMinPoints, t.MinPoints)
	applyFloatConfig(cmd, "guide-radius", &traceGuideRadius, t.GuideRadius)
	applyIntConfig(cmd, "pulse-every", &tracePulseEvery, t.PulseEvery)
	applyIntConfig(cmd, "stars", &traceStars, t.Stars)
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

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig(statsSince, statsLast, statsWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build stats: %w", err)
		}
		return writePlainReport(cmd, report, cfg.Window)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig(since string, last, window int) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--window must be >= 1")
	}
	return model.StatsConfig{Since: sinceTime, Last: last, Window: window}, nil
}

func writePlainReport(cmd *cobra.Command, report stats.Report, window int) error {
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderDigitTable(out, report.Digits); err != nil {
		return fmt.Errorf("failed to write digit table: %w", err)
	}
	if len(report.Attempts) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCoverageCurve(out, report.Attempts, window, 0); err != nil {
		return fmt.Errorf("failed to write coverage curve: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear stars, completed digits and achievements",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetHistory, "history", false, "also delete the attempt history")
	cmd.Flags().BoolVar(&resetYes, "yes", false, "do not ask for confirmation")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to reset without --yes on a non-interactive terminal")
		}
		logErrf("Reset all progress%s? [y/N] ", historySuffix(resetHistory))
		var answer string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
			logErrln("Aborted.")
			return nil
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if err := st.Reset(cmd.Context(), resetHistory); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	logErrf("Progress cleared%s.\n", historySuffix(resetHistory))
	return nil
}

func historySuffix(history bool) string {
	if history {
		return " and attempt history"
	}
	return ""
}

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Print the digit templates in use",
		Args:  cobra.NoArgs,
		RunE:  runTemplatesCmd,
	}
	cmd.Flags().IntVar(&templatesDigit, "digit", -1, "only print this digit")
	cmd.Flags().StringVar(&practiceTemplates, "templates", "", "digit template overlay file (default: config dir)")
	return cmd
}

func runTemplatesCmd(cmd *cobra.Command, _ []string) error {
	path := practiceTemplates
	if path == "" {
		path = config.DefaultTemplatesPath()
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	digits := cat.Digits()
	if templatesDigit >= 0 {
		digits = []int{templatesDigit}
	}
	out := cmd.OutOrStdout()
	for _, d := range digits {
		t, err := cat.Template(d)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, formatTemplate(t)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func formatTemplate(t model.DigitTemplate) string {
	points := make([]string, len(t.Waypoints))
	for i, p := range t.Waypoints {
		points[i] = fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
	}
	return fmt.Sprintf("%d  %s\n   %s", t.Digit, t.Hint, strings.Join(points, " "))
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
	d := model.DefaultTraceSettings()
	return fmt.Sprintf(`# digitrace configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# digit = %d                 # Digit to start with (0-9)
# focus-weak = false         # Bias digit selection toward weak digits
# weak-top = %d              # Number of weak digits to focus on
# weak-factor = %.1f         # Extra weight for weak digits
# weak-window = %d           # Recent attempts used to find weak digits
# feedback-delay-ms = %d   # Feedback display time (0 waits for a key)
# templates = ""             # Template overlay file (default: templates.toml next to this file)
# log-level = %q         # debug, info, warn or error

[trace]
# canvas-size = %.1f         # Logical canvas side in pixels
# start-tolerance = %.1f     # Max distance from the start point
# end-tolerance = %.1f       # Max distance from the end point
# path-tolerance = %.1f      # Waypoint radius as a fraction of the canvas side
# min-accuracy = %.1f        # Fraction of waypoints required to pass
# min-points = %d            # Minimum stroke samples
# guide-radius = %.1f       # Distance from the end point at which the approach ring appears
# pulse-every = %d           # Marker pulse period in moves
# stars = %d                 # Stars per newly completed digit
`,
		defaultDigit,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultFeedbackDelay,
		defaultLogLevel,
		d.CanvasSize,
		d.StartTolerance,
		d.EndTolerance,
		d.PathTolerance,
		d.MinAccuracy,
		d.MinPoints,
		d.GuideRadius,
		d.PulseEvery,
		d.StarsPerDigit,
	)
}

var flagNames = map[string]string{
	"Digit":           "--digit",
	"WeakTop":         "--weak-top",
	"WeakFactor":      "--weak-factor",
	"WeakWindow":      "--weak-window",
	"FeedbackDelayMs": "--feedback-delay-ms",
	"LogLevel":        "--log-level",
	"CanvasSize":      "--canvas-size",
	"StartTolerance":  "--start-tolerance",
	"EndTolerance":    "--end-tolerance",
	"PathTolerance":   "--path-tolerance",
	"MinAccuracy":     "--min-accuracy",
	"MinPoints":       "--min-points",
	"GuideRadius":     "--guide-radius",
	"PulseEvery":      "--pulse-every",
	"StarsPerDigit":   "--stars",
}

var validate = validator.New()

func validateConfig(cfg model.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}
	fe := verrs[0]
	name, ok := flagNames[fe.StructField()]
	if !ok {
		name = fe.StructField()
	}
	return fmt.Errorf("%s %s", name, describeRule(fe.Tag(), fe.Param()))
}

func describeRule(tag, param string) string {
	switch tag {
	case "gt":
		return "must be > " + param
	case "gte":
		return "must be >= " + param
	case "lte":
		return "must be <= " + param
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	default:
		return "is invalid (" + tag + ")"
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
