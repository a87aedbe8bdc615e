// Package cmd implements the examslot command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/examslot/internal/config"
	"github.com/oakwood-commons/examslot/internal/formatter"
	"github.com/oakwood-commons/examslot/internal/limiter"
	"github.com/oakwood-commons/examslot/internal/schedule"
	"github.com/oakwood-commons/examslot/internal/session"
	"github.com/oakwood-commons/examslot/internal/source"
	"github.com/oakwood-commons/examslot/internal/ui"
	"github.com/oakwood-commons/examslot/pkg/logger"
	"github.com/oakwood-commons/examslot/pkg/settings"
)

const defaultFallbackTermWidth = 120

var (
	stdinIsPiped  = func() bool { stat, _ := os.Stdin.Stat(); return stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 }
	stdoutIsPiped = func() bool { stat, _ := os.Stdout.Stat(); return stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 }
	termGetSize   = term.GetSize
	getenv        = os.Getenv
	httpClient    source.Doer
	runUI         = ui.Run
)

// rootOptions holds the raw flag values of one command tree.
type rootOptions struct {
	interactive bool
	output      string
	query       string
	delimiter   string
	configFile  string
	debug       bool
	logFile     string
	noColor     bool
	timeout     time.Duration
	theme       string
	cellWidth   int
	width       int
	height      int
	snapshot    bool
	limit       int
	offset      int
	tail        int
	pointers    pointerFlag

	closeLog func() error
}

var rootCmd = newRootCmd()

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [source]",
		Short: "Show exam slot schedules and where an identifier sits next",
		Long: `examslot reads a delimiter-separated schedule (one subject per row, a
current-slot pointer, then the occupant of each slot) from a file, URL or
stdin, and highlights the slots of one identifier relative to each row's
pointer: slots before the pointer, the next slot at or after it, and later
ones.`,
		Example: `  examslot schedule.csv --id 101
  examslot https://example.com/export?format=csv -i --id 101
  cat schedule.csv | examslot -o json --id 101 --pointer Maths=3`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level int8
			if opts.debug {
				level = logger.DebugLevel
			}
			sink, closeFn, err := logger.OpenSink(opts.logFile, opts.interactive && !opts.snapshot)
			if err != nil {
				return usageErrorf("%w", err)
			}
			opts.closeLog = closeFn
			lgr := logger.Get(level, sink)
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
			cmd.SetContext(logger.WithLogger(cmd.Context(), lgr))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	f := cmd.Flags()
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "start the interactive TUI")
	f.StringVarP(&opts.output, "output", "o", formatter.OutputTable, "output format: "+strings.Join(formatter.Outputs, "|"))
	f.StringVarP(&opts.query, "id", "q", "", "identifier to highlight in every row")
	f.StringVar(&opts.delimiter, "delimiter", "", `field delimiter (single character, or "tab"); default from config`)
	f.DurationVar(&opts.timeout, "timeout", 0, "fetch timeout for URL sources (default from config)")
	f.StringVar(&opts.theme, "theme", "", "theme name (default from config; see 'examslot config themes')")
	f.IntVar(&opts.cellWidth, "cell-width", 0, "width of one slot cell (default from config)")
	f.IntVar(&opts.width, "width", 0, "output width in columns (0 = terminal width, unlimited when piped)")
	f.IntVar(&opts.height, "height", 0, "TUI height in rows for --snapshot")
	f.BoolVar(&opts.snapshot, "snapshot", false, "render a single TUI frame and exit; honors --width/--height")
	f.IntVar(&opts.limit, "limit", 0, "limit the number of rows displayed")
	f.IntVar(&opts.offset, "offset", 0, "skip the first N rows")
	f.IntVar(&opts.tail, "tail", 0, "show the last N rows (mutually exclusive with --limit; ignores --offset)")
	f.Var(&opts.pointers, "pointer", "set a row pointer before rendering, by row number or subject (repeatable)")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config-file", "", "path to a YAML config file")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable color output")

	cmd.Version = cliVersionString()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd(&opts.configFile))
	return cmd
}

// resolveRun merges config, environment and flags into run settings.
func (o *rootOptions) resolveRun(cmd *cobra.Command, args []string) (*settings.Run, config.File, error) {
	limits := limiter.Config{Limit: o.limit, Offset: o.offset, Tail: o.tail}
	if err := limits.Validate(); err != nil {
		return nil, config.File{}, usageErrorf("record limiting error: %w", err)
	}
	if err := formatter.ValidateOutput(o.output); err != nil {
		return nil, config.File{}, usageErrorf("%w", err)
	}
	if o.width < 0 || o.height < 0 || o.cellWidth < 0 {
		return nil, config.File{}, usageErrorf("--width, --height and --cell-width must not be negative")
	}

	cfg, _, err := loadConfig(o.configFile)
	if err != nil {
		return nil, cfg, err
	}
	run := settings.NewCliParams()
	if err := cfg.Apply(run); err != nil {
		return nil, cfg, usageErrorf("%w", err)
	}

	if len(args) == 1 {
		run.Source.Location = args[0]
	}
	if cmd.Flags().Changed("delimiter") {
		d, err := config.ParseDelimiter(o.delimiter)
		if err != nil {
			return nil, cfg, usageErrorf("--delimiter: %w", err)
		}
		run.Source.Delimiter = d
	}
	if o.timeout > 0 {
		run.Source.Timeout = o.timeout
	}
	if o.theme != "" {
		run.Theme = o.theme
	}
	if o.cellWidth > 0 {
		run.CellWidth = o.cellWidth
	}
	run.Query = o.query
	run.Output = o.output
	run.Interactive = o.interactive
	run.Snapshot = o.snapshot
	run.Width = o.width
	run.Height = o.height
	run.NoColor = run.NoColor || o.noColor || getenv("NO_COLOR") != ""

	if strings.TrimSpace(run.Source.Location) == "" && stdinIsPiped() {
		run.Source.Location = "-"
	}
	if strings.TrimSpace(run.Source.Location) == "" {
		return nil, cfg, &usageError{err: fmt.Errorf("%w: pass a file or URL, set source.url in the config, or set %s", source.ErrNoSource, config.SourceEnv)}
	}
	return run, cfg, nil
}

func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	if o.closeLog != nil {
		defer func() { _ = o.closeLog() }()
	}
	run, cfg, err := o.resolveRun(cmd, args)
	if err != nil {
		return err
	}
	ctx := settings.IntoContext(cmd.Context(), run)
	lgr := *logger.FromContext(ctx)

	palette, err := cfg.Palette(run.Theme)
	if err != nil {
		return usageErrorf("%w", err)
	}

	sess, err := newSession(cmd, run, lgr)
	if err != nil {
		return err
	}
	sess.SetQuery(run.Query)

	if run.Interactive && !run.Snapshot {
		if len(o.pointers.seeds) > 0 {
			lgr.Info("--pointer is ignored in interactive mode")
		}
		return runUI(ctx, sess, ui.Options{
			AppName:   settings.CliBinaryName,
			NoColor:   run.NoColor,
			CellWidth: run.CellWidth,
			Palette:   palette,
			Log:       lgr,
		})
	}

	if err := sess.Refresh(ctx); err != nil {
		return err
	}
	if err := seedPointers(sess, o.pointers.seeds); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if run.Snapshot {
		return writeSnapshot(ctx, out, sess, palette)
	}
	return writeOutput(ctx, out, sess, palette, limiter.Config{Limit: o.limit, Offset: o.offset, Tail: o.tail})
}

func newSession(cmd *cobra.Command, run *settings.Run, lgr logr.Logger) (*session.Session, error) {
	fetcher, err := source.New(run.Source.Location, httpClient, run.Source.Timeout, lgr)
	if err != nil {
		return nil, usageErrorf("%w", err)
	}
	if rs, ok := fetcher.(*source.ReaderSource); ok {
		rs.Reader = cmd.InOrStdin()
	}
	return session.New(fetcher, schedule.NewParser(run.Source.Delimiter, lgr), lgr), nil
}

// seedPointers sets the requested pointers through the same clamped
// adjustment the TUI uses.
func seedPointers(sess *session.Session, seeds []pointerSeed) error {
	for _, seed := range seeds {
		row, err := findRow(sess.Table(), seed.Row)
		if err != nil {
			return usageErrorf("--pointer %s: %w", seed.Row, err)
		}
		sess.Adjust(row, seed.Value-sess.Pointer(row))
	}
	return nil
}

var errRowNotFound = errors.New("no such row")

// findRow resolves a 1-based row number or a subject name (case-insensitive)
// to a row index.
func findRow(t *schedule.Table, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > t.Len() {
			return -1, fmt.Errorf("%w: row %d (have %d rows)", errRowNotFound, n, t.Len())
		}
		return n - 1, nil
	}
	for i := 0; i < t.Len(); i++ {
		if strings.EqualFold(strings.TrimSpace(t.Rows[i].Subject), ref) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: subject %q", errRowNotFound, ref)
}

// runFromContext returns the run settings stored by the root command, or the
// defaults when there are none.
func runFromContext(ctx context.Context) *settings.Run {
	if run, ok := settings.FromContext(ctx); ok {
		return run
	}
	return settings.NewCliParams()
}

func writeSnapshot(ctx context.Context, w io.Writer, sess *session.Session, palette formatter.Palette) error {
	run := runFromContext(ctx)
	width, height := run.Width, run.Height
	if width == 0 || height == 0 {
		dw, dh := detectTerminalSize()
		if width == 0 {
			width = dw
		}
		if height == 0 {
			height = dh
		}
	}
	_, err := fmt.Fprintln(w, ui.RenderSnapshot(sess, ui.Options{
		AppName:   settings.CliBinaryName,
		NoColor:   run.NoColor,
		CellWidth: run.CellWidth,
		Palette:   palette,
		Width:     width,
		Height:    height,
		Log:       *logger.FromContext(ctx),
	}))
	return err
}

func writeOutput(ctx context.Context, w io.Writer, sess *session.Session, palette formatter.Palette, limits limiter.Config) error {
	run := runFromContext(ctx)
	width := run.Width
	noColor := run.NoColor
	if run.Output == formatter.OutputTable && stdoutIsPiped() {
		noColor = true
	} else if width == 0 && run.Output == formatter.OutputTable {
		width, _ = detectTerminalSize()
	}

	doc := formatter.Document{
		Source: sess.Location(),
		Query:  sess.Query(),
		Header: sess.Table().Header,
		Rows:   limiter.Apply(limits, sess.Views()),
	}
	return formatter.Write(w, run.Output, doc, formatter.TableOptions{
		CellWidth: run.CellWidth,
		Width:     width,
		NoColor:   noColor,
		Palette:   palette,
	})
}

// detectTerminalSize probes stdout, stderr and stdin, then $COLUMNS.
func detectTerminalSize() (int, int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := termGetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 0
}
