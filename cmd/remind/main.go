// Command remind creates, inspects and lists reminders from the terminal.
//
// Usage:
//
//	remind -i                         # create interactively
//	remind -c "Pay bills" "tomorrow 9am"
//	remind -g <id> | -d <id> | -done <id>
//	remind -l 10 [-before <ms>]       # last 10 created
//	remind -all                       # every reminder
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/notexe/reminders-cli/internal/app"
	"github.com/notexe/reminders-cli/internal/config"
	"github.com/notexe/reminders-cli/internal/logging"
	"github.com/notexe/reminders-cli/internal/timeparse"
	"github.com/notexe/reminders-cli/internal/ui"
)

type action int

const (
	actionNone action = iota
	actionInteractive
	actionCreate
	actionGet
	actionDelete
	actionDone
	actionList
	actionListAll
)

type options struct {
	action   action
	title    string
	timeText string
	id       string
	count    int
	before   int64
	allDay   bool
}

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	interactive := flag.Bool("i", false, "create a reminder by entering details interactively")
	create := flag.Bool("c", false, "create a reminder with the given TITLE and TIME arguments")
	getID := flag.String("g", "", "get reminder information by `ID`")
	deleteID := flag.String("d", "", "delete reminder by `ID`")
	doneID := flag.String("done", "", "mark reminder `ID` as done")
	count := flag.Int("l", 0, "list the last `N` created reminders, for a positive integer N")
	all := flag.Bool("all", false, "list every reminder, newest pages first")
	before := flag.Int64("before", 0, "with -l or -all, list reminders created before this cursor (`ms`)")
	allDay := flag.Bool("all-day", false, "with -i or -c, create an all-day reminder")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides config")
	flag.Usage = usage
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts, err := selectAction(set, flag.Args(), options{
		id:     firstNonEmpty(*getID, *deleteID, *doneID),
		count:  *count,
		before: *before,
		allDay: *allDay,
	}, *interactive, *create, *all)
	if err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.msg)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "please read help menu (-h) to see correct usage")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if *noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.UI.ColoredOutput = false
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		cfg.UI.Spinner = false
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	formatter := ui.NewFormatter(cfg.UI.ColoredOutput)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, formatter, logger); err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, formatter.FormatInfo(uerr.msg))
		} else if !errors.Is(err, errAborted) {
			fmt.Fprintln(os.Stderr, formatter.FormatError(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, formatter *ui.Formatter, logger *zap.Logger) error {
	parser, err := app.NewTimeParser(cfg)
	if err != nil {
		return err
	}

	// Unparsable times are reported before the user is sent through consent.
	if opts.action == actionCreate {
		if _, err := parser.Parse(opts.timeText, time.Now()); err != nil {
			return &usageError{msg: msgBadTime}
		}
	}

	client, err := app.NewClient(ctx, cfg, logger, os.Stderr)
	if err != nil {
		return err
	}

	pageSize := cfg.List.DefaultCount
	if pageSize <= 0 {
		pageSize = 10
	}

	r := &runner{
		svc:      client,
		format:   formatter,
		spinner:  ui.NewSpinner(os.Stderr, cfg.UI.Spinner, cfg.UI.ColoredOutput),
		parser:   parser,
		out:      os.Stdout,
		now:      time.Now,
		pageSize: pageSize,
	}

	switch opts.action {
	case actionInteractive:
		p, err := newLinePrompter(os.Stdin, os.Stdout, os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to initialize readline: %w", err)
		}
		defer p.Close()
		return r.interactive(ctx, p, opts.allDay)
	case actionCreate:
		return r.create(ctx, opts.title, opts.timeText, opts.allDay)
	case actionGet:
		return r.get(ctx, opts.id)
	case actionDelete:
		return r.delete(ctx, opts.id)
	case actionDone:
		return r.complete(ctx, opts.id)
	case actionList:
		return r.list(ctx, opts.count, opts.before)
	case actionListAll:
		return r.listAll(ctx, opts.before)
	}
	return nil
}

// selectAction checks that exactly one action flag was given, along with the
// arguments it needs.
func selectAction(set map[string]bool, args []string, opts options, interactive, create, all bool) (options, error) {
	var chosen []string
	for _, name := range []string{"i", "c", "g", "d", "done", "l", "all"} {
		if set[name] {
			chosen = append(chosen, "-"+name)
		}
	}
	switch len(chosen) {
	case 0:
		return opts, errors.New("wrong usage: no valid action was specified")
	case 1:
	default:
		return opts, fmt.Errorf("wrong usage: %s cannot be combined", strings.Join(chosen, ", "))
	}

	switch {
	case interactive:
		opts.action = actionInteractive
	case create:
		if len(args) != 2 {
			return opts, errors.New("wrong usage: -c needs TITLE and TIME arguments")
		}
		opts.action = actionCreate
		opts.title, opts.timeText = args[0], args[1]
		args = nil
	case set["g"]:
		opts.action = actionGet
	case set["d"]:
		opts.action = actionDelete
	case set["done"]:
		opts.action = actionDone
	case set["l"]:
		if opts.count < 0 {
			return opts, &usageError{msg: msgBadListCount}
		}
		opts.action = actionList
	case all:
		opts.action = actionListAll
	}

	if len(args) > 0 {
		return opts, fmt.Errorf("wrong usage: unexpected arguments %q", args)
	}
	if set["g"] || set["d"] || set["done"] {
		if opts.id == "" {
			return opts, errors.New("wrong usage: ID must not be empty")
		}
	}
	if set["before"] && opts.action != actionList && opts.action != actionListAll {
		return opts, errors.New("wrong usage: -before only applies to -l and -all")
	}
	if set["all-day"] && opts.action != actionCreate && opts.action != actionInteractive {
		return opts, errors.New("wrong usage: -all-day only applies to -i and -c")
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Google reminders cli\n\nUsage: %s [flags] [TITLE TIME]\n\n", os.Args[0])
	flag.PrintDefaults()

	colored := term.IsTerminal(int(os.Stderr.Fd()))
	fmt.Fprintln(out)
	fmt.Fprint(out, ui.RenderMarkdown(timeparse.Help, colored))
}
