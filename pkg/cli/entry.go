package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/funvibe/pyhint/internal/checker"
	"github.com/funvibe/pyhint/internal/config"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/pipeline"
	"github.com/funvibe/pyhint/internal/report"
	"github.com/funvibe/pyhint/internal/service"
)

// app holds the arguments and streams of one invocation.
type app struct {
	args   []string
	stdout io.Writer
	stderr io.Writer
	code   int
}

// Run is the entry point of the pyhint binary.
func Run() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	os.Exit(Main(os.Args, os.Stdout, os.Stderr))
}

// Main runs the command in args and returns the process exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	a := &app{args: args, stdout: stdout, stderr: stderr}

	if len(args) == 2 {
		switch args[1] {
		case "-v", "-version", "--version", "version":
			fmt.Fprintln(stdout, "pyhint "+config.Version)
			return 0
		}
	}

	if a.handleHelp() || a.handleCheck() || a.handleExpr() || a.handleReport() || a.handleServe() {
		return a.code
	}

	a.usage()
	return 1
}

func (a *app) usage() {
	fmt.Fprintf(a.stderr, "Usage: %s <command> [options]\n\n", a.name())
	fmt.Fprintln(a.stderr, "Commands:")
	fmt.Fprintln(a.stderr, "  check  [-config f] files...               print signatures and bindings")
	fmt.Fprintln(a.stderr, "  expr   [-config f] -file f.py EXPR         infer EXPR at the end of f.py")
	fmt.Fprintln(a.stderr, "  report [-config f] [-db path] files...     store results in SQLite")
	fmt.Fprintln(a.stderr, "  serve  [-config f] [-addr host:port]       serve the gRPC HintService")
	fmt.Fprintln(a.stderr, "  version")
}

func (a *app) name() string {
	if len(a.args) == 0 {
		return "pyhint"
	}
	return a.args[0]
}

func (a *app) fail(format string, args ...interface{}) bool {
	fmt.Fprintf(a.stderr, format, args...)
	a.code = 1
	return true
}

func (a *app) handleHelp() bool {
	if len(a.args) < 2 {
		return false
	}
	switch a.args[1] {
	case "-help", "--help", "help", "-h":
		a.usage()
		return true
	}
	return false
}

// options are the flags shared by all commands. Unknown flags are errors.
type options struct {
	configPath string
	file       string
	db         string
	addr       string
	rest       []string
}

func parseOptions(args []string, allowed ...string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.rest = append(opts.rest, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if name != "config" && !slices.Contains(allowed, name) {
			return nil, fmt.Errorf("unknown flag %s", arg)
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("flag %s requires a value", arg)
		}
		i++
		switch name {
		case "config":
			opts.configPath = args[i]
		case "file":
			opts.file = args[i]
		case "db":
			opts.db = args[i]
		case "addr":
			opts.addr = args[i]
		}
	}
	return opts, nil
}

// loadConfig reads the explicit -config file, or the nearest pyhint.yaml
// above the working directory, or falls back to the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	found, err := config.FindConfig(".")
	if err != nil || found == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(found)
}

func (a *app) sink(cfg *config.Config) *diagnostics.WriterSink {
	s := diagnostics.NewWriterSink(a.stderr, diagnostics.ColorMode(cfg.Diagnostics.Color))
	s.Quiet = cfg.Diagnostics.Quiet
	return s
}

// checkFiles runs the checker over every path, reporting diagnostics as it
// goes. It stops at the first unreadable file.
func (a *app) checkFiles(cfg *config.Config, paths []string, each func(*pipeline.PipelineContext)) bool {
	sink := a.sink(cfg)
	ok := true
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error reading %s: %s\n", path, err)
			return false
		}
		ctx := checker.Run(cfg, string(src), path)
		for _, d := range ctx.Errors {
			sink.Report(d)
		}
		if ctx.HasErrors() {
			ok = false
			continue
		}
		each(ctx)
	}
	return ok
}

// handleCheck prints the resolved signatures and bindings of each file.
func (a *app) handleCheck() bool {
	if len(a.args) < 2 || a.args[1] != "check" {
		return false
	}
	opts, err := parseOptions(a.args[2:])
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	if len(opts.rest) == 0 {
		return a.fail("Usage: %s check [-config f] files...\n", a.name())
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return a.fail("Error: %s\n", err)
	}

	ok := a.checkFiles(cfg, opts.rest, func(ctx *pipeline.PipelineContext) {
		for _, sig := range ctx.Signatures {
			fmt.Fprintf(a.stdout, "%s:%d: def %s\n", ctx.FilePath, sig.Line, sig)
		}
		for _, b := range ctx.Bindings {
			fmt.Fprintf(a.stdout, "%s:%d: %s\n", ctx.FilePath, b.Line, b)
		}
	})
	if !ok {
		a.code = 1
	}
	return true
}

// handleExpr infers an expression in the scope of a module.
func (a *app) handleExpr() bool {
	if len(a.args) < 2 || a.args[1] != "expr" {
		return false
	}
	opts, err := parseOptions(a.args[2:], "file")
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	if len(opts.rest) != 1 {
		return a.fail("Usage: %s expr [-config f] -file f.py EXPR\n", a.name())
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return a.fail("Error: %s\n", err)
	}

	var src []byte
	path := opts.file
	if path != "" {
		src, err = os.ReadFile(path)
		if err != nil {
			return a.fail("Error reading %s: %s\n", path, err)
		}
	} else {
		path = "<input>"
	}

	values, diags, err := checker.InferExpression(cfg, string(src), path, opts.rest[0])
	sink := a.sink(cfg)
	for _, d := range diags {
		sink.Report(d)
	}
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	if values.IsEmpty() {
		fmt.Fprintln(a.stdout, "?")
		return true
	}
	fmt.Fprintln(a.stdout, strings.Join(checker.Render(values), " | "))
	return true
}

// handleReport checks files and stores the results under one session per file.
func (a *app) handleReport() bool {
	if len(a.args) < 2 || a.args[1] != "report" {
		return false
	}
	opts, err := parseOptions(a.args[2:], "db")
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	if len(opts.rest) == 0 {
		return a.fail("Usage: %s report [-config f] [-db path] files...\n", a.name())
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	dbPath := opts.db
	if dbPath == "" {
		dbPath = cfg.Report.Path
	}

	store, err := report.Open(dbPath)
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	defer store.Close()

	var saveErr error
	ok := a.checkFiles(cfg, opts.rest, func(ctx *pipeline.PipelineContext) {
		if saveErr != nil {
			return
		}
		saveErr = store.Save(ctx.SessionID, ctx.FilePath, ctx.Signatures, ctx.Bindings)
		if saveErr == nil {
			fmt.Fprintf(a.stdout, "%s: session %s, %d signatures, %d bindings\n",
				ctx.FilePath, ctx.SessionID, len(ctx.Signatures), len(ctx.Bindings))
		}
	})
	if saveErr != nil {
		return a.fail("Error: %s\n", saveErr)
	}
	if !ok {
		a.code = 1
	}
	return true
}

// handleServe runs the gRPC service until interrupted.
func (a *app) handleServe() bool {
	if len(a.args) < 2 || a.args[1] != "serve" {
		return false
	}
	opts, err := parseOptions(a.args[2:], "addr")
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return a.fail("Error: %s\n", err)
	}
	addr := opts.addr
	if addr == "" {
		addr = cfg.Service.Addr
	}

	log.SetFlags(0)
	log.SetOutput(a.stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := service.Serve(ctx, cfg, addr); err != nil {
		return a.fail("Error: %s\n", err)
	}
	return true
}
