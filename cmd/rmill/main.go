package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	apppkg "github.com/kk-code-lab/rmill/internal/app"
	"github.com/kk-code-lab/rmill/internal/config"
	"github.com/kk-code-lab/rmill/internal/logging"
	"github.com/kk-code-lab/rmill/internal/shellsetup"
)

func printHelp(w io.Writer) {
	fmt.Fprint(w, `rmill - Miller columns file browser

USAGE:
    rmill [OPTIONS] [PATH]

OPTIONS:
    -h, --help              Show this help message and exit
    -s, --setup [SHELL]     Output shell integration snippet (optionally force SHELL)
        --choosedir FILE    Write the last directory to FILE on quit
        --config DIR        Read keys.yaml and config.yaml from DIR
        --log FILE          Append log entries to FILE
`)
}

var parentShellDetector = shellsetup.DetectParentShellName

type options struct {
	help      bool
	setup     bool
	shell     string
	chooseDir string
	configDir string
	logFile   string
	start     string
}

var errUsage = errors.New("usage")

// parseArgs reads the command line. Flags taking a value accept both
// "--flag value" and "--flag=value".
func parseArgs(args []string) (options, error) {
	var opts options
	value := func(i *int, arg, name string) (string, error) {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, nil
		}
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%w: %s needs a value", errUsage, name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch {
		case arg == "-h" || arg == "--help":
			opts.help = true
		case arg == "-s" || arg == "--setup":
			opts.setup = true
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				opts.shell = args[i]
			}
		case strings.HasPrefix(arg, "--setup="):
			opts.setup = true
			opts.shell = strings.TrimPrefix(arg, "--setup=")
		case arg == "--choosedir" || strings.HasPrefix(arg, "--choosedir="):
			opts.chooseDir, err = value(&i, arg, "--choosedir")
		case arg == "--config" || strings.HasPrefix(arg, "--config="):
			opts.configDir, err = value(&i, arg, "--config")
		case arg == "--log" || strings.HasPrefix(arg, "--log="):
			opts.logFile, err = value(&i, arg, "--log")
		case arg == "--":
			if i+1 < len(args) {
				opts.start = args[i+1]
			}
			i = len(args)
		case strings.HasPrefix(arg, "-") && arg != "-":
			err = fmt.Errorf("%w: unknown option %s", errUsage, arg)
		default:
			if opts.start != "" {
				err = fmt.Errorf("%w: more than one path given", errUsage)
			}
			opts.start = arg
		}
		if err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Set UTF-8 as fallback encoding so non-ASCII names display on terminals
	// with an unknown charset.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmill: %v\n\n", err)
		printHelp(os.Stderr)
		return 2
	}
	switch {
	case opts.help:
		printHelp(os.Stdout)
		return 0
	case opts.setup:
		if err := shellsetup.PrintSetup(os.Stdout, opts.shell, shellsetup.Config{DetectParent: parentShellDetector}); err != nil {
			fmt.Fprintf(os.Stderr, "rmill: %v\n", err)
			return 1
		}
		return 0
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "rmill: standard input is not a terminal")
		return 1
	}

	cfg, problems := config.Load(opts.configDir)
	logFile := cfg.Settings.LogFile
	if opts.logFile != "" {
		logFile = opts.logFile
	}
	logs, err := logging.New(logging.Config{
		Level:    cfg.Settings.LogLevel,
		Capacity: cfg.Settings.LogCapacity,
		File:     logFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmill: %v\n", err)
		return 1
	}
	defer func() {
		_ = logs.Close()
	}()
	for _, p := range problems {
		logs.Warn("configuration problem", zap.Error(p))
	}

	var shutdown atomic.Bool
	app, err := apppkg.NewApplication(apppkg.Options{
		Start:    opts.start,
		Config:   cfg,
		Log:      logs,
		Shutdown: &shutdown,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing application: %v\n", err)
		return 1
	}

	runErr := app.Run()
	if err := app.Close(); err != nil {
		logs.Warn("shutdown", zap.Error(err))
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "rmill: %v\n", runErr)
		return 1
	}

	if opts.chooseDir != "" {
		if err := writeChosenDir(opts.chooseDir, app.ExitPath()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write result file: %v\n", err)
		}
	}
	return 0
}

// writeChosenDir writes path to file. Nothing is written when path is empty,
// and file must already exist as a regular file.
func writeChosenDir(file, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Lstat(file)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", file)
	}
	return os.WriteFile(file, []byte(path), 0o600)
}
