// Package main is the entry point for clickdash.
// It initializes configuration, logging, services, and runs the Bubble Tea program.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/clickdash/internal/app"
	"github.com/j-veylop/clickdash/internal/config"
	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/services"
	"github.com/j-veylop/clickdash/internal/ui/tabs/analytics"
	"github.com/j-veylop/clickdash/internal/ui/tabs/history"
	"github.com/j-veylop/clickdash/internal/ui/tabs/info"
	"github.com/j-veylop/clickdash/internal/ui/tabs/shorten"
	"github.com/j-veylop/clickdash/internal/version"
)

var errUsage = errors.New("invalid arguments")

// options are the parsed command line flags.
type options struct {
	alias       string
	showVersion bool
	showHelp    bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if opts.showHelp {
		printUsage()
		os.Exit(0)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs accepts -v/--version, -h/--help and --alias X (or --alias=X).
func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-v" || arg == "--version":
			opts.showVersion = true
		case arg == "-h" || arg == "--help":
			opts.showHelp = true
		case arg == "--alias" || arg == "-alias":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%w: %s needs a value", errUsage, arg)
			}
			i++
			opts.alias = args[i]
		case strings.HasPrefix(arg, "--alias="):
			opts.alias = strings.TrimPrefix(arg, "--alias=")
		default:
			return opts, fmt.Errorf("%w: unknown flag %q", errUsage, arg)
		}
	}
	return opts, nil
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logCloser.Close()

	logger.Info("starting", "version", version.GetVersion(), "api", cfg.APIBaseURL)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Tab order matches app.TabID.
	state := model.GetState()
	model.SetTabs([]app.Tab{
		analytics.New(state, svcManager, cfg),
		shorten.New(svcManager),
		history.New(state),
		info.New(state, cfg),
	})

	if opts.alias != "" {
		model.SetDeepLink(opts.alias)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("exiting")
	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`clickdash - terminal dashboard for a URL shortener

Usage:
  clickdash [flags]

Flags:
  --alias X       Open the analytics for alias X on startup
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Analytics, Shorten, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  /               Focus the alias input (Analytics)
  r               Reload
  e               Export charts (Analytics)
  b               Toggle bookmark
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  API_BASE_URL        Shortener service base URL (default: http://localhost:8080)
  DATABASE_PATH       SQLite lookup history path
  BOOKMARKS_PATH      Bookmarks JSON file path
  EXPORT_DIR          Directory for exported chart images
  LOG_PATH            Log file path
  LOG_LEVEL           debug, info, warn or error (default: info)
  TIMEZONE            IANA zone for "today" and "this month" (default: local)
  REFRESH_INTERVAL    Auto-refresh interval for analytics, e.g. 30s (default: off)
  NOTIFY_NEW_CLICKS   Desktop notification when clicks grow (default: false)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/clickdash/.env
  - ~/.clickdash/.env`)
}
