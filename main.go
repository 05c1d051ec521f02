package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/itchio/itch-bootstrap/cl"
	"github.com/itchio/itch-bootstrap/config"
	"github.com/itchio/itch-bootstrap/data"
	"github.com/itchio/itch-bootstrap/localize"
	"github.com/itchio/itch-bootstrap/native"
	"github.com/itchio/itch-bootstrap/progress"
	"github.com/itchio/itch-bootstrap/setup"
)

// set by the build
var version = "head"

var (
	app = kingpin.New("itch-bootstrap", "Shows the progress of a client bootstrapper")

	appNameFlag     = app.Flag("appname", "Application being bootstrapped (itch, kitch)").String()
	projectNameFlag = app.Flag("project-name", "Name shown in window titles").String()
	uiFlag          = app.Flag("ui", "Where to show progress: auto, gui, tui or headless").String()
	configFlag      = app.Flag("config", "Config file (defaults to bootstrap.* in the config dir)").String()
	scriptFlag      = app.Flag("script", "Replay a YAML script instead of running a bootstrapper").String()
	standaloneFlag  = app.Flag("standalone", "Show the view without a bootstrapper").Bool()
	assumeYesFlag   = app.Flag("assume-yes", "Answer OK to every prompt (headless only)").Short('y').Bool()
	jsonFlag        = app.Flag("json", "Report as JSON lines on stdout (headless only)").Bool()
	logDirFlag      = app.Flag("log-dir", "Where to write bootstrap.log").String()
	langFlag        = app.Flag("lang", "Language to use, detected when empty").String()

	commandArgs = app.Arg("command", "Bootstrapper command line, after --").Strings()
)

func init() {
	// GTK and walk both want to be driven from the main thread
	runtime.LockOSThread()
}

func main() {
	app.HelpFlag.Short('h')
	app.Version(version)
	app.VersionFlag.Short('V')
	app.Author("Itch Corp")

	_, err := app.Parse(os.Args[1:])
	app.FatalIfError(err, "parsing command line")

	cfg, err := loadConfig()
	app.FatalIfError(err, "loading config")

	cli := cliFromConfig(cfg)

	logFile := setupLogging(cli.LogDir, cfg.Logging)
	log.Printf("%s-bootstrap %s, session %s", cli.AppName, cli.VersionString, cli.SessionID)

	cli.Localizer, err = localize.NewLocalizer(data.Asset)
	app.FatalIfError(err, "loading locales")
	if cfg.Lang != "" {
		if !cli.Localizer.SetLang(cfg.Lang) {
			log.Printf("No locale for (%s), keeping (%s)", cfg.Lang, cli.Localizer.Lang())
		}
	} else {
		cli.Localizer.DetectLang()
	}

	surface, err := native.NewSurface(cli)
	app.FatalIfError(err, "creating window")

	if _, ok := surface.(native.Releaser); ok {
		// the terminal belongs to the TUI now
		log.SetOutput(logFile)
	}

	settings := progress.ViewSettings{
		Surface: surface,
		Texts:   texts(cli),
		Exit: func(code int) {
			if r, ok := surface.(native.Releaser); ok {
				r.Release()
			}
			log.Printf("Exiting with code %d", code)
			os.Exit(code)
		},
		OnFault: func(err error) {
			reportPath, werr := setup.WriteFaultReport(cli.LogDir, setup.FaultReport{
				AppName:   cli.AppName,
				Version:   cli.VersionString,
				SessionID: cli.SessionID,
				Err:       err,
			})
			if werr != nil {
				log.Printf("Could not write fault report: %+v", werr)
				return
			}
			log.Printf("Fault report written to (%s)", reportPath)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the first interrupt is a cancel click, the next ones abort
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go native.ForwardSignals(signals, surface, func() {
		if cli.Standalone {
			settings.Exit(130)
		}
		cancel()
	})

	if cli.Standalone {
		log.Printf("No bootstrapper, showing standalone view")
		progress.NewStandalone(settings)
		surface.Main()
		return
	}

	controller, err := newController(cli)
	app.FatalIfError(err, "setting up bootstrapper")

	view := progress.NewDriven(ctx, settings, controller)
	surface.Main()
	log.Printf("Window closed (outcome: %s)", view.Outcome())
}

func loadConfig() (*config.Config, error) {
	appName := *appNameFlag
	if appName == "" {
		appName = config.DefaultConfig().AppName
	}
	return config.Load(*configFlag, config.Dir(appName))
}

// cliFromConfig layers command-line flags over the config file.
func cliFromConfig(cfg *config.Config) cl.CLI {
	override := func(dst *string, flag string) {
		if flag != "" {
			*dst = flag
		}
	}
	override(&cfg.AppName, *appNameFlag)
	override(&cfg.ProjectName, *projectNameFlag)
	override(&cfg.UI, *uiFlag)
	override(&cfg.Lang, *langFlag)
	override(&cfg.Controller.Script, *scriptFlag)
	override(&cfg.Logging.Dir, *logDirFlag)
	if len(*commandArgs) > 0 {
		cfg.Controller.Command = *commandArgs
	}

	logDir := cfg.Logging.Dir
	if logDir == "" {
		logDir = filepath.Join(config.Dir(cfg.AppName), "logs")
	}

	return cl.CLI{
		AppName:           cfg.AppName,
		ProjectName:       cfg.ProjectName,
		VersionString:     version,
		SessionID:         uuid.New().String(),
		UI:                cfg.UI,
		Standalone:        *standaloneFlag || (cfg.Controller.Script == "" && len(cfg.Controller.Command) == 0),
		AssumeYes:         *assumeYesFlag || cfg.Headless.AssumeYes,
		JSON:              *jsonFlag || cfg.Headless.JSON,
		ScriptPath:        cfg.Controller.Script,
		ControllerCommand: cfg.Controller.Command,
		LogDir:            logDir,
		IssueTrackerURL:   cfg.IssueTracker,
	}
}

// setupLogging sends the log to stderr and to a rotated file. It
// returns the file writer alone, for when stderr becomes unusable.
func setupLogging(logDir string, lc config.LoggingConfig) io.Writer {
	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "bootstrap.log"),
		MaxSize:    lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAgeDays,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	return logFile
}

func texts(cli cl.CLI) progress.Texts {
	l := cli.Localizer
	return progress.Texts{
		Title:          l.T("bootstrap.window.title", localize.Replacements{"project_name": cli.ProjectName}),
		Standalone:     l.T("bootstrap.status.standalone"),
		Preparing:      l.T("bootstrap.status.preparing"),
		ShutdownPrompt: l.T("bootstrap.shutdown_prompt.message", localize.Replacements{"app_name": cli.AppName}),
		ErrorMessage: func(details string) string {
			return l.T("bootstrap.error_dialog.message", localize.Replacements{
				"app_name": cli.AppName,
				"details":  details,
			})
		},
	}
}

func newController(cli cl.CLI) (progress.Controller, error) {
	if cli.ScriptPath != "" {
		log.Printf("Replaying script (%s)", cli.ScriptPath)
		script, err := setup.LoadScript(afero.NewOsFs(), cli.ScriptPath)
		if err != nil {
			return nil, err
		}
		return setup.NewScriptController(script), nil
	}

	pc, err := setup.NewProcessController(setup.ProcessSettings{
		Command:   cli.ControllerCommand,
		SessionID: cli.SessionID,
	})
	if err != nil {
		return nil, errors.WithMessage(err, fmt.Sprintf("bootstrapper command %q", cli.ControllerCommand))
	}
	return pc, nil
}
