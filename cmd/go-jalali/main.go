package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/tartampluch/go-jalali/internal/config"
	"github.com/tartampluch/go-jalali/internal/convert"
	"github.com/tartampluch/go-jalali/internal/feed"
	"github.com/tartampluch/go-jalali/internal/server"
	"github.com/zalando/go-keyring"
)

// main delegates to runMain so deferred cleanups (like closing the log
// file) run before the process terminates. os.Exit() skips defers.
func main() {
	os.Exit(runMain())
}

// runMain manages argument parsing, logging setup and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	toGregorian := flag.String(config.FlagToGregorian, "", config.FlagDescToGregorian)
	toJalali := flag.String(config.FlagToJalali, "", config.FlagDescToJalali)
	serveMode := flag.Bool(config.FlagServe, false, config.FlagDescServe)
	vcfPath := flag.String(config.FlagVCF, "", config.FlagDescVCF)
	webURL := flag.String(config.FlagURL, "", config.FlagDescURL)
	webUser := flag.String(config.FlagUser, "", config.FlagDescUser)
	port := flag.String(config.FlagPort, config.DefaultPort, config.FlagDescPort)
	lang := flag.String(config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	reminder := flag.String(config.FlagReminder, "", config.FlagDescReminder)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// Pure conversions print to stdout and exit; no server lifecycle.
	if *toGregorian != "" || *toJalali != "" {
		return runConvert(*toGregorian, *toJalali)
	}

	if !*serveMode {
		fmt.Fprintln(os.Stderr, config.ErrNoInput)
		flag.Usage()
		return config.ExitCodeUsage
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := runServe(ctx, serveOptions{
		VCFPath:         *vcfPath,
		WebURL:          *webURL,
		WebUser:         *webUser,
		Port:            *port,
		Language:        *lang,
		ReminderTrigger: *reminder,
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return config.ExitCodeSuccess
		}
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// runConvert handles the one-shot date conversion flags.
func runConvert(toGregorian, toJalali string) int {
	var out string
	var err error

	if toGregorian != "" {
		out, err = convert.SolarToGregorian(toGregorian)
	} else {
		out, err = convert.GregorianToSolar(toJalali)
	}

	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompConvert,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	fmt.Printf(config.MsgConvertOutput, out)
	return config.ExitCodeSuccess
}

// serveOptions carries the flag values of the serve mode.
type serveOptions struct {
	VCFPath         string
	WebURL          string
	WebUser         string
	Port            string
	Language        string
	ReminderTrigger string
}

// runServe wires the generator to the HTTP server and refreshes the
// feed periodically until the context is cancelled.
func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := buildSyncConfig(opts)
	if err != nil {
		return err
	}

	translator := feed.NewTranslator(opts.Language)
	gen := &feed.Generator{
		Clock:         feed.RealClock{},
		Fetcher:       feed.NewHTTPFetcher(),
		FormatSummary: translator.Summary,
	}

	srv := server.NewFeedServer(opts.Port)

	refresh := func() {
		ics, _, _, err := gen.RunSync(ctx, cfg)
		if err != nil {
			slog.Error(config.ErrAppFailed,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
			return
		}
		srv.Update(ics)
	}

	refresh()

	go func() {
		ticker := time.NewTicker(config.DefaultICalRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh()
			}
		}
	}()

	return srv.Start(ctx)
}

// buildSyncConfig derives the generator configuration from the flags.
// A local file takes precedence over a web source.
func buildSyncConfig(opts serveOptions) (feed.SyncConfig, error) {
	cfg := feed.SyncConfig{
		ReminderTrigger: opts.ReminderTrigger,
	}

	switch {
	case opts.VCFPath != "":
		cfg.Mode = config.SourceModeLocal
		cfg.LocalPath = opts.VCFPath
	case opts.WebURL != "":
		cfg.Mode = config.SourceModeWeb
		cfg.WebURL = opts.WebURL
		cfg.WebUser = opts.WebUser
		if opts.WebUser != "" {
			if p, err := keyring.Get(config.KeyringService, opts.WebUser); err == nil {
				cfg.WebPass = p
			} else {
				slog.Debug(config.MsgKeyringEmpty,
					config.LogKeyUser, opts.WebUser,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompMain,
				)
			}
		}
	default:
		return feed.SyncConfig{}, errors.New(config.ErrNoInput)
	}

	return cfg, nil
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
