package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bamsammich/crtcopy/internal/config"
	"github.com/bamsammich/crtcopy/internal/filter"
	"github.com/bamsammich/crtcopy/internal/ui"
)

// settings are the effective run options after config defaults and flags
// are merged. Flags set on the command line always win.
type settings struct {
	log       bool
	verify    bool
	checksum  bool
	localTime bool
	logDir    string
	bwLimit   int64
	filter    *filter.Chain
}

func resolveSettings(cmd *cobra.Command, opts *options, d config.DefaultsConfig) (settings, error) {
	flags := cmd.Flags()
	s := settings{log: true, verify: true, logDir: opts.logDir}

	pick := func(dst *bool, flag string, flagVal bool, def *bool) {
		switch {
		case flags.Changed(flag):
			*dst = flagVal
		case def != nil:
			*dst = *def
		}
	}
	pick(&s.log, "no-log", !opts.noLog, d.Log)
	pick(&s.verify, "no-verify", !opts.noVerify, d.Verify)
	pick(&s.checksum, "checksum", opts.checksum, d.Checksum)
	pick(&s.localTime, "local-time", opts.localTime, d.LocalTime)
	excludeSystem := false
	pick(&excludeSystem, "exclude-system", opts.excludeSystem, d.ExcludeSystem)

	if !flags.Changed("log-dir") && d.LogDir != nil {
		s.logDir = *d.LogDir
	}

	bwLimitStr := opts.bwLimitStr
	if !flags.Changed("bwlimit") && d.BWLimit != nil {
		bwLimitStr = *d.BWLimit
	}
	if bwLimitStr != "" {
		n, err := filter.ParseSize(bwLimitStr)
		if err != nil {
			return settings{}, fmt.Errorf("invalid --bwlimit: %w", err)
		}
		s.bwLimit = n
	}

	// Command-line rules come first so they win over file and config rules.
	chain := opts.chain
	if opts.filterFile != "" {
		if err := chain.LoadFile(opts.filterFile); err != nil {
			return settings{}, err
		}
	}
	if err := chain.AddExcludes(d.Exclude); err != nil {
		return settings{}, fmt.Errorf("config exclude: %w", err)
	}
	if excludeSystem {
		if err := chain.AddExcludes(filter.SystemPatterns); err != nil {
			return settings{}, err
		}
	}
	if !chain.Empty() {
		s.filter = chain
	}
	return s, nil
}

// setupLogging builds the CLI logger: text on stderr and, when the run log
// is enabled, JSON appended to <logDir>/crtcopy.INFO.log.
func setupLogging(stderr io.Writer, opts *options, s settings) (*slog.Logger, func(), error) {
	// Per-file warnings already reach the terminal through the presenter.
	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	if !s.log {
		return slog.New(textHandler), func() {}, nil
	}

	if err := os.MkdirAll(s.logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(s.logDir, logFileName)
	lf, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	fileLevel := slog.LevelInfo
	if opts.verbose {
		fileLevel = slog.LevelDebug
	}
	jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: fileLevel})
	logger := slog.New(ui.NewMultiHandler(textHandler, jsonHandler))
	return logger, func() { _ = lf.Close() }, nil
}
