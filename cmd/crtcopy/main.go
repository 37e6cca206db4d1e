package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/crtcopy/internal/config"
	"github.com/bamsammich/crtcopy/internal/engine"
	"github.com/bamsammich/crtcopy/internal/event"
	"github.com/bamsammich/crtcopy/internal/filter"
	"github.com/bamsammich/crtcopy/internal/stats"
	"github.com/bamsammich/crtcopy/internal/ui"
	"github.com/bamsammich/crtcopy/internal/xattr"
)

var version = "dev"

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitFatal       = 2
	exitInterrupted = 130
)

// logFileName is appended to, never truncated, so one file keeps the
// history of every run made from the same log directory.
const logFileName = "crtcopy.INFO.log"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// filterFlag is a pflag.Value that keeps CLI ordering of --exclude and
// --include by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

var _ pflag.Value = (*filterFlag)(nil)

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

type options struct {
	src, dst      string
	noLog         bool
	noVerify      bool
	checksum      bool
	localTime     bool
	excludeSystem bool
	filterFile    string
	bwLimitStr    string
	logDir        string
	verbose       bool
	quiet         bool
	noProgress    bool
	showVersion   bool

	chain *filter.Chain
	store xattr.Store
}

func (o *options) bindFlags(f *pflag.FlagSet) {
	f.BoolVar(&o.showVersion, "version", false, "print version and exit")
	f.StringVar(&o.src, "src", "", "source directory, usually an ntfs-3g mount")
	f.StringVar(&o.dst, "dest", "", "destination directory; must not exist or be empty")
	f.BoolVar(&o.noLog, "no-log", false, "do not write the run log")
	f.BoolVar(&o.noVerify, "no-verify", false, "skip the post-copy completeness check")
	f.BoolVar(&o.checksum, "checksum", false, "also compare file contents (BLAKE3) when verifying")
	f.BoolVar(&o.localTime, "local-time", false, "write readable creation times in the local zone instead of UTC")
	f.BoolVar(&o.excludeSystem, "exclude-system", false,
		"skip Windows system files ($RECYCLE.BIN, System Volume Information, pagefile.sys, ...)")
	f.Var(&filterFlag{chain: o.chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	f.Var(&filterFlag{chain: o.chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	f.StringVar(&o.filterFile, "filter", "", "read filter rules from FILE")
	f.StringVar(&o.bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 50M, 1G)")
	f.StringVar(&o.logDir, "log-dir", ".", "directory for "+logFileName)
	f.BoolVarP(&o.verbose, "verbose", "v", false, "verbose output")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "suppress all output except errors")
	f.BoolVar(&o.noProgress, "no-progress", false, "print one line per file instead of a progress bar")
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr, xattr.NewOSStore())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	return exitOK
}

func newRootCmd(stdout, stderr io.Writer, store xattr.Store) *cobra.Command {
	opts := &options{chain: filter.NewChain(), store: store}
	// NTFS resolves names case-insensitively.
	opts.chain.FoldCase = true

	rootCmd := &cobra.Command{
		Use:   "crtcopy --src DIR --dest DIR",
		Short: "Copy a tree off an NTFS volume, keeping each file's creation time",
		Long: `crtcopy copies every regular file under --src into --dest and stores the
NTFS creation time of each source file (the system.ntfs_crtime attribute
exposed by ntfs-3g) on the copy as two extended attributes:

  user.ntfs_crtime           the raw 8-byte FILETIME
  user.ntfs_crtime_readable  e.g. 2020-01-11T08:00:00.0000000Z

Files whose creation time cannot be read or written are still copied and
reported. After the copy the destination is checked for missing files.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.showVersion {
				fmt.Fprintf(stdout, "crtcopy %s\n", version)
				return nil
			}
			return runCopy(cmd, opts, stdout, stderr)
		},
	}

	opts.bindFlags(rootCmd.Flags())

	rootCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")
	_ = rootCmd.MarkFlagDirname("src")
	_ = rootCmd.MarkFlagDirname("dest")
	_ = rootCmd.MarkFlagDirname("log-dir")
	_ = rootCmd.MarkFlagFilename("filter")

	rootCmd.AddCommand(newShowCmd(stdout, stderr, store))
	rootCmd.AddCommand(newConfigCmd(stdout))
	rootCmd.AddCommand(newDocsCmd())

	return rootCmd
}

//nolint:gocyclo,revive // cyclomatic: wires flags, config, logging and presenter
func runCopy(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	if opts.src == "" || opts.dst == "" {
		return errors.New("both --src and --dest are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, opts, cfg.Defaults)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(stderr, opts, settings)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("crtcopy started", "version", version, "args", os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 1024)

	isTTY, width := ui.Terminal(stderr)
	presenter := ui.NewPresenter(ui.Config{
		Writer:     stdout,
		ErrWriter:  stderr,
		Stats:      collector,
		Width:      width,
		IsTTY:      isTTY,
		Quiet:      opts.quiet,
		NoProgress: opts.noProgress,
	})

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(events)
	}()

	result := engine.Run(ctx, engine.Config{
		Src:       opts.src,
		Dst:       opts.dst,
		Logging:   settings.log,
		Verify:    settings.verify,
		Store:     opts.store,
		Logger:    logger,
		Events:    events,
		Stats:     collector,
		Filter:    settings.filter,
		LocalTime: settings.localTime,
		Checksum:  settings.checksum,
		BWLimit:   settings.bwLimit,
	})
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
	}

	if result.Err != nil {
		logger.Error("copy aborted", "error", result.Err)
		return &exitError{code: exitFatal}
	}

	if !opts.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(stderr, summary)
		}
	}
	// Counts and failed paths print even with -q; per-file events may have
	// been dropped and the run log may be off.
	reportOutcome(stderr, result)
	if !opts.quiet && settings.log {
		fmt.Fprintf(stderr, "log: %s\n", filepath.Join(settings.logDir, logFileName))
	}

	if result.Summary.Interrupted {
		return &exitError{code: exitInterrupted}
	}
	return nil
}

// reportOutcome prints the run counts and one "path: cause" line per file
// that failed or lost its crtime.
func reportOutcome(w io.Writer, result engine.Result) {
	fmt.Fprintln(w, result.Summary.String())
	for _, rec := range result.Manifest.Failures() {
		fmt.Fprintf(w, "%s: %s: %s\n", rec.RelPath, rec.Outcome, rec.Cause())
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
