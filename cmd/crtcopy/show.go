package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/crtcopy/internal/crtime"
	"github.com/bamsammich/crtcopy/internal/xattr"
)

func newShowCmd(stdout, stderr io.Writer, store xattr.Store) *cobra.Command {
	var (
		localTime bool
		source    bool
	)

	cmd := &cobra.Command{
		Use:   "show FILE...",
		Short: "Print the NTFS creation time recorded on files",
		Long: `show prints the creation time stored on copied files, preferring
user.ntfs_crtime_readable and falling back to decoding user.ntfs_crtime.
With --source it reads system.ntfs_crtime from files on an ntfs-3g mount
instead. Files without a creation time print "-".`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			loc := time.UTC
			if localTime {
				loc = time.Local
			}
			lookup := func(path string) (string, error) { return crtime.Lookup(store, path, loc) }
			if source {
				lookup = func(path string) (string, error) { return sourceCrtime(store, path, loc) }
			}

			failed := 0
			for _, path := range args {
				s, err := lookup(path)
				switch {
				case err != nil:
					fmt.Fprintf(stderr, "%s: %v\n", path, err)
					failed++
				case s == "":
					fmt.Fprintf(stdout, "%s\t-\n", path)
				default:
					fmt.Fprintf(stdout, "%s\t%s\n", path, s)
				}
			}
			if failed > 0 {
				return &exitError{code: exitUsage}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&localTime, "local-time", false, "decode raw values in the local zone")
	cmd.Flags().BoolVar(&source, "source", false, "read "+crtime.SourceAttr+" from an ntfs-3g file")
	return cmd
}

// sourceCrtime formats the creation time ntfs-3g exposes on path, or ""
// when it has none.
func sourceCrtime(store xattr.Store, path string, loc *time.Location) (string, error) {
	raw, _, err := crtime.NewReader(store).ReadCrtime(path)
	if errors.Is(err, xattr.ErrNoAttr) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	t, err := crtime.Decode(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s)", crtime.FormatReadable(t.In(loc)), crtime.Hex(raw)), nil
}
