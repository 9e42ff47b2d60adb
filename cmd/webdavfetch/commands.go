package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rtx750ti/webdav-fs/internal/auth"
	"github.com/rtx750ti/webdav-fs/internal/config"
	"github.com/rtx750ti/webdav-fs/internal/downloader"
	"github.com/rtx750ti/webdav-fs/internal/progress"
	"github.com/rtx750ti/webdav-fs/internal/webdav"
	"github.com/rtx750ti/webdav-fs/pkg/exclude"
)

var (
	cfgPath string
	verbose bool
	v       = viper.New()
	logger  *slog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "webdavfetch",
		Short:   "Browse and download files from a WebDAV server",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "path to config file")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().String("url", "", "WebDAV server base URL")
	root.PersistentFlags().String("username", "", "WebDAV username")
	_ = v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = v.BindPFlag("server.url", root.PersistentFlags().Lookup("url"))
	_ = v.BindPFlag("server.username", root.PersistentFlags().Lookup("username"))
	v.SetEnvPrefix("webdavfetch")
	v.AutomaticEnv()

	root.AddCommand(newStatCmd(), newLsCmd(), newGetCmd())
	return root
}

func setupLogging() {
	level := slog.LevelInfo
	if v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// buildClient resolves the server URL/username from flags, environment, or
// the saved config file (in that precedence order), reads the password
// from WEBDAVFETCH_PASSWORD, and returns an authenticated webdav.Client.
func buildClient() (*webdav.Client, error) {
	serverURL := v.GetString("server.url")
	username := v.GetString("server.username")

	if serverURL == "" || username == "" {
		if cfg, err := config.Load(cfgPath); err == nil {
			if serverURL == "" {
				serverURL = cfg.Server.URL
			}
			if username == "" {
				username = cfg.Server.Username
			}
		}
	}

	password := os.Getenv("WEBDAVFETCH_PASSWORD")
	if serverURL == "" || username == "" || password == "" {
		return nil, fmt.Errorf("webdavfetch: server URL, username, and WEBDAVFETCH_PASSWORD must all be set (via flags, config, or environment)")
	}

	handle, err := auth.New(username, password, serverURL)
	if err != nil {
		return nil, fmt.Errorf("webdavfetch: %w", err)
	}
	return webdav.New(handle), nil
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show metadata for a single remote file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			entry, err := client.Stat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEntry(entry)
			return nil
		},
	}
}

func newLsCmd() *cobra.Command {
	var excludePatterns []string
	cmd := &cobra.Command{
		Use:   "ls <path>",
		Short: "List the contents of a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			entries, err := client.ListDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			matcher := buildMatcher(excludePatterns)
			for _, e := range entries {
				if matcher != nil && matcher.ShouldExclude(e.Name, e.IsDir) {
					continue
				}
				printEntry(e)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&excludePatterns, "exclude", nil, "gitignore-style pattern to exclude from the listing (repeatable)")
	return cmd
}

func newGetCmd() *cobra.Command {
	var (
		output      string
		chunked     bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Download a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}

			entry, err := client.Stat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if entry.IsDir {
				return fmt.Errorf("webdavfetch: %s is a directory", args[0])
			}

			absoluteURL, err := client.AbsoluteURL(args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = filepath.Base(entry.Name)
			}

			d := downloader.New(client.HTTPClient(), absoluteURL, entry.Size, entry.IsDir).SaveTo(output)
			if chunked {
				d = d.Chunked().MaxConcurrentChunks(concurrency)
			}
			d.WithHook(&progressLogHook{path: args[0]})
			d.WithHook(newProgressBarHook(args[0], entry.Size))

			return runGet(cmd.Context(), d)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "local destination path (default: remote file name)")
	cmd.Flags().BoolVar(&chunked, "chunked", false, "use bounded-concurrency range downloads")
	cmd.Flags().IntVar(&concurrency, "concurrency", downloader.DefaultMaxConcurrentChunks, "max concurrent range requests when --chunked")
	return cmd
}

func runGet(ctx context.Context, d *downloader.Downloader) error {
	_, err := d.Send(ctx)
	if err != nil {
		return fmt.Errorf("webdavfetch: download failed: %w", err)
	}
	return nil
}

func buildMatcher(patterns []string) *exclude.Matcher {
	if len(patterns) == 0 {
		return nil
	}
	set := exclude.NewPatternSet()
	for _, p := range patterns {
		_ = set.AddPattern(p)
	}
	return exclude.NewMatcher(set)
}

func printEntry(e *webdav.Entry) {
	kind := "file"
	if e.IsDir {
		kind = "dir "
	}
	size := "-"
	if e.Size != nil {
		size = webdav.FormatSize(*e.Size)
	}
	fmt.Printf("%s\t%8s\t%s\n", kind, size, e.Name)
}

// progressLogHook logs download progress at debug level; everything else
// is a no-op.
type progressLogHook struct {
	downloader.BaseHook
	path string
}

func (h *progressLogHook) OnProgress(bytesDone uint64, total *uint64) {
	if total != nil {
		slog.Debug("download progress", "path", h.path, "bytes_done", bytesDone, "total", *total)
		return
	}
	slog.Debug("download progress", "path", h.path, "bytes_done", bytesDone)
}

// progressBarHook renders a terminal progress bar for interactive use; it
// is silent (no bar) when the remote size is unknown, since the bar has
// nothing to fill against.
type progressBarHook struct {
	downloader.BaseHook
	bar *progress.ProgressBar
}

func newProgressBarHook(path string, size *int64) *progressBarHook {
	bar := progress.NewProgressBar(40)
	bar.SetOperation(path)
	if size != nil {
		bar.Start(*size)
	} else {
		bar.SetEnabled(false)
	}
	return &progressBarHook{bar: bar}
}

func (h *progressBarHook) OnProgress(bytesDone uint64, total *uint64) {
	h.bar.Update(int64(bytesDone))
}

func (h *progressBarHook) AfterComplete() {
	h.bar.Finish()
}
