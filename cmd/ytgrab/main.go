package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"

	"github.com/jmagar/ytgrab/internal/applog"
	"github.com/jmagar/ytgrab/internal/config"
	"github.com/jmagar/ytgrab/internal/download"
	"github.com/jmagar/ytgrab/internal/fetch"
	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/notify"
	"github.com/jmagar/ytgrab/internal/ui"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// deps holds the pieces main swaps out in tests.
type deps struct {
	newFetcher  func(name string, cfg fetch.BackendConfig) (fetch.Fetcher, error)
	stdin       io.Reader
	interactive bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], deps{
		newFetcher:  fetch.New,
		stdin:       os.Stdin,
		interactive: ui.IsInteractive(os.Stdin),
	})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, d deps) int {
	args, err := config.ParseArgs(argv)
	if errors.Is(err, arg.ErrHelp) || errors.Is(err, arg.ErrVersion) {
		return exitOK
	}
	if err != nil {
		ui.PrintError(err.Error())
		return exitUsage
	}

	cfg, err := config.ParseCfg(args)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Configuration error: %v", err))
		return exitUsage
	}

	// Some fetch libraries log through the standard logger.
	if !cfg.Debug {
		log.SetOutput(io.Discard)
	}

	logger, closer, err := applog.Open(cfg.LogPath, cfg.Debug)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Activity log disabled: %v", err))
	}
	defer closer.Close()
	if cfg.Debug && config.LoadedConfigPath != "" {
		ui.PrintInfo(fmt.Sprintf("Config: %s", config.LoadedConfigPath))
	}

	fetcher, err := d.newFetcher(cfg.Backend, fetch.BackendConfig{
		YtdlpPath:   cfg.YtdlpPath,
		AutoInstall: cfg.AutoInstall,
	})
	if err != nil {
		ui.PrintError(err.Error())
		return exitUsage
	}

	url := cfg.URL
	if url == "" {
		if d.interactive {
			ui.PrintHeader("ytgrab: YouTube video & playlist downloader")
		}
		url, err = ui.ReadURL(d.stdin, d.interactive)
		if err != nil {
			ui.PrintError(fmt.Errorf("%w: %w", model.ErrNoURL, err).Error())
			return exitFailure
		}
	}

	if cfg.InfoOnly {
		return runInfo(ctx, fetcher, url)
	}

	progress := ui.NewProgressLine()
	opts := []download.Option{
		download.WithTemplate(cfg.FilenameTemplate),
		download.WithFormat(cfg.Format),
		download.WithIgnoreErrors(cfg.IgnoreErrors),
		download.WithLogger(logger),
		download.WithNotifier(notify.BuildNotifier(cfg.GotifyURL, cfg.GotifyToken)),
	}
	if !cfg.Quiet {
		opts = append(opts,
			download.WithProgress(progress.Update),
			download.WithAnnounce(func(info *fetch.Info) {
				ui.PrintDownload(ui.DescribeInfo(info))
			}),
		)
	}

	report, err := download.New(fetcher, cfg.OutPath, opts...).Run(ctx, url)
	progress.Done()
	if err != nil {
		printFailure(ctx, err)
		return exitFailure
	}
	printReport(report, cfg.Quiet)
	return exitOK
}

func runInfo(ctx context.Context, fetcher fetch.Fetcher, url string) int {
	prober, ok := fetcher.(fetch.Prober)
	if !ok {
		ui.PrintError("This backend cannot report metadata")
		return exitUsage
	}
	info, err := prober.Probe(ctx, url)
	if err != nil {
		printFailure(ctx, err)
		return exitFailure
	}
	ui.PrintSection("Media info")
	kind := "video"
	if info.Playlist {
		kind = "playlist"
	}
	ui.PrintKeyValue("Type", kind, ui.ColorGreen)
	if info.Title != "" {
		ui.PrintKeyValue("Title", info.Title, ui.ColorGreen)
	}
	if info.ID != "" {
		ui.PrintKeyValue("ID", info.ID, ui.ColorGreen)
	}
	if info.Playlist {
		ui.PrintKeyValue("Videos", fmt.Sprint(info.Count), ui.ColorGreen)
	}
	return exitOK
}

func printFailure(ctx context.Context, err error) {
	var destErr *download.DestinationError
	if errors.As(err, &destErr) {
		ui.PrintError(fmt.Sprintf("Cannot use download folder: %v", err))
		return
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		ui.PrintWarning("Download cancelled")
		return
	}
	ui.PrintError(fmt.Sprintf("Download failed: %v", err))
	if errors.Is(err, fetch.ErrBackendUnavailable) {
		ui.PrintInfo("Install yt-dlp, set ytdlpPath, enable autoInstall, or pick another --backend.")
		return
	}
	ui.PrintInfo("Check the URL or your internet connection and try again.")
}

func printReport(r *download.Report, quiet bool) {
	res := r.Result
	switch {
	case res != nil && res.Playlist:
		ui.PrintSuccess(fmt.Sprintf("Playlist download complete! Videos saved to %s", r.Destination))
	case len(r.Files) == 1:
		ui.PrintSuccess(fmt.Sprintf("Download complete! Saved as: %s", r.Files[0]))
	case len(r.Files) == 0:
		ui.PrintInfo(fmt.Sprintf("Nothing new to download, files already in %s", r.Destination))
	default:
		ui.PrintSuccess(fmt.Sprintf("Download complete! %d files saved to %s", len(r.Files), r.Destination))
	}
	if res != nil {
		for _, f := range res.Failed {
			ui.PrintWarning(fmt.Sprintf("Skipped %q: %v", f.Title, f.Err))
		}
	}
	if quiet {
		return
	}

	var total int64
	for _, f := range r.Files {
		if fi, err := os.Stat(f); err == nil {
			total += fi.Size()
		}
	}
	ui.PrintSection("Summary")
	ui.PrintKeyValue("Files", fmt.Sprint(len(r.Files)), ui.ColorGreen)
	ui.PrintKeyValue("Size", humanize.Bytes(uint64(total)), ui.ColorGreen)
	ui.PrintKeyValue("Elapsed", r.Duration().Round(100*time.Millisecond).String(), ui.ColorGreen)
	ui.PrintKeyValue("Run ID", r.RunID, ui.ColorCyan)
}
