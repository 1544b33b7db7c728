package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"
)

const ytdlpProgressInterval = 500 * time.Millisecond

// Ytdlp delegates to the yt-dlp executable through go-ytdlp. The output
// template and format selector are forwarded verbatim, so yt-dlp's own
// naming, merging and overwrite rules apply.
type Ytdlp struct {
	executable  string
	autoInstall bool
	install     func(ctx context.Context) error
}

// NewYtdlp returns the yt-dlp backend.
func NewYtdlp(cfg BackendConfig) *Ytdlp {
	return &Ytdlp{
		executable:  strings.TrimSpace(cfg.YtdlpPath),
		autoInstall: cfg.AutoInstall,
		install: func(ctx context.Context) error {
			_, err := goytdlp.Install(ctx, nil)
			return err
		},
	}
}

// Fetch runs yt-dlp once for url. With IgnoreErrors yt-dlp carries on past
// failed entries but still exits non-zero; that run counts as a partial
// success when at least one entry was downloaded.
func (y *Ytdlp) Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	if strings.TrimSpace(url) == "" {
		return nil, Wrap("ytdlp", url, ErrEmptyURL)
	}
	if err := y.ensureInstalled(ctx); err != nil {
		return nil, Wrap("ytdlp", url, err)
	}

	res, runErr := y.command(opts).Run(ctx, url)
	if runErr != nil && !partialRun(ctx, res, runErr, opts) {
		return nil, Wrap("ytdlp", url, classifyYtdlpErr(runErr))
	}

	_, isList := PlaylistID(url)
	result := &Result{Playlist: isList}
	infos, err := res.GetExtractedInfo()
	if err != nil && runErr == nil {
		// The download itself succeeded; only the JSON summary is unreadable.
		return result, nil
	}
	for _, info := range infos {
		if info == nil {
			continue
		}
		item := Item{ID: info.ID}
		if info.Title != nil {
			item.Title = *info.Title
		}
		if info.Filename != nil {
			item.Path = *info.Filename
		}
		if info.PlaylistTitle != nil && result.Title == "" {
			result.Title = *info.PlaylistTitle
		}
		result.Items = append(result.Items, item)
	}
	if runErr != nil {
		if len(result.Items) == 0 {
			return nil, Wrap("ytdlp", url, classifyYtdlpErr(runErr))
		}
		result.Failed = ytdlpFailures(res, runErr)
	}
	if len(result.Items) > 1 {
		result.Playlist = true
	}
	if !result.Playlist && len(result.Items) == 1 {
		result.Title = result.Items[0].Title
	}
	return result, nil
}

// partialRun reports whether a failed run may still have saved entries.
func partialRun(ctx context.Context, res *goytdlp.Result, err error, opts Options) bool {
	if !opts.IgnoreErrors || res == nil || ctx.Err() != nil {
		return false
	}
	_, ok := goytdlp.IsExitCodeError(err)
	return ok
}

// ytdlpFailures turns each ERROR line yt-dlp logged into a Failure.
func ytdlpFailures(res *goytdlp.Result, runErr error) []Failure {
	var failed []Failure
	for _, l := range res.OutputLogs {
		if l == nil || l.Pipe != "stderr" || !strings.HasPrefix(l.Line, "ERROR:") {
			continue
		}
		failed = append(failed, Failure{
			Title: ytdlpErrorSubject(l.Line),
			Err:   classifyYtdlpErr(errors.New(l.Line)),
		})
	}
	if len(failed) == 0 {
		failed = append(failed, Failure{Err: classifyYtdlpErr(runErr)})
	}
	return failed
}

// ytdlpErrorSubject pulls the media id out of "ERROR: [youtube] <id>: ...".
func ytdlpErrorSubject(line string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
	if !strings.HasPrefix(rest, "[") {
		return ""
	}
	_, rest, ok := strings.Cut(rest, "]")
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(strings.TrimSpace(rest), ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(id)
}

// Probe asks yt-dlp for metadata only. Playlists are listed flat, so entries
// are not resolved one by one before the real download.
func (y *Ytdlp) Probe(ctx context.Context, url string) (*Info, error) {
	if strings.TrimSpace(url) == "" {
		return nil, Wrap("ytdlp", url, ErrEmptyURL)
	}
	if err := y.ensureInstalled(ctx); err != nil {
		return nil, Wrap("ytdlp", url, err)
	}
	cmd := goytdlp.New().FlatPlaylist().DumpJSON().SkipDownload()
	if y.executable != "" {
		cmd = cmd.SetExecutable(y.executable)
	}
	res, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, Wrap("ytdlp", url, classifyYtdlpErr(err))
	}
	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, Wrap("ytdlp", url, fmt.Errorf("read metadata: %w", err))
	}
	return probeInfo(url, infos), nil
}

func probeInfo(url string, infos []*goytdlp.ExtractedInfo) *Info {
	id, isList := PlaylistID(url)
	info := &Info{ID: id, Playlist: isList || len(infos) > 1, Count: len(infos)}
	if !info.Playlist {
		info.ID, _ = VideoID(url)
		if len(infos) == 1 && infos[0] != nil && infos[0].Title != nil {
			info.Title = *infos[0].Title
		}
		return info
	}
	for _, e := range infos {
		if e == nil {
			continue
		}
		if e.PlaylistTitle != nil && info.Title == "" {
			info.Title = *e.PlaylistTitle
		}
		if e.PlaylistCount != nil && *e.PlaylistCount > info.Count {
			info.Count = *e.PlaylistCount
		}
	}
	return info
}

func (y *Ytdlp) ensureInstalled(ctx context.Context) error {
	if y.executable != "" || !y.autoInstall || y.install == nil {
		return nil
	}
	if err := y.install(ctx); err != nil {
		return withCause(ErrBackendUnavailable, fmt.Errorf("install yt-dlp: %w", err))
	}
	return nil
}

func (y *Ytdlp) command(opts Options) *goytdlp.Command {
	tmpl := opts.FilenameTemplate
	if tmpl == "" {
		tmpl = "%(title)s.%(ext)s"
	}
	cmd := goytdlp.New().
		Output(filepath.Join(opts.OutputDir, tmpl)).
		PrintJSON()
	if y.executable != "" {
		cmd = cmd.SetExecutable(y.executable)
	}
	if opts.Format != "" {
		cmd = cmd.Format(opts.Format)
	}
	if opts.IgnoreErrors {
		cmd = cmd.IgnoreErrors()
	}
	if opts.Progress != nil {
		cmd = cmd.ProgressFunc(ytdlpProgressInterval, func(update goytdlp.ProgressUpdate) {
			p := Progress{
				Downloaded: int64(update.DownloadedBytes),
				Size:       int64(update.TotalBytes),
				ETA:        update.ETA(),
			}
			p.Percent = percentOf(p.Downloaded, p.Size)
			if update.Info != nil && update.Info.Title != nil {
				p.Title = *update.Info.Title
			}
			opts.emit(p)
		})
	}
	return cmd
}

func classifyYtdlpErr(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist),
		strings.Contains(msg, "executable file not found"),
		strings.Contains(msg, "no such file or directory"):
		return withCause(ErrBackendUnavailable, err)
	case strings.Contains(msg, "unsupported url"):
		return withCause(ErrUnsupportedURL, err)
	case strings.Contains(msg, "private video"),
		strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "not available in your country"),
		strings.Contains(msg, "sign in to confirm your age"):
		return withCause(ErrUnavailable, err)
	case strings.Contains(msg, "requested format is not available"):
		return withCause(ErrNoFormat, err)
	}
	return err
}
