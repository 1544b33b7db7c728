// Package download runs one request end to end: it prepares the destination
// directory, hands the URL unchanged to a fetch backend, and reports which
// files landed under the destination.
package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jmagar/ytgrab/internal/applog"
	"github.com/jmagar/ytgrab/internal/fetch"
	"github.com/jmagar/ytgrab/internal/helpers"
	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/notify"
)

// ErrDestinationUnusable is matched by every *DestinationError.
var ErrDestinationUnusable = errors.New("destination directory is not usable")

// DestinationError reports that the destination could not be created or
// written. It is returned before the fetcher is called.
type DestinationError struct {
	Path string
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("destination %s: %v", e.Path, e.Err)
}

func (e *DestinationError) Unwrap() []error { return []error{ErrDestinationUnusable, e.Err} }

// Report describes one run.
type Report struct {
	RunID       string
	URL         string
	Destination string
	Result      *fetch.Result
	// Files holds the absolute paths of regular files that appeared or
	// changed under Destination during the run, sorted.
	Files    []string
	Started  time.Time
	Finished time.Time
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTemplate sets the output filename template.
func WithTemplate(tmpl string) Option {
	return func(o *Orchestrator) { o.template = strings.TrimSpace(tmpl) }
}

// WithFormat sets the format selector forwarded to the backend.
func WithFormat(format string) Option {
	return func(o *Orchestrator) { o.format = strings.TrimSpace(format) }
}

// WithIgnoreErrors keeps playlists going past failed entries.
func WithIgnoreErrors(ignore bool) Option {
	return func(o *Orchestrator) { o.ignoreErrors = ignore }
}

// WithProgress receives progress samples from the backend.
func WithProgress(fn func(fetch.Progress)) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithAnnounce is called with the probed metadata before the download starts.
// It only fires when the fetcher also implements fetch.Prober.
func WithAnnounce(fn func(*fetch.Info)) Option {
	return func(o *Orchestrator) { o.announce = fn }
}

// WithLogger sets the activity logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithNotifier sets the completion notifier.
func WithNotifier(fn notify.Func) Option {
	return func(o *Orchestrator) { o.notify = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator forwards one URL to a fetch.Fetcher and guards the
// destination directory.
type Orchestrator struct {
	fetcher      fetch.Fetcher
	dest         string
	template     string
	format       string
	ignoreErrors bool
	progress     func(fetch.Progress)
	announce     func(*fetch.Info)
	log          zerolog.Logger
	notify       notify.Func
	now          func() time.Time
}

// New returns an Orchestrator writing into dest.
func New(fetcher fetch.Fetcher, dest string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:  fetcher,
		dest:     dest,
		template: model.DefaultFilenameTemplate,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run downloads rawURL into the destination. The fetcher is called at most
// once and its failure is returned as a *fetch.Error without retrying. The
// report is non-nil even when err is set.
func (o *Orchestrator) Run(ctx context.Context, rawURL string) (*Report, error) {
	url := strings.TrimSpace(rawURL)
	report := &Report{RunID: uuid.NewString(), URL: url, Started: o.now()}
	log := o.log.With().Str("run_id", report.RunID).Str("url", url).Logger()

	if url == "" {
		return o.fail(ctx, log, report, fetch.Wrap("", url, fetch.ErrEmptyURL))
	}

	dest, err := PrepareDestination(o.dest)
	if err != nil {
		return o.fail(ctx, log, report, err)
	}
	report.Destination = dest
	log = log.With().Str("dest", dest).Logger()

	before, err := takeSnapshot(dest)
	if err != nil {
		return o.fail(ctx, log, report, &DestinationError{Path: dest, Err: err})
	}
	log.Info().Str("event", applog.EventRunStarted).Msg("")

	o.probe(ctx, log, url)

	res, fetchErr := o.fetcher.Fetch(ctx, url, fetch.Options{
		OutputDir:        dest,
		FilenameTemplate: o.template,
		Format:           o.format,
		IgnoreErrors:     o.ignoreErrors,
		Progress:         o.progress,
	})
	report.Result = res

	after, err := takeSnapshot(dest)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot after fetch failed")
	} else {
		report.Files = after.changedSince(before)
	}
	for _, f := range report.Files {
		log.Info().Str("event", applog.EventFileWritten).Str("path", f).Msg("")
	}
	if res != nil {
		for _, f := range res.Failed {
			log.Warn().Str("event", applog.EventItemFailed).Str("title", f.Title).Err(f.Err).Msg("")
		}
	}

	if fetchErr != nil {
		return o.fail(ctx, log, report, fetch.Wrap("", url, fetchErr))
	}

	report.Finished = o.now()
	log.Info().
		Str("event", applog.EventRunFinished).
		Int("files", len(report.Files)).
		Dur("elapsed", report.Duration()).
		Msg("")
	o.sendNotification(ctx, log, "ytgrab: download complete", successMessage(report), model.GotifyPriority)
	return report, nil
}

func (o *Orchestrator) fail(ctx context.Context, log zerolog.Logger, report *Report, err error) (*Report, error) {
	report.Finished = o.now()
	log.Error().Str("event", applog.EventRunFailed).Err(err).Msg("")
	o.sendNotification(ctx, log, "ytgrab: download failed",
		fmt.Sprintf("%s\n%v\nrun %s", report.URL, err, report.RunID), model.GotifyFailLevel)
	return report, err
}

func (o *Orchestrator) probe(ctx context.Context, log zerolog.Logger, url string) {
	if o.announce == nil {
		return
	}
	prober, ok := o.fetcher.(fetch.Prober)
	if !ok {
		return
	}
	info, err := prober.Probe(ctx, url)
	if err != nil {
		// The fetch reports the real error.
		log.Debug().Str("event", applog.EventProbeFailed).Err(err).Msg("")
		return
	}
	log.Debug().
		Str("event", applog.EventProbe).
		Str("title", info.Title).
		Bool("playlist", info.Playlist).
		Int("count", info.Count).
		Msg("")
	o.announce(info)
}

func (o *Orchestrator) sendNotification(ctx context.Context, log zerolog.Logger, title, message string, priority int) {
	if o.notify == nil {
		return
	}
	// A cancelled run still deserves a notification.
	ctx = context.WithoutCancel(ctx)
	if err := o.notify(ctx, title, message, priority); err != nil {
		log.Warn().Str("event", applog.EventNotifyError).Err(err).Msg("")
	}
}

func successMessage(r *Report) string {
	var b strings.Builder
	if r.Result != nil && r.Result.Title != "" {
		fmt.Fprintf(&b, "%s\n", r.Result.Title)
	}
	fmt.Fprintf(&b, "%d file(s) saved to %s", len(r.Files), r.Destination)
	if r.Result != nil && len(r.Result.Failed) > 0 {
		fmt.Fprintf(&b, ", %d failed", len(r.Result.Failed))
	}
	fmt.Fprintf(&b, "\nrun %s", r.RunID)
	return b.String()
}

// PrepareDestination expands and absolutises dir, creates it, and proves it
// is writable. Errors are *DestinationError.
func PrepareDestination(dir string) (string, error) {
	raw := dir
	if strings.TrimSpace(dir) == "" {
		return "", &DestinationError{Path: raw, Err: errors.New("no destination configured")}
	}
	if err := helpers.ValidatePath(dir); err != nil {
		return "", &DestinationError{Path: raw, Err: err}
	}
	dir, err := helpers.ExpandHome(dir)
	if err != nil {
		return "", &DestinationError{Path: raw, Err: err}
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", &DestinationError{Path: raw, Err: err}
	}
	if err := helpers.EnsureWritableDir(dir); err != nil {
		return "", &DestinationError{Path: dir, Err: err}
	}
	return dir, nil
}
