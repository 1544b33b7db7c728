// Package fetch defines the media fetch capability the downloader delegates
// to, and the backends that implement it on top of third-party extractors.
//
// A Fetcher resolves one URL (video or playlist) and writes every resulting
// media file into Options.OutputDir. Backends own format selection, network
// access, and their own overwrite/skip policy; callers never inspect the
// fetched media.
package fetch

import (
	"context"
	"time"
)

// Fetcher is the one operation the downloader needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*Result, error)
}

// Prober is implemented by backends that can describe a URL without
// downloading it.
type Prober interface {
	Probe(ctx context.Context, url string) (*Info, error)
}

// Options configures a single Fetch call.
type Options struct {
	OutputDir        string
	FilenameTemplate string
	Format           string
	// IgnoreErrors keeps a playlist going after a failed entry.
	IgnoreErrors bool
	Progress     func(Progress)
}

// Result describes what a backend reports after a successful Fetch.
type Result struct {
	Title    string
	Playlist bool
	Items    []Item
	Failed   []Failure
}

// Item is one fetched media file.
type Item struct {
	ID    string
	Title string
	Path  string
	// Skipped is set when the target file already existed and was kept.
	Skipped bool
}

// Failure is a playlist entry skipped because IgnoreErrors was set.
type Failure struct {
	Title string
	Err   error
}

// Info is the metadata returned by Probe.
type Info struct {
	ID       string
	Title    string
	Playlist bool
	Count    int
}

// Progress is a point-in-time download progress sample.
type Progress struct {
	Title      string
	Index      int
	Total      int
	Downloaded int64
	Size       int64
	Percent    float64
	ETA        time.Duration
}

func (o Options) emit(p Progress) {
	if o.Progress != nil {
		o.Progress(p)
	}
}

func percentOf(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(done) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return p
}
