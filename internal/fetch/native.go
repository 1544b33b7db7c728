package fetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	// The v2 resolver is built on the v1 downloader and errs packages.
	"github.com/ytget/ytdlp/downloader"
	"github.com/ytget/ytdlp/errs"
	ytget "github.com/ytget/ytdlp/v2"
)

const (
	nativeQuality = "best"
	nativeExt     = "mp4"

	// ytget treats a limit of 0 as one page.
	playlistLimit = math.MaxInt32

	// suffix the chunked downloader appends while writing
	chunkTempSuffix = ".tmp"
)

// Native fetches in-process with ytget/ytdlp, with no external executable.
type Native struct {
	ex extractor
}

// NewNative returns the pure-Go ytget backend.
func NewNative(cfg BackendConfig) *Native {
	return &Native{ex: &ytgetExtractor{httpClient: cfg.HTTPClient}}
}

// Fetch downloads url, or every entry of the playlist it names.
func (n *Native) Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	return fetchWith(ctx, n.ex, url, opts)
}

// Probe resolves metadata without downloading.
func (n *Native) Probe(ctx context.Context, url string) (*Info, error) {
	return probeWith(ctx, n.ex, url)
}

type ytgetExtractor struct {
	httpClient *http.Client
}

func (y *ytgetExtractor) name() string { return "native" }

func (y *ytgetExtractor) resolver() *ytget.Downloader {
	d := ytget.New().WithFormat(nativeQuality, nativeExt)
	if y.httpClient != nil {
		d = d.WithHTTPClient(y.httpClient)
	}
	return d
}

func (y *ytgetExtractor) playlist(ctx context.Context, id string) (string, []media, error) {
	items, err := y.resolver().GetPlaylistItemsAll(ctx, id, playlistLimit)
	if err != nil {
		return "", nil, mapYtgetErr(err)
	}
	entries := make([]media, 0, len(items))
	for _, it := range items {
		entries = append(entries, media{ID: it.VideoID, Title: it.Title})
	}
	// ytget exposes no playlist title.
	return "", entries, nil
}

func (y *ytgetExtractor) video(ctx context.Context, url string) (media, error) {
	if _, ok := VideoID(url); !ok {
		return media{}, fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
	}
	streamURL, info, err := y.resolver().ResolveURL(ctx, url)
	if err != nil {
		return media{}, mapYtgetErr(err)
	}
	if len(info.Formats) == 0 {
		return media{}, ErrNoFormat
	}
	return media{ID: info.ID, Title: info.Title, Ext: chosenExt(streamURL, info), ref: streamURL}, nil
}

// chosenExt names the extension of the format ytget picked, matched by the
// itag carried in the resolved stream URL.
func chosenExt(streamURL string, info *ytget.VideoInfo) string {
	u, err := url.Parse(streamURL)
	if err != nil {
		return nativeExt
	}
	itag, err := strconv.Atoi(u.Query().Get("itag"))
	if err != nil {
		return nativeExt
	}
	for _, f := range info.Formats {
		if f.Itag == itag {
			return extFromMime(f.MimeType)
		}
	}
	return nativeExt
}

func (y *ytgetExtractor) save(ctx context.Context, m media, path string, progress func(done, total int64)) error {
	streamURL, _ := m.ref.(string)
	if streamURL == "" {
		return ErrNoFormat
	}
	dl := downloader.New(y.httpClient, func(p downloader.Progress) {
		progress(p.DownloadedSize, p.TotalSize)
	}, 0)
	if err := dl.Download(ctx, streamURL, path); err != nil {
		_ = os.Remove(path + chunkTempSuffix)
		return fmt.Errorf("download %s: %w", m.ID, err)
	}
	return nil
}

func mapYtgetErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, errs.ErrPrivate),
		errors.Is(err, errs.ErrAgeRestricted),
		errors.Is(err, errs.ErrGeoBlocked),
		errors.Is(err, errs.ErrVideoUnavailable):
		return withCause(ErrUnavailable, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no suitable format"):
		return withCause(ErrNoFormat, err)
	case strings.Contains(msg, "invalid youtube url"):
		return withCause(ErrUnsupportedURL, err)
	}
	return err
}
