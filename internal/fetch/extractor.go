package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmagar/ytgrab/internal/helpers"
)

const partSuffix = ".part"

// media is one resolved video as seen by an in-process extractor. ref holds
// whatever the library needs to start the stream.
type media struct {
	ID    string
	Title string
	Ext   string
	ref   any
}

// extractor is the seam between the shared playlist/video loop and one
// pure-Go extraction library.
type extractor interface {
	name() string
	playlist(ctx context.Context, id string) (title string, entries []media, err error)
	video(ctx context.Context, url string) (media, error)
	save(ctx context.Context, m media, path string, progress func(done, total int64)) error
}

func fetchWith(ctx context.Context, ex extractor, rawURL string, opts Options) (*Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, Wrap(ex.name(), rawURL, ErrEmptyURL)
	}
	id, isList := PlaylistID(rawURL)
	if !isList {
		item, err := fetchEntry(ctx, ex, rawURL, 1, 1, opts)
		if err != nil {
			return nil, Wrap(ex.name(), rawURL, err)
		}
		return &Result{Title: item.Title, Items: []Item{item}}, nil
	}

	title, entries, err := ex.playlist(ctx, id)
	if err != nil {
		return nil, Wrap(ex.name(), rawURL, err)
	}
	res := &Result{Title: title, Playlist: true}
	for i, e := range entries {
		if ctx.Err() != nil {
			return res, Wrap(ex.name(), rawURL, ctx.Err())
		}
		item, err := fetchEntry(ctx, ex, WatchURL(e.ID), i+1, len(entries), opts)
		if err == nil {
			res.Items = append(res.Items, item)
			continue
		}
		if ctx.Err() != nil {
			return res, Wrap(ex.name(), rawURL, ctx.Err())
		}
		err = fmt.Errorf("item %d/%d %q: %w", i+1, len(entries), e.Title, err)
		if !opts.IgnoreErrors {
			return res, Wrap(ex.name(), rawURL, err)
		}
		res.Failed = append(res.Failed, Failure{Title: e.Title, Err: err})
	}
	if len(res.Items) == 0 && len(res.Failed) > 0 {
		return res, Wrap(ex.name(), rawURL, fmt.Errorf("all %d playlist items failed: %w", len(res.Failed), res.Failed[0].Err))
	}
	return res, nil
}

func fetchEntry(ctx context.Context, ex extractor, url string, index, total int, opts Options) (Item, error) {
	m, err := ex.video(ctx, url)
	if err != nil {
		return Item{}, err
	}
	tmpl := opts.FilenameTemplate
	if tmpl == "" {
		tmpl = "%(title)s.%(ext)s"
	}
	ext := m.Ext
	if ext == "" {
		ext = "mp4"
	}
	path, err := OutputPath(opts.OutputDir, tmpl, map[string]string{"title": m.Title, "id": m.ID, "ext": ext})
	if err != nil {
		return Item{}, err
	}
	item := Item{ID: m.ID, Title: m.Title, Path: path}
	exists, err := helpers.FileExists(path)
	if err != nil {
		return Item{}, err
	}
	if exists {
		item.Skipped = true
		return item, nil
	}

	part := path + partSuffix
	progress := func(done, size int64) {
		opts.emit(Progress{
			Title:      m.Title,
			Index:      index,
			Total:      total,
			Downloaded: done,
			Size:       size,
			Percent:    percentOf(done, size),
		})
	}
	if err := ex.save(ctx, m, part, progress); err != nil {
		_ = os.Remove(part)
		return Item{}, err
	}
	if err := os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return Item{}, fmt.Errorf("finalise %s: %w", path, err)
	}
	return item, nil
}

func probeWith(ctx context.Context, ex extractor, rawURL string) (*Info, error) {
	if id, ok := PlaylistID(rawURL); ok {
		title, entries, err := ex.playlist(ctx, id)
		if err != nil {
			return nil, Wrap(ex.name(), rawURL, err)
		}
		return &Info{ID: id, Title: title, Playlist: true, Count: len(entries)}, nil
	}
	m, err := ex.video(ctx, rawURL)
	if err != nil {
		return nil, Wrap(ex.name(), rawURL, err)
	}
	return &Info{ID: m.ID, Title: m.Title, Count: 1}, nil
}

// writeCounter reports bytes as they pass through io.Copy.
type writeCounter struct {
	written int64
	total   int64
	onWrite func(done, total int64)
}

func (wc *writeCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.written += int64(n)
	if wc.onWrite != nil {
		wc.onWrite(wc.written, wc.total)
	}
	return n, nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress func(done, total int64)) (int64, error) {
	counter := &writeCounter{total: total, onWrite: progress}
	return io.Copy(dst, io.TeeReader(src, counter))
}

func extFromMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	_, sub, ok := strings.Cut(mime, "/")
	if !ok || sub == "" {
		return "mp4"
	}
	if sub == "3gpp" {
		return "3gp"
	}
	return sub
}
