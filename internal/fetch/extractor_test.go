package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeExtractor struct {
	listTitle string
	entries   []media
	listErr   error
	videos    map[string]media
	saveErr   map[string]error
	saved     []string
}

func (f *fakeExtractor) name() string { return "fake" }

func (f *fakeExtractor) playlist(ctx context.Context, id string) (string, []media, error) {
	return f.listTitle, f.entries, f.listErr
}

func (f *fakeExtractor) video(ctx context.Context, url string) (media, error) {
	id, ok := VideoID(url)
	if !ok {
		return media{}, ErrUnsupportedURL
	}
	m, ok := f.videos[id]
	if !ok {
		return media{}, ErrUnavailable
	}
	return m, nil
}

func (f *fakeExtractor) save(ctx context.Context, m media, path string, progress func(done, total int64)) error {
	if err := f.saveErr[m.ID]; err != nil {
		// leave a partial file behind the way an interrupted stream would
		_ = os.WriteFile(path, []byte("partial"), 0o644)
		return err
	}
	if !strings.HasSuffix(path, partSuffix) {
		return errors.New("save target must be a .part file")
	}
	f.saved = append(f.saved, m.ID)
	progress(5, 10)
	progress(10, 10)
	return os.WriteFile(path, []byte("0123456789"), 0o644)
}

const (
	videoA = "aaaaaaaaaaa"
	videoB = "bbbbbbbbbbb"
	videoC = "ccccccccccc"
	listID = "PLxxxxxxxxxxxxxxxx"
)

func threeVideos() *fakeExtractor {
	return &fakeExtractor{
		listTitle: "Mix",
		entries: []media{
			{ID: videoA, Title: "First"},
			{ID: videoB, Title: "Second"},
			{ID: videoC, Title: "Third"},
		},
		videos: map[string]media{
			videoA: {ID: videoA, Title: "First", Ext: "mp4"},
			videoB: {ID: videoB, Title: "Second", Ext: "webm"},
			videoC: {ID: videoC, Title: "Third/Part", Ext: "mp4"},
		},
		saveErr: map[string]error{},
	}
}

func listURL() string { return "https://www.youtube.com/playlist?list=" + listID }

func TestFetchWithSingleVideo(t *testing.T) {
	dir := t.TempDir()
	ex := threeVideos()
	var samples []Progress

	res, err := fetchWith(context.Background(), ex, WatchURL(videoA), Options{
		OutputDir: dir,
		Progress:  func(p Progress) { samples = append(samples, p) },
	})
	if err != nil {
		t.Fatalf("fetchWith: %v", err)
	}
	if res.Playlist || res.Title != "First" || len(res.Items) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := filepath.Join(dir, "First.mp4")
	if res.Items[0].Path != want {
		t.Fatalf("path = %q, want %q", res.Items[0].Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if _, err := os.Stat(want + partSuffix); !os.IsNotExist(err) {
		t.Fatalf("expected .part file to be renamed, stat err = %v", err)
	}
	if len(samples) != 2 || samples[1].Percent != 100 || samples[0].Index != 1 || samples[0].Total != 1 {
		t.Fatalf("unexpected progress samples: %+v", samples)
	}
}

func TestFetchWithPlaylist(t *testing.T) {
	dir := t.TempDir()
	ex := threeVideos()

	res, err := fetchWith(context.Background(), ex, listURL(), Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("fetchWith: %v", err)
	}
	if !res.Playlist || res.Title != "Mix" || len(res.Items) != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	for _, name := range []string{"First.mp4", "Second.webm", "Third_Part.mp4"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestFetchWithPlaylistStopsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	ex := threeVideos()
	ex.saveErr[videoB] = errors.New("connection reset")

	res, err := fetchWith(context.Background(), ex, listURL(), Options{OutputDir: dir})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != videoA {
		t.Fatalf("expected only the first item, got %+v", res.Items)
	}
	if len(ex.saved) != 1 {
		t.Fatalf("expected loop to stop after failure, saved %v", ex.saved)
	}
	if _, err := os.Stat(filepath.Join(dir, "Second.webm"+partSuffix)); !os.IsNotExist(err) {
		t.Fatalf("expected partial file to be removed, stat err = %v", err)
	}
}

func TestFetchWithPlaylistIgnoreErrors(t *testing.T) {
	dir := t.TempDir()
	ex := threeVideos()
	ex.saveErr[videoB] = errors.New("connection reset")

	res, err := fetchWith(context.Background(), ex, listURL(), Options{OutputDir: dir, IgnoreErrors: true})
	if err != nil {
		t.Fatalf("fetchWith: %v", err)
	}
	if len(res.Items) != 2 || len(res.Failed) != 1 {
		t.Fatalf("expected 2 items and 1 failure, got %+v", res)
	}
	if res.Failed[0].Title != "Second" {
		t.Fatalf("unexpected failure entry: %+v", res.Failed[0])
	}
}

func TestFetchWithPlaylistAllFailed(t *testing.T) {
	ex := threeVideos()
	for _, id := range []string{videoA, videoB, videoC} {
		ex.saveErr[id] = errors.New("boom")
	}

	res, err := fetchWith(context.Background(), ex, listURL(), Options{OutputDir: t.TempDir(), IgnoreErrors: true})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if len(res.Failed) != 3 || len(res.Items) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestFetchWithSkipsExistingFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "First.mp4")
	if err := os.WriteFile(existing, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	ex := threeVideos()

	res, err := fetchWith(context.Background(), ex, WatchURL(videoA), Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("fetchWith: %v", err)
	}
	if !res.Items[0].Skipped || len(ex.saved) != 0 {
		t.Fatalf("expected skip, got %+v saved=%v", res.Items[0], ex.saved)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "keep" {
		t.Fatalf("existing file was overwritten: %q", data)
	}
}

func TestFetchWithUnresolvableVideo(t *testing.T) {
	dir := t.TempDir()
	_, err := fetchWith(context.Background(), threeVideos(), WatchURL("zzzzzzzzzzz"), Options{OutputDir: dir})
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable fetch failure, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(entries))
	}
}

func TestFetchWithEmptyURL(t *testing.T) {
	_, err := fetchWith(context.Background(), threeVideos(), " ", Options{OutputDir: t.TempDir()})
	if !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("expected ErrEmptyURL, got %v", err)
	}
}

func TestFetchWithPlaylistError(t *testing.T) {
	ex := threeVideos()
	ex.listErr = errors.New("playlist gone")
	_, err := fetchWith(context.Background(), ex, listURL(), Options{OutputDir: t.TempDir()})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchWithCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	res, err := fetchWith(context.Background(), threeVideos(), WatchURL(videoA), Options{
		OutputDir:        dir,
		FilenameTemplate: "%(id)s-%(title)s.%(ext)s",
	})
	if err != nil {
		t.Fatalf("fetchWith: %v", err)
	}
	if got := filepath.Base(res.Items[0].Path); got != videoA+"-First.mp4" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestProbeWith(t *testing.T) {
	ex := threeVideos()

	info, err := probeWith(context.Background(), ex, listURL())
	if err != nil {
		t.Fatalf("probe playlist: %v", err)
	}
	if !info.Playlist || info.Count != 3 || info.Title != "Mix" || info.ID != listID {
		t.Fatalf("unexpected playlist info: %+v", info)
	}

	info, err = probeWith(context.Background(), ex, WatchURL(videoB))
	if err != nil {
		t.Fatalf("probe video: %v", err)
	}
	if info.Playlist || info.Count != 1 || info.Title != "Second" {
		t.Fatalf("unexpected video info: %+v", info)
	}
	if len(ex.saved) != 0 {
		t.Fatalf("probe must not download, saved %v", ex.saved)
	}
}

func TestCopyWithProgress(t *testing.T) {
	var sb strings.Builder
	var last int64
	n, err := copyWithProgress(&sb, strings.NewReader("hello world"), 11, func(done, total int64) {
		last = done
	})
	if err != nil || n != 11 || sb.String() != "hello world" || last != 11 {
		t.Fatalf("copyWithProgress = %d, %v, %q, last=%d", n, err, sb.String(), last)
	}
}

func TestExtFromMime(t *testing.T) {
	tests := map[string]string{
		`video/mp4; codecs="avc1.42001E, mp4a.40.2"`: "mp4",
		"video/webm":  "webm",
		"video/3gpp":  "3gp",
		"":            "mp4",
		"application": "mp4",
	}
	for in, want := range tests {
		if got := extFromMime(in); got != want {
			t.Errorf("extFromMime(%q) = %q, want %q", in, got, want)
		}
	}
}

// cancellingExtractor cancels the run partway through saving cancelAt.
type cancellingExtractor struct {
	*fakeExtractor
	cancelAt string
	cancel   context.CancelFunc
}

func (c *cancellingExtractor) save(ctx context.Context, m media, path string, progress func(done, total int64)) error {
	if m.ID != c.cancelAt {
		return c.fakeExtractor.save(ctx, m, path, progress)
	}
	_ = os.WriteFile(path, []byte("half"), 0o644)
	c.cancel()
	return ctx.Err()
}

func TestFetchWithPlaylistCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := threeVideos()
	ex := &cancellingExtractor{fakeExtractor: fake, cancelAt: videoB, cancel: cancel}
	dir := t.TempDir()

	res, err := fetchWith(ctx, ex, listURL(), Options{OutputDir: dir, IgnoreErrors: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != videoA {
		t.Fatalf("items = %+v, want only the first", res.Items)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("cancellation recorded as item failure: %+v", res.Failed)
	}
	if len(fake.saved) != 1 {
		t.Fatalf("saved = %v, loop kept going after cancel", fake.saved)
	}
	if _, err := os.Stat(filepath.Join(dir, "Second.webm"+partSuffix)); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "First.mp4" {
		t.Fatalf("unexpected files after cancel: %v", entries)
	}
}

func TestFetchWithCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := threeVideos()

	_, err := fetchWith(ctx, fake, listURL(), Options{OutputDir: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(fake.saved) != 0 {
		t.Fatalf("saved = %v, want nothing", fake.saved)
	}
}
