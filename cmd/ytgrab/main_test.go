package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmagar/ytgrab/internal/fetch"
	"github.com/jmagar/ytgrab/internal/testutil"
)

type stubFetcher struct {
	calls int
	url   string
	err   error
	info  *fetch.Info
}

func (s *stubFetcher) Fetch(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
	s.calls++
	s.url = url
	if s.err != nil {
		return nil, s.err
	}
	path := filepath.Join(opts.OutputDir, "Video Title.mp4")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		return nil, err
	}
	return &fetch.Result{Title: "Video Title", Items: []fetch.Item{{Title: "Video Title", Path: path}}}, nil
}

func (s *stubFetcher) Probe(ctx context.Context, url string) (*fetch.Info, error) {
	if s.info == nil {
		return nil, errors.New("no info")
	}
	return s.info, nil
}

func testDeps(f fetch.Fetcher, stdin string) deps {
	return deps{
		newFetcher: func(string, fetch.BackendConfig) (fetch.Fetcher, error) { return f, nil },
		stdin:      strings.NewReader(stdin),
	}
}

func setup(t *testing.T) string {
	t.Helper()
	testutil.WithTempHome(t)
	testutil.ChdirTemp(t)
	return filepath.Join(t.TempDir(), "out")
}

func TestRunWithURLArgument(t *testing.T) {
	out := setup(t)
	f := &stubFetcher{}
	var code int

	stdout := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"-o", out, "https://youtu.be/dQw4w9WgXcQ"}, testDeps(f, ""))
	})
	if code != exitOK {
		t.Fatalf("exit code = %d, output:\n%s", code, stdout)
	}
	if f.calls != 1 || f.url != "https://youtu.be/dQw4w9WgXcQ" {
		t.Fatalf("fetch calls = %d url = %q", f.calls, f.url)
	}
	if _, err := os.Stat(filepath.Join(out, "Video Title.mp4")); err != nil {
		t.Fatalf("expected downloaded file: %v", err)
	}
	if !strings.Contains(stdout, "Download complete! Saved as:") {
		t.Fatalf("missing success message:\n%s", stdout)
	}
}

func TestRunPromptsForURL(t *testing.T) {
	out := setup(t)
	f := &stubFetcher{}
	var code int

	testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"-o", out, "-q"}, testDeps(f, "  https://youtu.be/abc  \n"))
	})
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if f.url != "https://youtu.be/abc" {
		t.Fatalf("url = %q", f.url)
	}
}

func TestRunEmptyPromptFails(t *testing.T) {
	out := setup(t)
	f := &stubFetcher{}
	var code int

	stdout := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"-o", out}, testDeps(f, "\n"))
	})
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	if f.calls != 0 {
		t.Fatalf("fetcher called %d times", f.calls)
	}
	if !strings.Contains(stdout, "Download failed") {
		t.Fatalf("expected failure message:\n%s", stdout)
	}
}

func TestRunFetchFailure(t *testing.T) {
	out := setup(t)
	f := &stubFetcher{err: fetch.Wrap("stub", "u", fetch.ErrUnavailable)}
	var code int

	stdout := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"-o", out, "https://youtu.be/private"}, testDeps(f, ""))
	})
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(stdout, "Check the URL or your internet connection") {
		t.Fatalf("expected hint:\n%s", stdout)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("expected no files, found %d", len(entries))
	}
}

func TestRunUnusableDestination(t *testing.T) {
	setup(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	f := &stubFetcher{}
	var code int

	stdout := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"-o", blocker, "https://youtu.be/x"}, testDeps(f, ""))
	})
	if code != exitFailure || f.calls != 0 {
		t.Fatalf("exit code = %d, calls = %d", code, f.calls)
	}
	if !strings.Contains(stdout, "Cannot use download folder") {
		t.Fatalf("expected destination error:\n%s", stdout)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	setup(t)
	var code int
	testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"--backend", "youtube-dl", "https://youtu.be/x"}, testDeps(&stubFetcher{}, ""))
	})
	if code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
}

func TestRunVersion(t *testing.T) {
	setup(t)
	var code int
	stdout := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"--version"}, testDeps(&stubFetcher{}, ""))
	})
	if code != exitOK || !strings.Contains(stdout, "ytgrab") {
		t.Fatalf("exit code = %d, output %q", code, stdout)
	}
}

func TestRunInfoOnly(t *testing.T) {
	out := setup(t)
	f := &stubFetcher{info: &fetch.Info{ID: "PLabc", Title: "Road Trip", Playlist: true, Count: 7}}
	var code int

	stdout := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"-o", out, "--info", "https://www.youtube.com/playlist?list=PLabc"}, testDeps(f, ""))
	})
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if f.calls != 0 {
		t.Fatal("--info must not download")
	}
	for _, want := range []string{"Road Trip", "playlist", "7"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("info output missing %q:\n%s", want, stdout)
		}
	}
}

func TestArgsDescriptionMentionsBackends(t *testing.T) {
	desc := argsDescription()
	for _, name := range fetch.Backends() {
		if !strings.Contains(desc, name) {
			t.Fatalf("help text missing backend %q", name)
		}
	}
}

func TestRunDebugShowsLoadedConfig(t *testing.T) {
	out := setup(t)
	if err := os.WriteFile("config.yml", []byte("outPath: "+out+"\nlogPath: off\n"), 0600); err != nil {
		t.Fatal(err)
	}
	f := &stubFetcher{}
	var code int

	stdout := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), []string{"--debug", "https://youtu.be/dQw4w9WgXcQ"}, testDeps(f, ""))
	})
	if code != exitOK {
		t.Fatalf("exit code = %d, output:\n%s", code, stdout)
	}
	if !strings.Contains(stdout, "Config: config.yml") {
		t.Fatalf("loaded config path not shown:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "Video Title.mp4")); err != nil {
		t.Fatalf("config.yml outPath not used: %v", err)
	}
}
