package download

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestSnapshotChangedSince(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.mp4")
	touched := filepath.Join(dir, "touched.mp4")
	for _, p := range []string{keep, touched} {
		if err := os.WriteFile(p, []byte("v1"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	before, err := takeSnapshot(dir)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if err := os.WriteFile(touched, []byte("version two"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "Playlist")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	added := filepath.Join(sub, "new.webm")
	if err := os.WriteFile(added, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, scratch := range []string{"a.mp4.part", "a.mp4.ytdl", "a.f137.mp4.part-Frag3", ".ytgrab-write-test"} {
		if err := os.WriteFile(filepath.Join(dir, scratch), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	after, err := takeSnapshot(dir)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	got := after.changedSince(before)
	want := []string{added, touched}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("changed = %v, want %v", got, want)
	}
}

func TestSnapshotDetectsSameSizeRewrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(p, []byte("aaaa"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(p, old, old); err != nil {
		t.Fatal(err)
	}
	before, _ := takeSnapshot(dir)
	if err := os.WriteFile(p, []byte("bbbb"), 0644); err != nil {
		t.Fatal(err)
	}
	after, _ := takeSnapshot(dir)
	if got := after.changedSince(before); len(got) != 1 {
		t.Fatalf("expected rewrite to be detected, got %v", got)
	}
}

func TestSnapshotMissingRoot(t *testing.T) {
	if _, err := takeSnapshot(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
