package download

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jmagar/ytgrab/internal/helpers"
)

type fileState struct {
	size    int64
	modTime time.Time
}

// snapshot maps absolute file paths under a root to their size and mtime.
type snapshot map[string]fileState

func takeSnapshot(root string) (snapshot, error) {
	snap := snapshot{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtrees are not ours to report.
			return nil
		}
		if !d.Type().IsRegular() || isScratchFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		snap[path] = fileState{size: info.Size(), modTime: info.ModTime()}
		return nil
	})
	return snap, err
}

// changedSince lists files that are new in s or differ from before, sorted.
func (s snapshot) changedSince(before snapshot) []string {
	var changed []string
	for path, now := range s {
		prev, ok := before[path]
		if ok && prev.size == now.size && prev.modTime.Equal(now.modTime) {
			continue
		}
		changed = append(changed, path)
	}
	slices.Sort(changed)
	return changed
}

// isScratchFile matches the write probe and in-progress download files.
func isScratchFile(name string) bool {
	if name == helpers.ProbeFileName {
		return true
	}
	return strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".ytdl") ||
		strings.Contains(name, ".part-Frag")
}
