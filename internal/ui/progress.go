package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmagar/ytgrab/internal/fetch"
)

// ProgressLine turns fetch.Progress samples into a single redrawn terminal
// line. Speed is derived from consecutive samples. Safe for concurrent use.
type ProgressLine struct {
	mu        sync.Mutex
	now       func() time.Time
	lastTitle string
	lastBytes int64
	lastTime  time.Time
	speed     float64
	active    bool
}

// NewProgressLine returns a ProgressLine using the wall clock.
func NewProgressLine() *ProgressLine {
	return &ProgressLine{now: time.Now}
}

// Update redraws the line for p.
func (pl *ProgressLine) Update(p fetch.Progress) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	now := pl.now()
	if p.Title != pl.lastTitle || p.Downloaded < pl.lastBytes {
		if pl.active && pl.lastTitle != "" && p.Title != pl.lastTitle {
			fmt.Println()
		}
		pl.lastTitle = p.Title
		pl.lastBytes = 0
		pl.lastTime = now
		pl.speed = 0
	}
	if elapsed := now.Sub(pl.lastTime).Seconds(); elapsed > 0 {
		pl.speed = float64(p.Downloaded-pl.lastBytes) / elapsed
		pl.lastBytes = p.Downloaded
		pl.lastTime = now
	}
	pl.active = true

	RenderProgress(progressLabel(p), int(p.Percent),
		humanize.Bytes(uint64(max(pl.speed, 0))),
		humanize.Bytes(uint64(max(p.Downloaded, 0))),
		sizeLabel(p.Size),
		etaLabel(p.ETA))
}

// Done ends the current line, if one was drawn.
func (pl *ProgressLine) Done() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.active {
		fmt.Println()
		pl.active = false
	}
}

func progressLabel(p fetch.Progress) string {
	title := p.Title
	if title == "" {
		title = "Downloading"
	}
	title = TruncateWithEllipsis(title, 32)
	if p.Total > 1 {
		return fmt.Sprintf("%s[%d/%d]%s %s", ColorBold, p.Index, p.Total, ColorReset, title)
	}
	return title
}

func sizeLabel(size int64) string {
	if size <= 0 {
		return "?"
	}
	return humanize.Bytes(uint64(size))
}

func etaLabel(eta time.Duration) string {
	if eta <= 0 {
		return ""
	}
	return eta.Round(time.Second).String()
}
