package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// Kkdai fetches in-process with kkdai/youtube. It only picks progressive
// formats (audio and video in one stream) so nothing needs merging.
type Kkdai struct {
	ex extractor
}

// NewKkdai returns the kkdai/youtube backend.
func NewKkdai(cfg BackendConfig) *Kkdai {
	client := &youtube.Client{}
	if cfg.HTTPClient != nil {
		client.HTTPClient = cfg.HTTPClient
	}
	return &Kkdai{ex: &kkdaiExtractor{client: client}}
}

// Fetch downloads url, or every entry of the playlist it names.
func (k *Kkdai) Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	return fetchWith(ctx, k.ex, url, opts)
}

// Probe resolves metadata without downloading.
func (k *Kkdai) Probe(ctx context.Context, url string) (*Info, error) {
	return probeWith(ctx, k.ex, url)
}

type kkdaiExtractor struct {
	client *youtube.Client
}

type kkdaiRef struct {
	video  *youtube.Video
	format *youtube.Format
}

func (k *kkdaiExtractor) name() string { return "kkdai" }

func (k *kkdaiExtractor) playlist(ctx context.Context, id string) (string, []media, error) {
	pl, err := k.client.GetPlaylistContext(ctx, id)
	if err != nil {
		return "", nil, mapKkdaiErr(err)
	}
	entries := make([]media, 0, len(pl.Videos))
	for _, v := range pl.Videos {
		if v == nil {
			continue
		}
		entries = append(entries, media{ID: v.ID, Title: v.Title})
	}
	return pl.Title, entries, nil
}

func (k *kkdaiExtractor) video(ctx context.Context, url string) (media, error) {
	v, err := k.client.GetVideoContext(ctx, url)
	if err != nil {
		return media{}, mapKkdaiErr(err)
	}
	f, err := pickProgressiveFormat(v.Formats)
	if err != nil {
		return media{}, err
	}
	return media{
		ID:    v.ID,
		Title: v.Title,
		Ext:   extFromMime(f.MimeType),
		ref:   kkdaiRef{video: v, format: f},
	}, nil
}

func (k *kkdaiExtractor) save(ctx context.Context, m media, path string, progress func(done, total int64)) error {
	ref, ok := m.ref.(kkdaiRef)
	if !ok {
		return fmt.Errorf("kkdai: media %s was not resolved", m.ID)
	}
	stream, size, err := k.client.GetStreamContext(ctx, ref.video, ref.format)
	if err != nil {
		return mapKkdaiErr(err)
	}
	defer stream.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := copyWithProgress(f, stream, size, progress); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// pickProgressiveFormat prefers mp4, then height, then bitrate.
func pickProgressiveFormat(list youtube.FormatList) (*youtube.Format, error) {
	var best *youtube.Format
	for _, f := range list.WithAudioChannels() {
		if !strings.HasPrefix(strings.ToLower(f.MimeType), "video/") {
			continue
		}
		if best == nil || betterProgressive(f, *best) {
			chosen := f
			best = &chosen
		}
	}
	if best == nil {
		return nil, ErrNoFormat
	}
	return best, nil
}

func betterProgressive(candidate, current youtube.Format) bool {
	candMP4 := strings.Contains(candidate.MimeType, "mp4")
	curMP4 := strings.Contains(current.MimeType, "mp4")
	if candMP4 != curMP4 {
		return candMP4
	}
	if candidate.Height != current.Height {
		return candidate.Height > current.Height
	}
	return candidate.Bitrate > current.Bitrate
}

func mapKkdaiErr(err error) error {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return withCause(ErrUnavailable, err)
	case errors.Is(err, youtube.ErrInvalidPlaylist),
		errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return withCause(ErrUnsupportedURL, err)
	}
	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return withCause(ErrUnavailable, err)
	}
	return err
}
