package fetch

import (
	"net/url"
	"strings"
)

const watchURLTemplate = "https://www.youtube.com/watch?v="

var playlistIDPrefixes = []string{"PL", "UU", "OL", "RD", "FL", "LL"}

// PlaylistID returns the playlist id carried by rawURL, if any. A watch URL
// with a list parameter counts as a playlist, as it does for yt-dlp.
func PlaylistID(rawURL string) (string, bool) {
	s := strings.TrimSpace(rawURL)
	for _, p := range playlistIDPrefixes {
		if strings.HasPrefix(s, p) && !strings.Contains(s, "/") && len(s) > 12 {
			return s, true
		}
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	if id := u.Query().Get("list"); id != "" {
		return id, true
	}
	return "", false
}

// VideoID extracts the video id from the common YouTube URL shapes.
func VideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	case "youtube.com", "music.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v, true
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				return id, id != ""
			}
		}
	}
	return "", false
}

// WatchURL builds the canonical watch URL for a video id.
func WatchURL(id string) string {
	return watchURLTemplate + id
}
