package fetch

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// BackendConfig carries the settings a backend constructor may need.
type BackendConfig struct {
	// YtdlpPath overrides the yt-dlp executable used by the ytdlp backend.
	YtdlpPath string
	// AutoInstall lets the ytdlp backend download yt-dlp when it is missing.
	AutoInstall bool
	HTTPClient  *http.Client
}

type constructor func(BackendConfig) Fetcher

var backends = map[string]constructor{
	"ytdlp":  func(c BackendConfig) Fetcher { return NewYtdlp(c) },
	"native": func(c BackendConfig) Fetcher { return NewNative(c) },
	"kkdai":  func(c BackendConfig) Fetcher { return NewKkdai(c) },
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the backend registered under name.
func New(name string, cfg BackendConfig) (Fetcher, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	ctor, ok := backends[key]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (valid: %s)", name, strings.Join(Backends(), ", "))
	}
	return ctor(cfg), nil
}
