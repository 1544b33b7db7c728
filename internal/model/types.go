package model

// Config holds the user's configuration. Every field is optional; zero values
// are replaced with defaults by config.ParseCfg.
type Config struct {
	OutPath          string `json:"outPath" yaml:"outPath"`
	Backend          string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Format           string `json:"format,omitempty" yaml:"format,omitempty"`
	FilenameTemplate string `json:"filenameTemplate,omitempty" yaml:"filenameTemplate,omitempty"`
	YtdlpPath        string `json:"ytdlpPath,omitempty" yaml:"ytdlpPath,omitempty"`
	AutoInstall      bool   `json:"autoInstall,omitempty" yaml:"autoInstall,omitempty"`
	IgnoreErrors     bool   `json:"ignoreErrors,omitempty" yaml:"ignoreErrors,omitempty"`
	LogPath          string `json:"logPath,omitempty" yaml:"logPath,omitempty"`
	GotifyURL        string `json:"gotifyUrl,omitempty" yaml:"gotifyUrl,omitempty"`
	GotifyToken      string `json:"gotifyToken,omitempty" yaml:"gotifyToken,omitempty"`

	// Resolved at runtime, never persisted.
	URL      string `json:"-" yaml:"-"`
	InfoOnly bool   `json:"-" yaml:"-"`
	Quiet    bool   `json:"-" yaml:"-"`
	Debug    bool   `json:"-" yaml:"-"`
}

// ArgsDescriptionFunc is set by package main to provide colored help text.
// If nil, Description() returns an empty string.
var ArgsDescriptionFunc func() string

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// Args holds CLI arguments parsed by go-arg.
type Args struct {
	URL          string `arg:"positional" help:"Video or playlist URL. Prompted for when omitted."`
	OutPath      string `arg:"-o,--out" help:"Where to download to. Path will be made if it doesn't already exist."`
	Backend      string `arg:"-b,--backend" help:"Media fetch backend: ytdlp, native or kkdai."`
	ConfigPath   string `arg:"--config" help:"Path to a config.json or config.yaml file."`
	Format       string `arg:"--format" help:"Format selector passed to the backend."`
	Template     string `arg:"--template" help:"Filename template, e.g. %(title)s.%(ext)s"`
	IgnoreErrors bool   `arg:"--ignore-errors" help:"Keep going when a playlist item fails."`
	Info         bool   `arg:"--info" help:"Print metadata only, download nothing."`
	Quiet        bool   `arg:"-q,--quiet" help:"Suppress progress output."`
	Debug        bool   `arg:"--debug" help:"Log activity events to stderr."`
}

// Description provides custom help text for go-arg.
func (Args) Description() string {
	if ArgsDescriptionFunc != nil {
		return ArgsDescriptionFunc()
	}
	return ""
}

// Version is reported by --version.
func (Args) Version() string {
	return "ytgrab " + Version
}
