package model

// Defaults applied when neither the config file nor a flag sets a value.
const (
	DefaultBackend          = "ytdlp"
	DefaultFilenameTemplate = "%(title)s.%(ext)s"
	// DefaultFormat prefers a progressive mp4 that already carries audio and
	// video so no ffmpeg merge step is needed.
	DefaultFormat   = "best[ext=mp4][acodec!=none][vcodec!=none]/best"
	DefaultOutDir   = "Downloads/ytgrab"
	DefaultAppDir   = ".ytgrab"
	DefaultLogFile  = "activity.log"
	ConfigFileJSON  = "config.json"
	ConfigFileYAML  = "config.yaml"
	ConfigFileYML   = "config.yml"
	GotifyPriority  = 5
	GotifyFailLevel = 8
)
