package ui

import (
	"os"
	"strings"
)

// ANSI color codes, rewritten by ApplyTheme.
var (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[91m"
	ColorGreen  = "\033[92m"
	ColorYellow = "\033[93m"
	ColorBlue   = "\033[94m"
	ColorPurple = "\033[95m"
	ColorCyan   = "\033[96m"
	ColorBold   = "\033[1m"
	ActiveTheme = DefaultTheme
)

// Status symbols.
var (
	SymbolCheck    = "✓"
	SymbolCross    = "✗"
	SymbolDownload = "⬇"
	SymbolInfo     = "ℹ"
	SymbolWarning  = "⚠"
	SymbolVideo    = "🎬"
	SymbolPlaylist = "📜"
)

const (
	DefaultTheme = "nordonedark"
	PlainTheme   = "plain"
)

type colorDepth int

const (
	depthBasic colorDepth = iota
	depth256
	depthTrue
)

// palette holds the six accent colors of one theme at one color depth.
type palette struct {
	red, green, yellow, blue, purple, cyan string
}

var basicPalette = palette{
	red:    "\033[91m",
	green:  "\033[92m",
	yellow: "\033[93m",
	blue:   "\033[94m",
	purple: "\033[95m",
	cyan:   "\033[96m",
}

var themes = map[string]map[colorDepth]palette{
	"nordonedark": {
		depthTrue: {
			red:    "\033[1;38;2;224;108;117m",
			green:  "\033[1;38;2;152;195;121m",
			yellow: "\033[1;38;2;229;192;123m",
			blue:   "\033[1;38;2;143;188;255m",
			purple: "\033[1;38;2;180;142;255m",
			cyan:   "\033[1;38;2;136;220;255m",
		},
		depth256: {
			red:    "\033[1;38;5;210m",
			green:  "\033[1;38;5;114m",
			yellow: "\033[1;38;5;222m",
			blue:   "\033[1;38;5;111m",
			purple: "\033[1;38;5;183m",
			cyan:   "\033[1;38;5;159m",
		},
		depthBasic: basicPalette,
	},
	"vivid": {
		depthTrue: {
			red:    "\033[1;38;2;255;76;102m",
			green:  "\033[1;38;2;80;250;123m",
			yellow: "\033[1;38;2;255;221;87m",
			blue:   "\033[1;38;2;110;196;255m",
			purple: "\033[1;38;2;215;130;255m",
			cyan:   "\033[1;38;2;0;245;255m",
		},
		depth256: {
			red:    "\033[1;38;5;203m",
			green:  "\033[1;38;5;84m",
			yellow: "\033[1;38;5;227m",
			blue:   "\033[1;38;5;81m",
			purple: "\033[1;38;5;177m",
			cyan:   "\033[1;38;5;51m",
		},
		depthBasic: {
			red:    "\033[1;91m",
			green:  "\033[1;92m",
			yellow: "\033[1;93m",
			blue:   "\033[1;94m",
			purple: "\033[1;95m",
			cyan:   "\033[1;96m",
		},
	},
}

func init() {
	InitColorPalette()
}

// InitColorPalette applies the theme named by YTGRAB_THEME. NO_COLOR wins
// over any theme.
func InitColorPalette() {
	name := strings.ToLower(strings.TrimSpace(os.Getenv("YTGRAB_THEME")))
	if os.Getenv("NO_COLOR") != "" {
		name = PlainTheme
	}
	ApplyTheme(name)
}

// ApplyTheme switches the color variables to the named theme. Unknown names
// fall back to DefaultTheme.
func ApplyTheme(name string) {
	if name == PlainTheme {
		ActiveTheme = PlainTheme
		ColorReset, ColorBold = "", ""
		setPalette(palette{})
		return
	}
	variants, ok := themes[name]
	if !ok {
		name = DefaultTheme
		variants = themes[name]
	}
	ActiveTheme = name
	ColorReset, ColorBold = "\033[0m", "\033[1m"
	setPalette(variants[detectColorDepth()])
}

func setPalette(p palette) {
	ColorRed, ColorGreen, ColorYellow = p.red, p.green, p.yellow
	ColorBlue, ColorPurple, ColorCyan = p.blue, p.purple, p.cyan
}

func detectColorDepth() colorDepth {
	switch {
	case SupportsTruecolor():
		return depthTrue
	case Supports256Color():
		return depth256
	}
	return depthBasic
}

// SupportsTruecolor checks if the terminal supports 24-bit color.
func SupportsTruecolor() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
	return strings.Contains(colorTerm, "truecolor") ||
		strings.Contains(colorTerm, "24bit") ||
		strings.Contains(term, "truecolor") ||
		strings.Contains(term, "24bit")
}

// Supports256Color checks if the terminal supports 256 colors.
func Supports256Color() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "256color")
}
