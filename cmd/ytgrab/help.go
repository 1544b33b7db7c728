package main

import (
	"fmt"
	"strings"

	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/ui"
)

func init() {
	model.ArgsDescriptionFunc = argsDescription
}

func argsDescription() string {
	var b strings.Builder

	heading := func(title string) {
		fmt.Fprintf(&b, "\n%s%s %s%s\n", ui.ColorBold, ui.BulletDiamond, title, ui.ColorReset)
		fmt.Fprintf(&b, "%s%s%s\n", ui.ColorCyan, strings.Repeat(ui.BoxHorizontal, 60), ui.ColorReset)
	}
	example := func(syntax, desc string) {
		fmt.Fprintf(&b, "  %s%s%s %s%s%s %s\n", ui.ColorYellow, ui.BulletArrow, ui.ColorReset, ui.ColorCyan, syntax, ui.ColorReset, desc)
	}

	fmt.Fprintf(&b, "%s%s Download YouTube videos and playlists%s\n", ui.ColorBold, ui.SymbolDownload, ui.ColorReset)

	heading("EXAMPLES")
	example("ytgrab", "                                  Prompt for a URL")
	example("ytgrab https://youtu.be/dQw4w9WgXcQ", "     Download one video")
	example("ytgrab 'https://youtube.com/playlist?list=…'", "Download a whole playlist")
	example("ytgrab --info <url>", "                     Show title and entry count only")
	example("ytgrab -b native -o ~/Videos <url>", "      Pure-Go backend, custom folder")

	heading("BACKENDS")
	example("ytdlp", "  yt-dlp executable (default, widest site support)")
	example("native", " built-in YouTube client, no external tools")
	example("kkdai", "  built-in YouTube client, progressive formats only")

	heading("CONFIG")
	fmt.Fprintf(&b, "  ./config.{json,yaml}, ~/.ytgrab/config.{json,yaml}, ~/.config/ytgrab/config.{json,yaml}\n")
	return b.String()
}
