package ui

import (
	"fmt"
	"strings"

	"github.com/jmagar/ytgrab/internal/fetch"
)

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorGreen, SymbolCheck, ColorReset, msg, ColorReset)
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorRed, SymbolCross, ColorReset, msg, ColorReset)
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorBlue, SymbolInfo, ColorReset, msg, ColorReset)
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorYellow, SymbolWarning, ColorReset, msg, ColorReset)
}

// PrintDownload prints a download message.
func PrintDownload(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorCyan, SymbolDownload, ColorReset, msg, ColorReset)
}

// DescribeInfo renders probed metadata as the one-line announcement shown
// before a download starts.
func DescribeInfo(info *fetch.Info) string {
	if info == nil {
		return ""
	}
	if info.Playlist {
		title := strings.TrimSpace(info.Title)
		if title == "" {
			title = "untitled playlist"
		}
		return fmt.Sprintf("%s Downloading playlist: %s (%d videos)", SymbolPlaylist, title, info.Count)
	}
	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = "unknown video"
	}
	return fmt.Sprintf("%s Downloading video: %s", SymbolVideo, title)
}
