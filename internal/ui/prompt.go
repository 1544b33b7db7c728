package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// URLPrompt is shown when no URL was given on the command line.
const URLPrompt = "Enter the YouTube video or playlist URL to download: "

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReadURL reads a single line from r. The prompt is printed only when
// interactive, so piped input stays quiet. The line is trimmed; EOF before
// any input yields an empty string and no error.
func ReadURL(r io.Reader, interactive bool) (string, error) {
	if interactive {
		fmt.Printf("%s%s%s %s", ColorCyan, BulletArrow, ColorReset, URLPrompt)
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read URL: %w", err)
	}
	return strings.TrimSpace(line), nil
}
