package fetch

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	maxNameLength = 120
	fallbackTitle = "video"
)

var (
	templateField = regexp.MustCompile(`%%|%\(([a-z_]+)\)s`)
	unsafeChars   = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)
)

// RenderTemplate expands a yt-dlp style output template using the supported
// fields: %(title)s, %(id)s and %(ext)s. Field values are sanitised so a
// title can never introduce a path separator.
func RenderTemplate(tmpl string, fields map[string]string) (string, error) {
	var unknown []string
	out := templateField.ReplaceAllStringFunc(tmpl, func(m string) string {
		if m == "%%" {
			return "%"
		}
		name := templateField.FindStringSubmatch(m)[1]
		val, ok := fields[name]
		if !ok {
			unknown = append(unknown, name)
			return m
		}
		if name == "title" {
			return SafeName(val)
		}
		return unsafeChars.ReplaceAllString(val, "_")
	})
	if len(unknown) > 0 {
		return "", fmt.Errorf("unsupported template field(s): %s", strings.Join(unknown, ", "))
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("template %q renders to an empty name", tmpl)
	}
	return out, nil
}

// SafeName makes a title usable as a single path element.
func SafeName(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = fallbackTitle
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	runes := []rune(name)
	if len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	name = strings.Trim(name, " .")
	if name == "" {
		return fallbackTitle
	}
	return name
}

// OutputPath renders tmpl and joins it under dir, refusing any result that
// would land outside dir.
func OutputPath(dir, tmpl string, fields map[string]string) (string, error) {
	name, err := RenderTemplate(tmpl, fields)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideOutputDir, name)
	}
	return p, nil
}
