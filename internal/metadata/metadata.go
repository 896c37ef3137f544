// Package metadata renders the datasette metadata file published next to
// the players database.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// DatePlaceholder is replaced by the publication date.
const DatePlaceholder = "{{date}}"

// DateLayout is the format the date is rendered in.
const DateLayout = "2006-01-02"

// Render replaces every DatePlaceholder in template with date in UTC.
func Render(template string, date time.Time) string {
	return strings.ReplaceAll(template, DatePlaceholder, date.UTC().Format(DateLayout))
}

// WriteFile renders the template file at templatePath and atomically
// replaces outPath with the result.
func WriteFile(templatePath, outPath string, date time.Time) error {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}
	if err := atomic.WriteFile(outPath, bytes.NewReader([]byte(Render(string(tmpl), date)))); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}
