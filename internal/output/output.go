// Package output derives deterministic file names from an exam title and
// writes the harvested records out as a pretty-printed JSON array.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quizharvest/quizharvest/pkg/models"
)

// Characters that cannot appear in a file name on common filesystems.
var illegalChars = strings.NewReplacer(
	"\\", "", "/", "", ":", "", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
)

// SanitizeName normalizes an exam title for use as a file name: a
// colon-space becomes " - " before the remaining illegal characters are
// stripped outright.
func SanitizeName(title string) string {
	title = strings.ReplaceAll(title, ": ", " - ")
	return strings.TrimSpace(illegalChars.Replace(title))
}

// FallbackName generates a usable name for an untitled exam.
func FallbackName() string {
	return fmt.Sprintf("Untitled Exam %d", time.Now().Unix())
}

// ResultPath returns the deterministic result-file path for an exam name.
func ResultPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// LogPath returns the deterministic log-file path for an exam name.
func LogPath(dir, name string) string {
	return filepath.Join(dir, name+".log")
}

// WriteRecords persists the records as a pretty JSON array, creating the
// directory if needed.
func WriteRecords(path string, records []models.QuestionRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
