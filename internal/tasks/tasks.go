// Package tasks persists the batch task list. The list is rewritten in
// full after every task so an interrupted batch resumes where it stopped.
package tasks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
)

// Task statuses.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Task is one scrape target in the batch list.
type Task struct {
	Link   string `json:"link"`
	Label  string `json:"label"`
	Status string `json:"status"`
	File   string `json:"file,omitempty"` // relative path of the produced result file
}

// testBaseRe matches the base test URL inside whatever form a link was
// pasted in (bare test page, solutions view, stray query parameters).
var testBaseRe = regexp.MustCompile(`(https://testbook\.com/TS-ssc-cgl/tests/\w+)`)

// analysisSuffix is the canonical entry point for a scrape session.
const analysisSuffix = "/analysis?attemptNo=1"

// NormalizeLink standardizes a task link to the canonical
// <test-url>/analysis?attemptNo=1 form. Links that do not contain a
// recognizable test URL pass through unchanged.
func NormalizeLink(url string) string {
	if base := testBaseRe.FindString(url); base != "" {
		return base + analysisSuffix
	}
	return url
}

// Load reads the task list from disk. Links are normalized on the way
// in so every session starts from the canonical analysis URL no matter
// how the link was pasted into the list.
func Load(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []Task
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Link = NormalizeLink(list[i].Link)
	}
	return list, nil
}

// Save rewrites the whole task list. Called after every task: the file on
// disk is always a consistent resume point.
func Save(path string, list []Task) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate demotes COMPLETED tasks whose referenced result file no longer
// exists in any of the given directories. Returns the number demoted.
func Validate(list []Task, dirs ...string) int {
	demoted := 0
	for i := range list {
		if list[i].Status != StatusCompleted || list[i].File == "" {
			continue
		}
		if !existsInAny(list[i].File, dirs) {
			list[i].Status = StatusPending
			list[i].File = ""
			demoted++
		}
	}
	return demoted
}

func existsInAny(file string, dirs []string) bool {
	name := filepath.Base(file)
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
