package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExportStory appends a finished story to a plain text archive.
func ExportStory(s Story, filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fileExists := false
	if _, err := os.Stat(filename); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(formatStory(s, fileExists)); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

func formatStory(s Story, appended bool) string {
	var sb strings.Builder
	if appended {
		sb.WriteString("\n\n")
	}
	kind := "Story"
	if s.IsPractice {
		kind = "Practice"
	}
	sb.WriteString(fmt.Sprintf("%s %s: %s\n", kind, s.ID, s.Title))
	sb.WriteString(fmt.Sprintf("Theme: %s | Started: %s\n", s.Settings.Theme, s.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(s.Text() + "\n\n")

	names := make(map[string]string, len(s.Participants))
	for _, p := range s.Participants {
		names[p.UID] = p.DisplayName
	}
	type contribution struct {
		Name  string
		Words int
	}
	contribs := make([]contribution, 0, len(s.ParticipantWordCount))
	for uid, n := range s.ParticipantWordCount {
		name := names[uid]
		if name == "" {
			name = uid
		}
		contribs = append(contribs, contribution{Name: name, Words: n})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].Words != contribs[j].Words {
			return contribs[i].Words > contribs[j].Words
		}
		return contribs[i].Name < contribs[j].Name
	})

	sb.WriteString("Words per participant:\n")
	for _, c := range contribs {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", c.Name, c.Words))
	}
	if len(s.Forfeits) > 0 {
		sb.WriteString(fmt.Sprintf("\nTurns lost to the clock: %d\n", len(s.Forfeits)))
	}
	sb.WriteString(fmt.Sprintf("\nClosed at %s\n", time.Now().UTC().Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	return sb.String()
}
