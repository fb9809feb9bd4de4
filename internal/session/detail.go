package session

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

// previewMessageLimit is the first-message cut shown in the detail view.
const previewMessageLimit = 300

// Detail is the expanded view of one session, read fresh from its log
// file rather than from the index.
type Detail struct {
	FirstMessage string   // first user-authored text, up to 300 chars
	Summaries    []string // every summary event, in file order
}

// RecentSummaries returns up to the n most recent summaries in
// chronological order (oldest of the n first).
func (d Detail) RecentSummaries(n int) []string {
	if len(d.Summaries) <= n {
		return d.Summaries
	}
	return d.Summaries[len(d.Summaries)-n:]
}

// ReadDetail re-reads a session log in full for the preview renderer.
// It applies the same tolerant line parsing as the scanner. A file that
// cannot be opened yields an empty detail.
func ReadDetail(path string) Detail {
	f, err := os.Open(path)
	if err != nil {
		return Detail{}
	}
	defer f.Close()

	var d Detail
	sawUser := false
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev logEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "summary":
			if ev.Summary != "" {
				d.Summaries = append(d.Summaries, ev.Summary)
			}
		case "user":
			if sawUser {
				continue
			}
			sawUser = true
			if text := extractMessageText(ev.Message); text != "" {
				d.FirstMessage = strings.TrimSpace(truncateRunes(text, previewMessageLimit))
			}
		}
	}
	return d
}
