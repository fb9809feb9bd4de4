package session

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// LogExt is the extension Claude Code uses for session log files.
const LogExt = ".jsonl"

// EmptyLabel is shown for sessions with no user message and no summary.
const EmptyLabel = "(empty session)"

// Record is one entry in the session index. Records are derived, not stored:
// every scan rebuilds them from the log files plus the overlay store.
type Record struct {
	ID             string    // log file base name, unique across the index
	ProjectKey     string    // raw directory name grouping the log file
	ProjectDisplay string    // human-readable form of ProjectKey
	WorkingDir     string    // cwd recorded in the first user event, may be empty
	FirstMessage   string    // first user-authored text, collapsed, max 120 chars
	Summary        string    // last summary event seen in file order
	ModTime        time.Time // log file mtime, used only for ordering
	Tag            string    // overlay tag, empty if unset
	Pinned         bool
	Path           string // absolute path of the log file
}

// Label is the display text for a record: pin star, tag, then the summary,
// first message, or the empty-session marker. Prefix order is fixed.
func (r Record) Label() string {
	var b strings.Builder
	if r.Pinned {
		b.WriteString("★ ")
	}
	if r.Tag != "" {
		b.WriteString("[")
		b.WriteString(r.Tag)
		b.WriteString("] ")
	}
	text := r.Summary
	if text == "" {
		text = r.FirstMessage
	}
	if text == "" {
		text = EmptyLabel
	}
	b.WriteString(text)
	return b.String()
}

// Timestamp renders the modification time at minute precision.
func (r Record) Timestamp() string {
	return r.ModTime.Format("2006-01-02 15:04")
}

// SortRecords orders records for display: pinned sessions first, then
// descending modification time within each pin tier.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Pinned != records[j].Pinned {
			return records[i].Pinned
		}
		return records[i].ModTime.After(records[j].ModTime)
	})
}

// dirNameRegex matches every character Claude Code replaces with a hyphen
// when it encodes a project path into a directory name.
var dirNameRegex = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// EncodeProjectPath converts a filesystem path to Claude's directory naming
// format: all non-alphanumeric characters (except hyphens) become hyphens.
// Example: /Users/me/Code cloud/!Project → -Users-me-Code-cloud--Project
func EncodeProjectPath(path string) string {
	return dirNameRegex.ReplaceAllString(path, "-")
}

// DecodeProjectKey turns a raw project directory name back into a readable
// path: the encoded home directory collapses to "~" and the remaining
// hyphens become path separators. The transform is lossy (hyphenated
// directory names come back with slashes) but matches what the encoding
// preserves.
func DecodeProjectKey(raw, encodedHome string) string {
	p := raw
	if encodedHome != "" && strings.HasPrefix(p, encodedHome) {
		p = "~" + p[len(encodedHome):]
	}
	if p == "~" || p == "-workdir" {
		return p
	}
	if strings.HasPrefix(p, "~-") {
		return "~/" + strings.ReplaceAll(p[2:], "-", "/")
	}
	return strings.ReplaceAll(p, "-", "/")
}

// EncodedHome returns the home directory in Claude's encoded form,
// or empty if the home directory cannot be determined.
func EncodedHome() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return EncodeProjectPath(home)
}
