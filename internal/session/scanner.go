package session

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccs-tools/ccs/internal/logging"
)

var scanLog = logging.ForComponent(logging.CompScanner)

// firstMessageLimit is the truncation applied to the indexed first message.
// The preview renders a longer cut straight from the log file.
const firstMessageLimit = 120

// Scanner builds the session index from the log directory tree.
// The index is best-effort: unreadable files contribute no record and
// malformed lines inside a file are skipped.
type Scanner struct {
	// ProjectsDir is the log root: one subdirectory per project,
	// one .jsonl file per session.
	ProjectsDir string

	// Overlays supplies tags and pins. Required.
	Overlays *Store

	// Cache holds parse results keyed by file mtime. Optional; nil
	// disables caching.
	Cache *Cache

	encodedHome string
}

// NewScanner returns a scanner over projectsDir using the given overlays
// and optional cache.
func NewScanner(projectsDir string, overlays *Store, cache *Cache) *Scanner {
	return &Scanner{
		ProjectsDir: projectsDir,
		Overlays:    overlays,
		Cache:       cache,
		encodedHome: EncodedHome(),
	}
}

// Scan walks the log tree and returns the sorted session index.
// Duplicate session ids across project directories collapse to one record;
// the copy with the newest modification time wins.
func (s *Scanner) Scan() ([]Record, error) {
	paths, err := filepath.Glob(filepath.Join(s.ProjectsDir, "*", "*"+LogExt))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Record, len(paths))
	for _, path := range paths {
		id := strings.TrimSuffix(filepath.Base(path), LogExt)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if prev, ok := byID[id]; ok && !info.ModTime().After(prev.ModTime) {
			continue
		}

		projectKey := filepath.Base(filepath.Dir(path))
		parsed := s.parse(id, path, info.ModTime().UnixNano())

		byID[id] = Record{
			ID:             id,
			ProjectKey:     projectKey,
			ProjectDisplay: DecodeProjectKey(projectKey, s.encodedHome),
			WorkingDir:     parsed.WorkingDir,
			FirstMessage:   parsed.FirstMessage,
			Summary:        parsed.Summary,
			ModTime:        info.ModTime(),
			Tag:            s.Overlays.GetTag(id),
			Pinned:         s.Overlays.IsPinned(id),
			Path:           path,
		}
	}

	records := make([]Record, 0, len(byID))
	seen := make(map[string]bool, len(byID))
	for id, rec := range byID {
		records = append(records, rec)
		seen[id] = true
	}
	if s.Cache != nil {
		if err := s.Cache.Prune(seen); err != nil {
			scanLog.Debug("cache prune failed", "error", err)
		}
	}

	SortRecords(records)
	return records, nil
}

// parse returns the parse result for one log file, consulting the cache
// when the file's mtime matches a cached entry.
func (s *Scanner) parse(id, path string, mtime int64) ParseResult {
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(id, mtime); ok {
			return cached
		}
	}
	parsed := parseLogFile(path)
	if s.Cache != nil {
		if err := s.Cache.Put(id, mtime, parsed); err != nil {
			scanLog.Debug("cache put failed", "session", id, "error", err)
		}
	}
	return parsed
}

// ParseResult holds everything a single pass over a log file extracts.
type ParseResult struct {
	Summary      string // last summary event in file order
	WorkingDir   string // cwd of the first user event
	FirstMessage string // text of the first user event, collapsed, truncated
}

// logEvent is one newline-delimited entry in a session log.
// Unrecognized event kinds deserialize with empty fields and are ignored.
type logEvent struct {
	Type    string          `json:"type"`
	Summary string          `json:"summary"`
	CWD     string          `json:"cwd"`
	Message json.RawMessage `json:"message"`
}

// parseLogFile scans one log file line by line. Lines that fail to parse
// are skipped; a file that cannot be opened yields an empty result.
func parseLogFile(path string) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{}
	}
	defer f.Close()

	var res ParseResult
	sawUser := false
	scanner := bufio.NewScanner(f)
	// Individual log lines can carry large tool payloads.
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
			// Last occurrence in file order wins, not highest timestamp.
			if ev.Summary != "" {
				res.Summary = ev.Summary
			}
		case "user":
			// First user event wins for both fields; later ones are ignored.
			if sawUser {
				continue
			}
			sawUser = true
			res.WorkingDir = strings.TrimSpace(ev.CWD)
			if text := extractMessageText(ev.Message); text != "" {
				res.FirstMessage = collapseWhitespace(truncateRunes(text, firstMessageLimit))
			}
		}
	}
	// Scanner errors (e.g. a line past the buffer cap) abandon the rest of
	// the file but keep whatever was extracted before the bad line.
	return res
}

// messageBody is the structured form of a user event's message field.
type messageBody struct {
	Content json.RawMessage `json:"content"`
}

// contentBlock is one entry of a structured content list.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// extractMessageText pulls the user-authored text out of a message field.
// Three encodings occur in the wild: a structured message whose content is
// a list of blocks (first "text" block wins), a structured message whose
// content is a plain string, and a top-level plain string.
func extractMessageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var body messageBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Content) == 0 {
		return ""
	}
	if err := json.Unmarshal(body.Content, &plain); err == nil {
		return plain
	}
	var blocks []contentBlock
	if err := json.Unmarshal(body.Content, &blocks); err == nil {
		for _, b := range blocks {
			if b.Type == "text" {
				return b.Text
			}
		}
	}
	return ""
}

// collapseWhitespace flattens newlines and tabs so the text stays on one
// index line.
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
