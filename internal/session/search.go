package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// searchSource adapts records to the fuzzy matcher. Each record exposes a
// haystack combining the fields a user might remember a session by.
type searchSource []Record

func (s searchSource) Len() int { return len(s) }

func (s searchSource) String(i int) string {
	r := s[i]
	return strings.ToLower(strings.Join([]string{
		r.Label(), r.ProjectDisplay, r.Tag, r.ID, r.WorkingDir,
	}, " "))
}

// Search ranks records against query with fuzzy matching over label,
// project, tag, id and working directory. Results keep the matcher's
// ranking order. An empty query returns all records unchanged.
func Search(records []Record, query string) []Record {
	if query == "" {
		return records
	}
	matches := fuzzy.FindFrom(strings.ToLower(query), searchSource(records))
	out := make([]Record, 0, len(matches))
	for _, m := range matches {
		out = append(out, records[m.Index])
	}
	return out
}

// idPrefixMin is the shortest id prefix accepted for direct resolution.
const idPrefixMin = 6

// ErrAmbiguousQuery reports a resume query matching more than one session.
var ErrAmbiguousQuery = errors.New("matches multiple sessions")

// Resolve finds a single record by exact id, tag, or unique id prefix, in
// that order. Tags come from the overlay store; a tag shared by several
// indexed sessions, or a prefix of several ids, is an error rather than a
// guess.
func Resolve(records []Record, overlays *Store, query string) (Record, error) {
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	if r, ok := byID[query]; ok {
		return r, nil
	}

	var tagged []Record
	for _, id := range overlays.SessionsByTag(query) {
		if r, ok := byID[id]; ok {
			tagged = append(tagged, r)
		}
	}
	if len(tagged) == 1 {
		return tagged[0], nil
	}
	if len(tagged) > 1 {
		return Record{}, fmt.Errorf("resolve %q: tag set on %d sessions: %w", query, len(tagged), ErrAmbiguousQuery)
	}

	if len(query) >= idPrefixMin {
		var hits []Record
		for _, r := range records {
			if strings.HasPrefix(r.ID, query) {
				hits = append(hits, r)
			}
		}
		if len(hits) == 1 {
			return hits[0], nil
		}
		if len(hits) > 1 {
			return Record{}, fmt.Errorf("resolve %q: prefix of %d session ids: %w", query, len(hits), ErrAmbiguousQuery)
		}
	}
	return Record{}, fmt.Errorf("resolve %q: no matching session", query)
}
