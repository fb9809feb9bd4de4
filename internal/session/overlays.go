package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccs-tools/ccs/internal/logging"
)

var overlayLog = logging.ForComponent(logging.CompOverlay)

// Store persists the three user-maintained overlays: the tag map, the pin
// set, and the ephemeral-session registry. Each lives in its own file and
// loads independently; a missing or corrupt file behaves as an empty
// default so overlay damage never blocks the index.
//
// Mutations are whole-file read-modify-write with no cross-process locking.
// Concurrent invocations racing on the same file is an accepted last-writer-
// wins limitation of the interactive single-user use case.
type Store struct {
	TagsPath      string // JSON object: session id → tag
	PinsPath      string // JSON array of pinned session ids
	EphemeralPath string // newline-delimited session ids pending deletion
}

// NewStore returns a store rooted in dataDir using the conventional
// overlay file names.
func NewStore(dataDir string) *Store {
	return &Store{
		TagsPath:      filepath.Join(dataDir, "session_tags.json"),
		PinsPath:      filepath.Join(dataDir, "session_pins.json"),
		EphemeralPath: filepath.Join(dataDir, "ephemeral_sessions.txt"),
	}
}

// GetTag returns the tag for a session id, or empty if unset.
func (s *Store) GetTag(id string) string {
	return s.loadTags()[id]
}

// SetTag sets the tag for a session id. An empty value removes the entry.
func (s *Store) SetTag(id, tag string) error {
	tags := s.loadTags()
	if tag == "" {
		delete(tags, id)
	} else {
		tags[id] = tag
	}
	return s.saveJSON(s.TagsPath, tags)
}

// RemoveTag deletes the tag entry for a session id.
func (s *Store) RemoveTag(id string) error {
	return s.SetTag(id, "")
}

// IsPinned reports whether a session id is in the pin set.
func (s *Store) IsPinned(id string) bool {
	for _, p := range s.loadPins() {
		if p == id {
			return true
		}
	}
	return false
}

// TogglePin flips the pin state of a session id and returns the new state.
func (s *Store) TogglePin(id string) (bool, error) {
	pins := s.loadPins()
	for i, p := range pins {
		if p == id {
			pins = append(pins[:i], pins[i+1:]...)
			return false, s.saveJSON(s.PinsPath, pins)
		}
	}
	pins = append(pins, id)
	return true, s.saveJSON(s.PinsPath, pins)
}

// RegisterEphemeral appends a session id to the pending-deletion registry.
// Appending before launch means a crash still leaves the id queued.
func (s *Store) RegisterEphemeral(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.EphemeralPath), 0700); err != nil {
		return fmt.Errorf("overlay: mkdir: %w", err)
	}
	f, err := os.OpenFile(s.EphemeralPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("overlay: open ephemeral registry: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("overlay: append ephemeral id: %w", err)
	}
	return nil
}

// DrainEphemeral returns the registered ephemeral ids and clears the
// registry. The clear happens regardless of what the caller does with the
// ids, so permanently-stale entries cannot accumulate.
func (s *Store) DrainEphemeral() []string {
	data, err := os.ReadFile(s.EphemeralPath)
	if err != nil {
		return nil
	}
	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	if len(data) > 0 {
		if err := os.WriteFile(s.EphemeralPath, nil, 0600); err != nil {
			overlayLog.Warn("failed to clear ephemeral registry", "error", err)
		}
	}
	return ids
}

// ForgetSession removes a session id from the tag map and the pin set.
// Called after deleting a log so the overlays track the files that exist.
func (s *Store) ForgetSession(id string) error {
	if err := s.RemoveTag(id); err != nil {
		return err
	}
	pins := s.loadPins()
	kept := pins[:0]
	for _, p := range pins {
		if p != id {
			kept = append(kept, p)
		}
	}
	if len(kept) != len(pins) {
		return s.saveJSON(s.PinsPath, kept)
	}
	return nil
}

// SessionsByTag returns the ids carrying the exact tag value.
func (s *Store) SessionsByTag(tag string) []string {
	var ids []string
	for id, t := range s.loadTags() {
		if t == tag {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Store) loadTags() map[string]string {
	tags := make(map[string]string)
	loadJSON(s.TagsPath, &tags)
	if tags == nil {
		tags = make(map[string]string)
	}
	return tags
}

func (s *Store) loadPins() []string {
	var pins []string
	loadJSON(s.PinsPath, &pins)
	return pins
}

// loadJSON reads a JSON overlay into v. Any failure leaves v at its zero
// default; overlay corruption degrades to "no overlay", never an error.
func loadJSON(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		overlayLog.Debug("ignoring corrupt overlay file", "path", path, "error", err)
	}
}

// saveJSON rewrites an overlay file in full, atomically (temp file + rename).
func (s *Store) saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("overlay: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("overlay: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("overlay: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("overlay: rename: %w", err)
	}
	return nil
}
