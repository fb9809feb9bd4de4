package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagSetGetRemove(t *testing.T) {
	s := NewStore(t.TempDir())

	assert.Equal(t, "", s.GetTag("s1"), "unset tag should be empty")

	require.NoError(t, s.SetTag("s1", "work"))
	assert.Equal(t, "work", s.GetTag("s1"))

	// re-tagging is idempotent on repeated application
	require.NoError(t, s.SetTag("s1", "play"))
	require.NoError(t, s.SetTag("s1", "play"))
	assert.Equal(t, "play", s.GetTag("s1"))

	require.NoError(t, s.RemoveTag("s1"))
	assert.Equal(t, "", s.GetTag("s1"))

	// removing an absent tag is fine
	require.NoError(t, s.RemoveTag("s1"))
}

func TestTogglePinRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	assert.False(t, s.IsPinned("s1"))

	on, err := s.TogglePin("s1")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, s.IsPinned("s1"))

	off, err := s.TogglePin("s1")
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, s.IsPinned("s1"))
}

func TestPinsAreIndependent(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.TogglePin("a")
	require.NoError(t, err)
	_, err = s.TogglePin("b")
	require.NoError(t, err)
	_, err = s.TogglePin("a")
	require.NoError(t, err)

	assert.False(t, s.IsPinned("a"))
	assert.True(t, s.IsPinned("b"))
}

func TestCorruptOverlayFilesDegradeToEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, os.WriteFile(s.TagsPath, []byte("{ not json"), 0600))
	require.NoError(t, os.WriteFile(s.PinsPath, []byte("also broken ]"), 0600))

	assert.Equal(t, "", s.GetTag("s1"))
	assert.False(t, s.IsPinned("s1"))

	// writes must recover the files
	require.NoError(t, s.SetTag("s1", "work"))
	assert.Equal(t, "work", s.GetTag("s1"))
}

func TestEphemeralRegisterAndDrain(t *testing.T) {
	s := NewStore(t.TempDir())

	assert.Empty(t, s.DrainEphemeral(), "empty registry drains to nothing")

	require.NoError(t, s.RegisterEphemeral("e1"))
	require.NoError(t, s.RegisterEphemeral("e2"))

	ids := s.DrainEphemeral()
	assert.Equal(t, []string{"e1", "e2"}, ids)

	// drain clears the registry
	assert.Empty(t, s.DrainEphemeral())
}

func TestDrainTruncatesBlankRegistry(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(s.EphemeralPath), 0700))
	require.NoError(t, os.WriteFile(s.EphemeralPath, []byte("\n  \n\n"), 0600))

	assert.Empty(t, s.DrainEphemeral())

	data, err := os.ReadFile(s.EphemeralPath)
	require.NoError(t, err)
	assert.Empty(t, data, "registry should be truncated even when it held no ids")
}

func TestForgetSessionClearsTagAndPin(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.SetTag("s1", "work"))
	_, err := s.TogglePin("s1")
	require.NoError(t, err)
	_, err = s.TogglePin("other")
	require.NoError(t, err)

	require.NoError(t, s.ForgetSession("s1"))
	assert.Equal(t, "", s.GetTag("s1"))
	assert.False(t, s.IsPinned("s1"))
	assert.True(t, s.IsPinned("other"), "unrelated pins survive")

	// forgetting an unknown session is a no-op
	require.NoError(t, s.ForgetSession("never-seen"))
}

func TestSessionsByTag(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.SetTag("a", "work"))
	require.NoError(t, s.SetTag("b", "work"))
	require.NoError(t, s.SetTag("c", "play"))

	ids := s.SessionsByTag("work")
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
	assert.Empty(t, s.SessionsByTag("missing"))
}
