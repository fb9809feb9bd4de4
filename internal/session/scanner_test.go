package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeLog writes one session log under root/project/id.jsonl and returns
// its path.
func writeLog(t *testing.T, root, project, id string, lines ...string) string {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, id+LogExt)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestScanner(t *testing.T, root string) *Scanner {
	t.Helper()
	return NewScanner(root, NewStore(t.TempDir()), nil)
}

func TestScanSingleSession(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "-tmp-proj", "s1", `{"type":"user","cwd":"/tmp","message":"hello"}`)

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.ID != "s1" {
		t.Errorf("ID = %q", r.ID)
	}
	if r.Label() != "hello" {
		t.Errorf("Label() = %q, want %q", r.Label(), "hello")
	}
	if r.WorkingDir != "/tmp" {
		t.Errorf("WorkingDir = %q, want /tmp", r.WorkingDir)
	}
	if r.Pinned || r.Tag != "" {
		t.Errorf("expected no overlay state, got pinned=%v tag=%q", r.Pinned, r.Tag)
	}
}

func TestScanMessageEncodings(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "p", "plain",
		`{"type":"user","cwd":"/a","message":"top-level string"}`)
	writeLog(t, root, "p", "nested",
		`{"type":"user","cwd":"/a","message":{"role":"user","content":"nested string"}}`)
	writeLog(t, root, "p", "blocks",
		`{"type":"user","cwd":"/a","message":{"role":"user","content":[{"type":"tool_result","content":"x"},{"type":"text","text":"from block"}]}}`)

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]string)
	for _, r := range records {
		got[r.ID] = r.FirstMessage
	}
	want := map[string]string{
		"plain":  "top-level string",
		"nested": "nested string",
		"blocks": "from block",
	}
	for id, msg := range want {
		if got[id] != msg {
			t.Errorf("%s: FirstMessage = %q, want %q", id, got[id], msg)
		}
	}
}

func TestScanLastSummaryWins(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "p", "s1",
		`{"type":"summary","summary":"early topic"}`,
		`{"type":"user","cwd":"/a","message":"hi"}`,
		`{"type":"summary","summary":"late topic"}`)

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Summary != "late topic" {
		t.Errorf("Summary = %q, want %q", records[0].Summary, "late topic")
	}
	if records[0].Label() != "late topic" {
		t.Errorf("Label() = %q, summary should shadow first message", records[0].Label())
	}
}

func TestScanSkipsMalformedLines(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "p", "s1",
		`not json at all {{{`,
		``,
		`{"type":"user","cwd":"/w","message":"still indexed"}`,
		`{"broken`)

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].FirstMessage != "still indexed" {
		t.Errorf("FirstMessage = %q", records[0].FirstMessage)
	}
}

func TestScanFirstUserEventWins(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "p", "s1",
		`{"type":"user","cwd":"/first","message":"one"}`,
		`{"type":"user","cwd":"/second","message":"two"}`)

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if records[0].WorkingDir != "/first" {
		t.Errorf("WorkingDir = %q, want /first", records[0].WorkingDir)
	}
	if records[0].FirstMessage != "one" {
		t.Errorf("FirstMessage = %q, want one", records[0].FirstMessage)
	}
}

func TestScanTruncatesAndCollapsesFirstMessage(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("x", 80) + "\n\t" + strings.Repeat("y", 80)
	writeLog(t, root, "p", "s1",
		`{"type":"user","cwd":"/a","message":`+jsonString(long)+`}`)

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	msg := records[0].FirstMessage
	if n := len([]rune(msg)); n != firstMessageLimit {
		t.Errorf("len = %d, want %d", n, firstMessageLimit)
	}
	if strings.ContainsAny(msg, "\n\t") {
		t.Errorf("whitespace not collapsed: %q", msg)
	}
}

func jsonString(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return `"` + s + `"`
}

func TestScanDuplicateIDNewestWins(t *testing.T) {
	root := t.TempDir()
	old := writeLog(t, root, "proj-a", "dup", `{"type":"user","cwd":"/a","message":"old copy"}`)
	writeLog(t, root, "proj-b", "dup", `{"type":"user","cwd":"/b","message":"new copy"}`)

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ProjectKey != "proj-b" {
		t.Errorf("ProjectKey = %q, want proj-b", records[0].ProjectKey)
	}
	if records[0].FirstMessage != "new copy" {
		t.Errorf("FirstMessage = %q", records[0].FirstMessage)
	}
}

func TestScanAppliesOverlaysAndSorts(t *testing.T) {
	root := t.TempDir()
	oldPath := writeLog(t, root, "p", "pinned-old", `{"type":"user","cwd":"/a","message":"a"}`)
	writeLog(t, root, "p", "plain-new", `{"type":"user","cwd":"/a","message":"b"}`)

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatal(err)
	}

	overlays := NewStore(t.TempDir())
	if _, err := overlays.TogglePin("pinned-old"); err != nil {
		t.Fatal(err)
	}
	if err := overlays.SetTag("pinned-old", "work"); err != nil {
		t.Fatal(err)
	}

	records, err := NewScanner(root, overlays, nil).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if records[0].ID != "pinned-old" {
		t.Fatalf("pinned session should sort first, got %s", records[0].ID)
	}
	if !records[0].Pinned || records[0].Tag != "work" {
		t.Errorf("overlay state not applied: pinned=%v tag=%q", records[0].Pinned, records[0].Tag)
	}
	if records[0].Label() != "★ [work] a" {
		t.Errorf("Label() = %q", records[0].Label())
	}
}

func TestScanEmptyRoot(t *testing.T) {
	records, err := newTestScanner(t, t.TempDir()).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records from empty root", len(records))
	}
}

func TestScanEmptyLogFile(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "p", "s1") // single empty line

	records, err := newTestScanner(t, root).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Label() != EmptyLabel {
		t.Errorf("Label() = %q, want %q", records[0].Label(), EmptyLabel)
	}
}

func TestScanUsesCache(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "p", "s1", `{"type":"user","cwd":"/a","message":"cached"}`)

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	sc := NewScanner(root, NewStore(t.TempDir()), cache)
	if _, err := sc.Scan(); err != nil {
		t.Fatal(err)
	}

	// Rewrite the file but restore the original mtime: the stale cache
	// entry must be served, proving the scan skipped the re-parse.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"type":"user","cwd":"/a","message":"rewritten"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	records, err := sc.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if records[0].FirstMessage != "cached" {
		t.Errorf("FirstMessage = %q, want cached copy", records[0].FirstMessage)
	}
}
