package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/ccs-tools/ccs/internal/selector"
	"github.com/ccs-tools/ccs/internal/session"
)

// scanIndex runs a scan and reports the empty-index case to the user.
// The selector is never invoked over an empty index.
func (a *app) scanIndex() ([]session.Record, bool) {
	records, err := a.scanner.Scan()
	if err != nil {
		fatalf("scan failed: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("No sessions found.")
		fmt.Println(dimStyle.Render("Start one with 'ccs new <name>' or 'ccs tmp'."))
		return nil, false
	}
	return records, true
}

// requireTTY rejects interactive picking when there is no terminal to
// run the selector on.
func requireTTY() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fatalf("interactive selection requires a terminal; use 'ccs list' or 'ccs search' instead")
	}
}

// pickOne runs the selector for a single record. The bool is false when
// the user cancelled or the index was empty.
func (a *app) pickOne(prompt string) (selector.Selection, bool) {
	requireTTY()
	records, ok := a.scanIndex()
	if !ok {
		return selector.Selection{}, false
	}
	line, ok, err := a.selector.PickOne(selector.FormatIndex(records), prompt)
	if err != nil {
		fatalf("%v", err)
	}
	if !ok {
		return selector.Selection{}, false
	}
	sel, err := selector.ParseLine(line)
	if err != nil {
		fatalf("%v", err)
	}
	return sel, true
}

// pickMany runs the selector in multi-select mode. An empty result is a
// no-op for every command, not an error.
func (a *app) pickMany(prompt string) []selector.Selection {
	requireTTY()
	records, ok := a.scanIndex()
	if !ok {
		return nil
	}
	lines, err := a.selector.Pick(selector.FormatIndex(records), prompt, true)
	if err != nil {
		fatalf("%v", err)
	}
	var sels []selector.Selection
	for _, line := range lines {
		sel, err := selector.ParseLine(line)
		if err != nil {
			cliLog.Warn("skipping malformed selection", "error", err)
			continue
		}
		sels = append(sels, sel)
	}
	return sels
}

// handleResume is the default command. A query resolves directly by exact
// id, tag, or unique id prefix; without one the picker opens. strict makes
// a failed resolution a usage error instead of falling back to the picker;
// an ambiguous query is an error either way, never a silent guess.
func (a *app) handleResume(args []string, strict bool) {
	if len(args) > 0 {
		query := strings.Join(args, " ")
		records, err := a.scanner.Scan()
		if err != nil {
			fatalf("scan failed: %v", err)
		}
		rec, rerr := session.Resolve(records, a.overlays, query)
		if rerr == nil {
			a.resumeSession(rec.ID, rec.WorkingDir)
			return
		}
		if strict || errors.Is(rerr, session.ErrAmbiguousQuery) {
			fatalf("%v", rerr)
		}
	}
	sel, ok := a.pickOne("resume> ")
	if !ok {
		return
	}
	a.resumeSession(sel.ID, sel.WorkingDir)
}

func (a *app) resumeSession(id, dir string) {
	fmt.Printf("%s Resuming session %s\n", accentStyle.Render("◆"), dimStyle.Render("("+shortID(id)+"…)"))
	if err := a.launcher.Resume(id, dir, nil); err != nil {
		fatalf("%v", err)
	}
}

// handleNew starts a fresh session tagged with the given name. The tag is
// written before launch so the session is never untagged.
func (a *app) handleNew(args []string) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fatalf("Usage: ccs new <name>")
	}
	name := args[0]
	id := uuid.NewString()
	if err := a.overlays.SetTag(id, name); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("%s Starting named session: %s %s\n",
		accentStyle.Render("◆"), tagStyle.Render(name), dimStyle.Render("("+shortID(id)+"…)"))
	if err := a.launcher.StartNew(id, args[1:]); err != nil {
		fatalf("%v", err)
	}
}

// handleTmp starts an ephemeral session. The id is registered before
// launch so a crash still leaves it queued for cleanup, and the reaper
// runs again as soon as the agent returns.
func (a *app) handleTmp(args []string) {
	id := uuid.NewString()
	if err := a.overlays.RegisterEphemeral(id); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("%s Starting ephemeral session %s\n",
		accentStyle.Render("◆"), dimStyle.Render("("+shortID(id)+"…)"))
	err := a.launcher.StartNew(id, args)
	a.reaper.Reap()
	if err != nil {
		fatalf("%v", err)
	}
}

// handleTag sets a tag on one picked session. Without an argument the
// name is prompted for; an empty name cancels without changes.
func (a *app) handleTag(args []string) {
	sel, ok := a.pickOne("tag> ")
	if !ok {
		return
	}
	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		var err error
		name, err = promptTagName()
		if err != nil {
			fatalf("%v", err)
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Cancelled.")
		return
	}
	if err := a.overlays.SetTag(sel.ID, name); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Tagged %s: %s\n", tagStyle.Render("["+name+"]"), truncID(sel.ID))
}

// handleUntag removes the tag from one picked session.
func (a *app) handleUntag() {
	sel, ok := a.pickOne("untag> ")
	if !ok {
		return
	}
	if err := a.overlays.RemoveTag(sel.ID); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Removed tag from: %s\n", truncID(sel.ID))
}

// handlePin toggles the pin state of each picked session independently.
func (a *app) handlePin() {
	for _, sel := range a.pickMany("pin> ") {
		pinned, err := a.overlays.TogglePin(sel.ID)
		if err != nil {
			fatalf("%v", err)
		}
		if pinned {
			fmt.Printf("%s Pinned: %s\n", pinStyle.Render("★"), truncID(sel.ID))
		} else {
			fmt.Printf("Unpinned: %s\n", truncID(sel.ID))
		}
	}
}

// handleRm deletes each picked session's log file and cleans its overlay
// entries. An already-absent file is skipped silently; the overlays are
// cleaned either way so they keep tracking the files that exist.
func (a *app) handleRm() {
	for _, sel := range a.pickMany("rm> ") {
		path := filepath.Join(a.projectsDir, sel.ProjectKey, sel.ID+session.LogExt)
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				fatalf("delete %s: %v", path, err)
			}
			fmt.Printf("Deleted: %s\n", truncID(sel.ID))
		}
		if err := a.overlays.ForgetSession(sel.ID); err != nil {
			fatalf("%v", err)
		}
	}
}

// handleList dumps the index without invoking the selector.
func (a *app) handleList() {
	records, ok := a.scanIndex()
	if !ok {
		return
	}
	for _, r := range records {
		printRow(r)
	}
}

// handleSearch prints index rows fuzzy-matching the query.
func (a *app) handleSearch(args []string) {
	if len(args) == 0 {
		fatalf("Usage: ccs search <query>")
	}
	query := strings.Join(args, " ")
	records, ok := a.scanIndex()
	if !ok {
		return
	}
	matches := session.Search(records, query)
	if len(matches) == 0 {
		fmt.Printf("No sessions matching '%s'.\n", query)
		return
	}
	plural := "es"
	if len(matches) == 1 {
		plural = ""
	}
	fmt.Printf("%d match%s:\n", len(matches), plural)
	for _, r := range matches {
		printRow(r)
	}
}

// handlePreview renders the detail view for one selector line. Errors are
// shown inside the preview pane rather than failing the callback.
func (a *app) handlePreview(args []string) {
	line := strings.Join(args, " ")
	if line == "" {
		return
	}
	out, err := selector.Preview(line, a.overlays, a.projectsDir)
	if err != nil {
		fmt.Println(dimStyle.Render("(no preview)"))
		return
	}
	fmt.Print(out)
}

func printRow(r session.Record) {
	pin := "  "
	if r.Pinned {
		pin = pinStyle.Render("★") + " "
	}
	tag := ""
	if r.Tag != "" {
		tag = tagStyle.Render("["+r.Tag+"]") + " "
	}
	label := r.Summary
	if label == "" {
		label = r.FirstMessage
	}
	if label == "" {
		label = session.EmptyLabel
	}
	fmt.Printf("  %s%s%s  %s  %s  %s\n",
		pin, tag,
		dimStyle.Render(r.Timestamp()),
		truncID(r.ID),
		projectStyle.Render(runewidth.FillRight(runewidth.Truncate(r.ProjectDisplay, 24, ".."), 24)),
		runewidth.Truncate(label, 60, "…"),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
