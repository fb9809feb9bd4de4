package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// promptTagName asks the user for a tag name. Escape or an empty entry
// cancels (returns ""). When stdin is not a terminal the name is read as
// a plain line instead, so piped usage still works.
func promptTagName() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", nil
		}
		return strings.TrimSpace(line), nil
	}

	ti := textinput.New()
	ti.Placeholder = "tag name"
	ti.CharLimit = 64
	ti.Focus()

	model, err := tea.NewProgram(tagPrompt{input: ti}).Run()
	if err != nil {
		return "", fmt.Errorf("tag prompt: %w", err)
	}
	p := model.(tagPrompt)
	if p.cancelled {
		return "", nil
	}
	return p.input.Value(), nil
}

type tagPrompt struct {
	input     textinput.Model
	cancelled bool
	done      bool
}

func (p tagPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (p tagPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			p.done = true
			return p, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p tagPrompt) View() string {
	if p.done || p.cancelled {
		return ""
	}
	return accentStyle.Render("Tag: ") + p.input.View() + dimStyle.Render("  (enter to apply, esc to cancel)")
}
