package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/koopa0/canvas/internal/canvas"
)

// Slash command constants.
const (
	cmdHelp  = "/help"
	cmdClear = "/clear"
	cmdExit  = "/exit"
	cmdQuit  = "/quit"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	EscCancel  key.Binding

	// Canvas panel bindings. All use Ctrl so plain letters stay free for
	// typing in the textarea.
	TogglePanel    key.Binding
	VersionHistory key.Binding
	PrevVersion    key.Binding
	NextVersion    key.Binding
	ToggleDiff     key.Binding
	Restore        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		TogglePanel:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "canvas")),
		VersionHistory: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "versions")),
		PrevVersion:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "older")),
		NextVersion:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "newer")),
		ToggleDiff:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "diff")),
		Restore:        key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "restore")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (t *TUI) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Check for Ctrl modifier
	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return t.handleCtrlC()
		case 'd':
			cmd := t.cleanup()
			return t, cmd
		case 'o':
			t.togglePanel()
			return t, nil
		case 'v':
			return t.handleVersionHistory()
		case 'p':
			if t.historyOpen() && t.versions.Prev() {
				return t, nil
			}
		case 'n':
			if t.historyOpen() && t.versions.Next() {
				return t, nil
			}
		case 'x':
			if t.historyOpen() {
				t.versions.ToggleDiff()
				return t, nil
			}
		case 'r':
			return t.handleRestore()
		}
	}

	// Check special keys
	switch k.Code {
	case tea.KeyEnter:
		if t.state == StateInput {
			// Enter without Shift = submit
			// Shift+Enter = newline (pass through to textarea)
			if k.Mod&tea.ModShift == 0 {
				return t.handleSubmit()
			}
		}

	case tea.KeyUp:
		// Up at first line navigates history, otherwise pass to textarea
		if t.state == StateInput && t.input.Line() == 0 {
			return t.navigateHistory(-1)
		}

	case tea.KeyDown:
		// Down at last line navigates history, otherwise pass to textarea
		if t.state == StateInput && t.input.Line() == t.input.LineCount()-1 {
			return t.navigateHistory(1)
		}

	case tea.KeyEscape:
		if t.state == StateStreaming || t.state == StateThinking {
			t.cancelStream()
			t.state = StateInput
			t.output.Reset()
			return t, nil
		}
		// In version history, esc jumps back to the latest version first;
		// a second esc closes the history.
		if t.historyOpen() {
			if t.versions.Phase() == canvas.PhaseLatest {
				t.versions.Close()
			} else {
				t.versions.BackToLatest()
			}
			return t, nil
		}

	case tea.KeyPgUp:
		t.viewport.PageUp()
		return t, nil

	case tea.KeyPgDown:
		t.viewport.PageDown()
		return t, nil
	}

	// Pass keys to textarea for typing - ALWAYS allow typing even during streaming
	// Better UX: users can prepare next message while LLM responds
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// historyOpen reports whether the version history is attached to the
// visible document.
func (t *TUI) historyOpen() bool {
	return t.panelOpen() && t.versions.State().DocID == t.engine.Visible().DocumentID &&
		t.versions.State().DocID != ""
}

// togglePanel hides a visible panel, or reopens it on the projected
// document. The panel only opens through explicit actions like this one.
func (t *TUI) togglePanel() {
	vs := t.engine.Visible()
	if vs.Visible {
		t.engine.Hide()
		t.versions.Close()
	} else if vs.DocumentID != "" {
		t.engine.Show(vs.DocumentID)
	}
	t.layout()
}

// handleVersionHistory opens the version history for the visible document,
// or closes it if already open.
func (t *TUI) handleVersionHistory() (tea.Model, tea.Cmd) {
	if !t.panelOpen() {
		return t, nil
	}
	if t.store == nil {
		t.addMessage(Message{Role: roleSystem, Text: "Version history requires a database connection."})
		t.rebuildViewportContent()
		return t, nil
	}
	if t.historyOpen() {
		t.versions.Close()
		return t, nil
	}

	docID := t.engine.Visible().DocumentID
	if t.engine.Streaming(docID) {
		// Still generating; history would race the stream.
		return t, nil
	}

	fetch, generation := t.versions.Open(docID)
	if !fetch {
		return t, nil
	}
	return t, t.fetchVersions(docID, generation)
}

// handleRestore persists the version at the cursor as the new latest.
func (t *TUI) handleRestore() (tea.Model, tea.Cmd) {
	if !t.historyOpen() || t.store == nil {
		return t, nil
	}
	content, generation, ok := t.versions.BeginRestore()
	if !ok {
		return t, nil
	}
	docID := t.versions.State().DocID
	return t, t.restoreVersion(docID, content, generation)
}

func (t *TUI) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(t.lastCtrlC) < time.Second {
		cmd := t.cleanup()
		return t, cmd
	}
	t.lastCtrlC = now

	switch t.state {
	case StateInput:
		t.input.Reset()
		return t, nil

	case StateThinking, StateStreaming:
		t.cancelStream()
		t.state = StateInput
		t.output.Reset()
		t.addMessage(Message{Role: roleSystem, Text: "(Canceled)"})
		return t, nil
	}

	return t, nil
}

func (t *TUI) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(t.input.Value())
	if query == "" {
		return t, nil
	}

	// Handle slash commands
	if strings.HasPrefix(query, "/") {
		return t.handleSlashCommand(query)
	}

	// Add to history (enforce maxHistory cap)
	t.history = append(t.history, query)
	if len(t.history) > maxHistory {
		// Remove oldest entries to stay within bounds
		t.history = t.history[len(t.history)-maxHistory:]
	}
	t.historyIdx = len(t.history)

	// Add user message
	t.addMessage(Message{Role: roleUser, Text: query})
	t.lastPrompt = query

	// Clear input
	t.input.Reset()

	// Start thinking
	t.state = StateThinking

	return t, tea.Batch(
		t.spinner.Tick,
		t.startStream(query),
	)
}

func (t *TUI) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case cmdHelp:
		t.addMessage(Message{
			Role: roleSystem,
			Text: "Commands: " + cmdHelp + ", " + cmdClear + ", " + cmdExit + "\nShortcuts:\n  Enter: send message\n  Shift+Enter: new line\n  Ctrl+C: cancel/clear\n  Ctrl+D: exit\n  Ctrl+O: toggle canvas panel\n  Ctrl+V: version history\n  Ctrl+P/Ctrl+N: older/newer version\n  Ctrl+X: diff against previous version\n  Ctrl+R: restore version\n  Up/Down: history\n  PgUp/PgDn: scroll",
		})
	case cmdClear:
		t.messages = nil
	case cmdExit, cmdQuit:
		cleanupCmd := t.cleanup()
		return t, cleanupCmd
	default:
		t.addMessage(Message{
			Role: roleError,
			Text: "Unknown command: " + cmd,
		})
	}
	t.input.Reset()
	t.rebuildViewportContent()
	return t, nil
}

func (t *TUI) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(t.history) == 0 {
		return t, nil
	}

	t.historyIdx += delta

	if t.historyIdx < 0 {
		t.historyIdx = 0
	}
	if t.historyIdx > len(t.history) {
		t.historyIdx = len(t.history)
	}

	if t.historyIdx == len(t.history) {
		t.input.SetValue("")
	} else {
		t.input.SetValue(t.history[t.historyIdx])
		// Move cursor to end of text
		t.input.CursorEnd()
	}

	return t, nil
}

func (t *TUI) cancelStream() {
	if t.streamCancel != nil {
		t.streamCancel()
		t.streamCancel = nil
	}
}

// cleanup cancels any active stream and returns the quit command.
func (t *TUI) cleanup() tea.Cmd {
	// Cancel main context first - this triggers all goroutines using t.ctx
	if t.ctxCancel != nil {
		t.ctxCancel()
		t.ctxCancel = nil
	}

	// Then cancel stream-specific context (may already be canceled via parent)
	t.cancelStream()
	t.streamEventCh = nil

	return tea.Quit
}
