package tui

import (
	"fmt"
	"strings"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/canvas"
	"github.com/koopa0/canvas/internal/diff"
)

// renderPanel draws the canvas side panel: header with title and kind,
// document body, and a version bar when history is open. width and height
// are the full column budget including the border.
func (t *TUI) renderPanel(width, height int) string {
	vs := t.engine.Visible()

	innerWidth := width - 2 // Border columns
	innerHeight := height - 2
	if innerWidth < 10 || innerHeight < 4 {
		return ""
	}

	var b strings.Builder

	_, _ = b.WriteString(t.renderPanelHeader(vs, innerWidth))
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(t.styles.PanelDivider.Render(strings.Repeat("─", innerWidth)))
	_, _ = b.WriteString("\n")

	// Header and divider consume two lines; a version bar one more.
	bodyHeight := innerHeight - 2
	if t.historyOpen() {
		bodyHeight--
	}

	_, _ = b.WriteString(clampLines(t.renderPanelBody(vs), bodyHeight))

	if t.historyOpen() {
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(t.renderVersionBar(innerWidth))
	}

	return t.styles.PanelBorder.Width(innerWidth).Height(innerHeight).Render(b.String())
}

// renderPanelHeader shows the document title, kind badge, and a streaming
// indicator while generation is in flight.
func (t *TUI) renderPanelHeader(vs canvas.VisibleState, width int) string {
	title := vs.Title
	if title == "" {
		title = vs.DocumentID
	}

	badge := string(vs.Kind)
	if vs.Kind == artifact.KindCode && vs.Language != "" {
		badge = vs.Language
	}

	header := t.styles.PanelTitle.Render(truncate(title, max(width-len(badge)-4, 8)))
	meta := t.styles.PanelMeta.Render(badge)
	if vs.Status == artifact.StatusStreaming {
		meta = t.spinner.View() + " " + meta
	}

	return header + " " + meta
}

// renderPanelBody renders document content for the panel's current mode:
// the live document, a historical version, or a word diff.
func (t *TUI) renderPanelBody(vs canvas.VisibleState) string {
	if !t.historyOpen() {
		return t.renderContent(vs.Content, vs.Kind)
	}

	switch t.versions.Phase() {
	case canvas.PhaseLoading:
		return t.spinner.View() + " Loading versions..."

	case canvas.PhaseError:
		state := t.versions.State()
		return t.styles.Error.Render("Version history failed: "+state.Err.Error()) +
			"\n" + t.styles.System.Render("Ctrl+V to close and retry.")

	case canvas.PhaseHistoricalDiff:
		current, ok := t.versions.Current()
		baseline, okBase := t.versions.Baseline()
		if !ok || !okBase {
			return ""
		}
		return t.renderDiff(baseline.Content, current.Content)

	default: // PhaseLatest, PhaseHistoricalView
		if v, ok := t.versions.Current(); ok {
			return t.renderContent(v.Content, vs.Kind)
		}
		return t.renderContent(vs.Content, vs.Kind)
	}
}

// renderContent styles document content by kind. Markdown goes through
// glamour; everything else is shown verbatim.
func (t *TUI) renderContent(content string, kind artifact.Kind) string {
	if kind == artifact.KindMarkdown {
		return t.panelMarkdown.Render(content)
	}
	return content
}

// renderDiff renders word-level changes between two snapshots: insertions
// green, deletions red with strikethrough, unchanged text plain. Segments
// spanning multiple lines are styled line by line so escape sequences
// never straddle a line break.
func (t *TUI) renderDiff(oldText, newText string) string {
	var b strings.Builder
	for _, seg := range diff.Words(oldText, newText) {
		style := func(s string) string { return s }
		switch {
		case seg.Added:
			style = func(s string) string { return t.styles.DiffInsert.Render(s) }
		case seg.Removed:
			style = func(s string) string { return t.styles.DiffDelete.Render(s) }
		}
		for i, line := range diff.SplitLines(seg.Text) {
			if i > 0 {
				_ = b.WriteByte('\n')
			}
			if line != "" {
				_, _ = b.WriteString(style(line))
			}
		}
		if strings.HasSuffix(seg.Text, "\n") {
			_ = b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderVersionBar shows the cursor position and the shortcuts that apply
// from the current state.
func (t *TUI) renderVersionBar(width int) string {
	state := t.versions.State()
	if len(state.Versions) == 0 {
		return t.styles.VersionBar.Render("No versions yet")
	}

	position := fmt.Sprintf("Version %d/%d", state.Cursor+1, len(state.Versions))

	var hints []string
	switch t.versions.Phase() {
	case canvas.PhaseLatest:
		position += " (latest)"
		hints = append(hints, "ctrl+p older")
	case canvas.PhaseHistoricalView:
		hints = append(hints, "ctrl+p/n navigate", "ctrl+x diff", "ctrl+r restore", "esc latest")
	case canvas.PhaseHistoricalDiff:
		hints = append(hints, "ctrl+x view", "ctrl+r restore", "esc latest")
	case canvas.PhaseLoading:
		hints = append(hints, "working...")
	}

	bar := position
	if len(hints) > 0 {
		bar += " · " + strings.Join(hints, " · ")
	}
	return t.styles.VersionBar.Render(truncate(bar, width))
}

// clampLines cuts text to at most maxLines lines, marking the cut.
func clampLines(text string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	clipped := lines[:maxLines-1]
	return strings.Join(clipped, "\n") + "\n…"
}

// truncate cuts a single line to at most width runes.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
