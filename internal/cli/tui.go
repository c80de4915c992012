package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/icoforge/icoforge/pkg/convert"
)

// =============================================================================
// ConvertModel - Live batch conversion progress
// =============================================================================

// convertResultMsg carries one finished file into the model.
type convertResultMsg struct {
	res convert.FileResult
}

// convertDoneMsg signals that the batch run finished.
type convertDoneMsg struct{}

// maxRecent is how many finished files stay visible under the bar.
const maxRecent = 8

// ConvertModel is the bubbletea model for the --interactive progress view.
type ConvertModel struct {
	Total int

	done      int
	converted int
	cached    int
	skipped   int
	failed    int
	recent    []convert.FileResult
	finished  bool
	width     int
}

// newConvertModel creates a progress model for a batch of total files.
func newConvertModel(total int) ConvertModel {
	return ConvertModel{Total: total, width: 80}
}

func (m ConvertModel) Init() tea.Cmd {
	return nil
}

func (m ConvertModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case convertResultMsg:
		m.done++
		switch msg.res.Status {
		case convert.StatusConverted:
			m.converted++
		case convert.StatusCached:
			m.cached++
		case convert.StatusSkipped:
			m.skipped++
		case convert.StatusFailed:
			m.failed++
		}
		m.recent = append(m.recent, msg.res)
		if len(m.recent) > maxRecent {
			m.recent = m.recent[len(m.recent)-maxRecent:]
		}

	case convertDoneMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConvertModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Converting icons"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.bar())
	b.WriteString(fmt.Sprintf(" %d/%d", m.done, m.Total))
	b.WriteString("\n\n")

	for _, r := range m.recent {
		b.WriteString("  ")
		b.WriteString(statusIcon(r.Status))
		b.WriteString(" ")
		b.WriteString(StyleValue.Render(filepath.Base(r.Source)))
		if r.Err != nil {
			b.WriteString(" " + StyleDim.Render(r.Err.Error()))
		}
		b.WriteString("\n")
	}

	if m.finished {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d converted · %d cached · %d skipped · %d failed",
			m.converted, m.cached, m.skipped, m.failed)))
		b.WriteString("\n")
	}

	return b.String()
}

// bar renders a fixed-width progress bar.
func (m ConvertModel) bar() string {
	const width = 30
	filled := 0
	if m.Total > 0 {
		filled = m.done * width / m.Total
	}
	if filled > width {
		filled = width
	}
	return StyleSuccess.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", width-filled))
}

// statusIcon maps a conversion outcome to a styled glyph.
func statusIcon(s convert.Status) string {
	switch s {
	case convert.StatusConverted:
		return styleIconSuccess.Render(iconSuccess)
	case convert.StatusCached:
		return styleIconInfo.Render(iconInfo)
	case convert.StatusSkipped:
		return styleIconWarning.Render(iconWarning)
	case convert.StatusFailed:
		return styleIconError.Render(iconError)
	}
	return " "
}
