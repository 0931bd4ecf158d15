package ui

import (
	"fmt"
	"strings"

	"github.com/Alb-O/frz/internal/extension"
)

// chromeLines is the number of non-result lines the layout uses.
const chromeLines = 6

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderTabs())
	sections = append(sections, m.input.View())
	sections = append(sections, m.renderDivider())
	sections = append(sections, m.renderRows())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m *Model) renderHeader() string {
	title := "frz"
	if desc := m.activeDescriptor(); desc != nil && desc.UI.ModeTitle != "" {
		title = desc.UI.ModeTitle
	}
	header := m.styles.Header.Render(title)
	if m.data.ContextLabel != "" {
		header += m.styles.Dim.Render("  " + m.data.ContextLabel)
	}
	return header
}

func (m *Model) renderTabs() string {
	var tabs []string
	for i, mode := range m.modes {
		label := mode.ID()
		if module, ok := m.catalog.ModuleFor(mode); ok {
			if l := module.Descriptor().UI.TabLabel; l != "" {
				label = l
			}
		}
		if i == m.active {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}
	return strings.Join(tabs, m.styles.Dim.Render(" | "))
}

func (m *Model) renderDivider() string {
	width := m.width
	if width < 10 {
		width = 10
	}
	return m.styles.Border.Render(strings.Repeat("─", width))
}

func (m *Model) renderRows() string {
	batch := m.activeResults().batch
	visible := m.height - chromeLines
	if visible < 1 {
		visible = 1
	}

	if len(batch.IDs) == 0 {
		return m.styles.Dim.Render("  no matches")
	}

	// Scroll the window so the cursor stays visible.
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(batch.IDs) {
		end = len(batch.IDs)
	}

	mode := m.activeMode()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := m.renderRow(mode, batch.IDs[i])
		if i == m.cursor {
			lines = append(lines, m.styles.RowSelected.Render("> ")+line)
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(mode extension.Mode, id uint64) string {
	index, ok := m.currentIndex(mode, id)
	if !ok {
		// The row vanished in a merge after the batch was produced.
		return m.styles.Dim.Render("…")
	}

	if desc := m.activeDescriptor(); desc != nil && desc.Kind == extension.KindAttribute {
		row := m.data.Attributes[index]
		return fmt.Sprintf("%s %s", row.Name, m.styles.Count.Render(fmt.Sprintf("(%d)", row.Count)))
	}

	row := m.data.Files[index]
	line := row.Path
	if icon, ok := m.contributions.Icons.Resolve(mode.ID()); ok {
		sel := extension.Selection{Mode: mode, File: &row, Index: index}
		if glyph := icon.Icon(sel); glyph != "" {
			line = glyph + " " + line
		}
	}
	if row.DisplayTags != "" {
		line += "  " + m.styles.Tag.Render(row.DisplayTags)
	}
	return line
}

func (m *Model) renderFooter() string {
	batch := m.activeResults().batch

	countLabel := "results"
	if desc := m.activeDescriptor(); desc != nil && desc.UI.CountLabel != "" {
		countLabel = desc.UI.CountLabel
	}

	total := len(m.data.Files)
	if desc := m.activeDescriptor(); desc != nil && desc.Kind == extension.KindAttribute {
		total = len(m.data.Attributes)
	}

	parts := []string{
		m.styles.Count.Render(fmt.Sprintf("%d/%d %s", len(batch.IDs), total, countLabel)),
	}
	if !m.data.Progress.Complete {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("indexing… %d files", m.data.Progress.IndexedFiles)))
	}
	if hint := m.activeHint(); hint != "" {
		parts = append(parts, m.styles.Dim.Render(hint))
	}

	return strings.Join(parts, m.styles.Dim.Render("  •  "))
}

func (m *Model) activeDescriptor() *extension.Descriptor {
	module, ok := m.catalog.ModuleFor(m.activeMode())
	if !ok {
		return nil
	}
	return module.Descriptor()
}

func (m *Model) activeHint() string {
	if desc := m.activeDescriptor(); desc != nil {
		return desc.UI.Hint
	}
	return ""
}
