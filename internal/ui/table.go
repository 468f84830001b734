package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

const tableSeparator = " "

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return ActiveHeaderStyle.Render(label)
}

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).MaxWidth(widths[i]).Render(cell))
	}
	sep := style.Width(tableSeparatorWidth()).Render(tableSeparator)
	return strings.Join(parts, sep)
}

func renderTableDivider(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return DividerStyle.Render(strings.Join(parts, tableSeparator))
}

// listCursor tracks the selected row and scroll offset of a list.
type listCursor struct {
	cursor         int
	offset         int
	viewportHeight int
}

func (c *listCursor) viewport() int {
	if c.viewportHeight <= 0 {
		return 10
	}
	return c.viewportHeight
}

func (c *listCursor) clamp(n int) {
	if n == 0 {
		c.cursor = 0
		c.offset = 0
		return
	}
	if c.cursor >= n {
		c.cursor = n - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
	if c.offset > c.cursor {
		c.offset = c.cursor
	}
	if vh := c.viewport(); c.cursor >= c.offset+vh {
		c.offset = c.cursor - vh + 1
	}
}

func (c *listCursor) move(delta, n int) {
	c.cursor += delta
	c.clamp(n)
}

func (c *listCursor) top() {
	c.cursor = 0
	c.offset = 0
}

func (c *listCursor) bottom(n int) {
	c.cursor = n - 1
	c.clamp(n)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}

func renderStatusLine(status string, content string, height int) string {
	line := StatusBarStyle.Render(status)
	spacer := lipgloss.NewStyle().
		Height(max(0, height-lipgloss.Height(content)-lipgloss.Height(line))).
		Render("")
	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, line)
}
