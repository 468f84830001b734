package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nosh/internal/model"
	"nosh/internal/util"
)

const (
	searchFieldTerm = iota
	searchFieldLocation
	searchFieldRecent
	searchFieldCount
)

const maxRecentShown = 5

// SearchFormModel is the term and location form on the Search tab.
type SearchFormModel struct {
	keys         FormKeyMap
	inputs       []textinput.Model
	recent       []model.RecentSearch
	recentCursor int
	focusedField int
	focused      bool
}

// NewSearchFormModel creates a blurred search form. defaultLocation is shown
// as the location placeholder.
func NewSearchFormModel(defaultLocation string) *SearchFormModel {
	inputs := make([]textinput.Model, 2)

	inputs[searchFieldTerm] = textinput.New()
	inputs[searchFieldTerm].Placeholder = "ramen, tacos, brunch…"
	inputs[searchFieldTerm].CharLimit = 80
	inputs[searchFieldTerm].Prompt = "what> "

	inputs[searchFieldLocation] = textinput.New()
	inputs[searchFieldLocation].Placeholder = "near the home location"
	if strings.TrimSpace(defaultLocation) != "" {
		inputs[searchFieldLocation].Placeholder = defaultLocation
	}
	inputs[searchFieldLocation].CharLimit = 120
	inputs[searchFieldLocation].Prompt = "where> "

	return &SearchFormModel{
		keys:   DefaultFormKeyMap(),
		inputs: inputs,
	}
}

// SetRecent replaces the recent search list.
func (m *SearchFormModel) SetRecent(recent []model.RecentSearch) {
	m.recent = recent
	if m.recentCursor >= len(m.recent) {
		m.recentCursor = 0
	}
}

// Focus puts the cursor in the term input.
func (m *SearchFormModel) Focus() {
	m.focused = true
	m.setFocus(searchFieldTerm)
}

// Blur leaves the form without clearing it.
func (m *SearchFormModel) Blur() {
	m.focused = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *SearchFormModel) setFocus(field int) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if field == searchFieldRecent && len(m.recent) == 0 {
		field = searchFieldTerm
	}
	m.focusedField = field
	if field < len(m.inputs) {
		m.inputs[field].Focus()
	}
}

// Update handles input.
func (m SearchFormModel) Update(msg tea.KeyMsg) (SearchFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focusedField + 1) % searchFieldCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		next := (m.focusedField + searchFieldCount - 1) % searchFieldCount
		if next == searchFieldRecent && len(m.recent) == 0 {
			next = searchFieldLocation
		}
		m.setFocus(next)
		return m, nil
	case msg.String() == "enter", key.Matches(msg, m.keys.Save):
		return m, m.submit()
	}

	if m.focusedField == searchFieldRecent {
		switch msg.String() {
		case "j", "down":
			if m.recentCursor < min(len(m.recent), maxRecentShown)-1 {
				m.recentCursor++
			}
		case "k", "up":
			if m.recentCursor > 0 {
				m.recentCursor--
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return m, cmd
}

func (m SearchFormModel) submit() tea.Cmd {
	term := strings.TrimSpace(m.inputs[searchFieldTerm].Value())
	location := strings.TrimSpace(m.inputs[searchFieldLocation].Value())
	if m.focusedField == searchFieldRecent && m.recentCursor < len(m.recent) {
		r := m.recent[m.recentCursor]
		term, location = r.Term, r.Location
	}
	return func() tea.Msg {
		return model.SearchSubmittedMsg{Term: term, Location: location}
	}
}

// View renders the form and the recent searches beside it.
func (m *SearchFormModel) View(width int) string {
	inputWidth := max(20, width/2-8)
	for i := range m.inputs {
		m.inputs[i].Width = inputWidth - 8
	}

	form := lipgloss.JoinVertical(
		lipgloss.Left,
		renderFormField("Search", m.inputs[searchFieldTerm], m.focused && m.focusedField == searchFieldTerm),
		renderFormField("Location", m.inputs[searchFieldLocation], m.focused && m.focusedField == searchFieldLocation),
	)

	lines := []string{LabelStyle.Render("Recent")}
	if len(m.recent) == 0 {
		lines = append(lines, HelpDescStyle.Render("No searches yet."))
	}
	for i, r := range m.recent {
		if i >= maxRecentShown {
			break
		}
		label := util.TruncateString(r.Label(), max(10, width/2-10))
		if m.focused && m.focusedField == searchFieldRecent && i == m.recentCursor {
			lines = append(lines, SelectedRowStyle.Render(label))
		} else {
			lines = append(lines, NormalRowStyle.Render(label))
		}
	}
	if !m.focused {
		lines = append(lines, "", HelpDescStyle.Render("Press / to search"))
	}

	style := BorderStyle
	if m.focused && m.focusedField == searchFieldRecent {
		style = ActiveBorderStyle
	}
	recent := style.Width(max(20, width/2-8)).Render(strings.Join(lines, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, form, "  ", recent)
}
