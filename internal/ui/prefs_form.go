package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nosh/internal/feed"
	"nosh/internal/match"
	"nosh/internal/model"
	"nosh/internal/util"
)

const (
	prefsFieldPrice = iota
	prefsFieldRating
	prefsFieldDistance
	prefsFieldCuisines
	prefsFieldDietary
	prefsFieldSort
	prefsFieldCount
)

// PreferencesFormModel edits the matching preferences.
type PreferencesFormModel struct {
	feed         *feed.Service
	keys         FormKeyMap
	inputs       []textinput.Model
	dietary      map[match.DietaryRestriction]bool
	dietCursor   int
	sortIndex    int
	focusedField int
}

// NewPreferencesFormModel creates a form filled from p.
func NewPreferencesFormModel(svc *feed.Service, p match.Preferences) *PreferencesFormModel {
	inputs := make([]textinput.Model, prefsFieldDietary)

	inputs[prefsFieldPrice] = textinput.New()
	inputs[prefsFieldPrice].Placeholder = "$, $$, $$$, $$$$ or empty for any"
	inputs[prefsFieldPrice].CharLimit = 4
	inputs[prefsFieldPrice].SetValue(p.PriceCeiling.String())
	inputs[prefsFieldPrice].Focus()

	inputs[prefsFieldRating] = textinput.New()
	inputs[prefsFieldRating].Placeholder = "0-5 (decimals ok)"
	inputs[prefsFieldRating].CharLimit = 4
	if p.MinimumRating > 0 {
		inputs[prefsFieldRating].SetValue(fmt.Sprintf("%g", p.MinimumRating))
	}

	inputs[prefsFieldDistance] = textinput.New()
	inputs[prefsFieldDistance].Placeholder = "km, empty for no limit"
	inputs[prefsFieldDistance].CharLimit = 8
	inputs[prefsFieldDistance].SetValue(util.FormatDistanceKm(p.MaxDistanceMeters))

	inputs[prefsFieldCuisines] = textinput.New()
	inputs[prefsFieldCuisines].Placeholder = "thai, italian:0.5"
	inputs[prefsFieldCuisines].CharLimit = 300
	inputs[prefsFieldCuisines].SetValue(util.FormatCuisines(p.Cuisines))

	dietary := make(map[match.DietaryRestriction]bool, len(p.DietaryRestrictions))
	for _, r := range p.DietaryRestrictions {
		dietary[r] = true
	}

	sortIndex := 0
	for i, s := range match.AllSortPreferences {
		if s == p.Sort {
			sortIndex = i
		}
	}

	return &PreferencesFormModel{
		feed:      svc,
		keys:      DefaultFormKeyMap(),
		inputs:    inputs,
		dietary:   dietary,
		sortIndex: sortIndex,
	}
}

// Update handles input.
func (m PreferencesFormModel) Update(msg tea.KeyMsg) (PreferencesFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focusedField + 1) % prefsFieldCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.setFocus((m.focusedField + prefsFieldCount - 1) % prefsFieldCount)
		return m, nil
	}

	switch m.focusedField {
	case prefsFieldDietary:
		n := len(match.AllDietaryRestrictions)
		switch {
		case key.Matches(msg, m.keys.Toggle), msg.String() == "enter":
			r := match.AllDietaryRestrictions[m.dietCursor]
			m.dietary[r] = !m.dietary[r]
		case msg.String() == "j", msg.String() == "down", msg.String() == "right":
			m.dietCursor = (m.dietCursor + 1) % n
		case msg.String() == "k", msg.String() == "up", msg.String() == "left":
			m.dietCursor = (m.dietCursor + n - 1) % n
		}
		return m, nil
	case prefsFieldSort:
		switch msg.String() {
		case "right", "l", " ", "enter":
			m.sortIndex = (m.sortIndex + 1) % len(match.AllSortPreferences)
		case "left", "h":
			m.sortIndex = (m.sortIndex + len(match.AllSortPreferences) - 1) % len(match.AllSortPreferences)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return m, cmd
}

func (m *PreferencesFormModel) setFocus(field int) {
	if m.focusedField < len(m.inputs) {
		m.inputs[m.focusedField].Blur()
	}
	m.focusedField = field
	if m.focusedField < len(m.inputs) {
		m.inputs[m.focusedField].Focus()
	}
}

// Preferences parses the form into preferences.
func (m PreferencesFormModel) Preferences() (match.Preferences, error) {
	p := match.Preferences{
		DietaryRestrictions: []match.DietaryRestriction{},
		Sort:                match.AllSortPreferences[m.sortIndex],
	}

	price := strings.TrimSpace(m.inputs[prefsFieldPrice].Value())
	if price != "" && !strings.EqualFold(price, "any") {
		p.PriceCeiling = match.ParsePriceTier(price)
		if !p.PriceCeiling.Known() {
			return match.Preferences{}, fmt.Errorf("price ceiling must be $, $$, $$$, or $$$$")
		}
	}

	rating, err := util.ParseMinimumRating(m.inputs[prefsFieldRating].Value())
	if err != nil {
		return match.Preferences{}, err
	}
	p.MinimumRating = rating

	distance, err := util.ParseDistanceKm(m.inputs[prefsFieldDistance].Value())
	if err != nil {
		return match.Preferences{}, err
	}
	p.MaxDistanceMeters = distance

	cuisines, err := util.ParseCuisines(m.inputs[prefsFieldCuisines].Value())
	if err != nil {
		return match.Preferences{}, err
	}
	p.Cuisines = cuisines

	for _, r := range match.AllDietaryRestrictions {
		if m.dietary[r] {
			p.DietaryRestrictions = append(p.DietaryRestrictions, r)
		}
	}
	return p, nil
}

func (m PreferencesFormModel) save() tea.Cmd {
	return func() tea.Msg {
		after, err := m.Preferences()
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		before := m.feed.Preferences()
		if err := m.feed.UpdatePreferences(after); err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.PreferencesSavedMsg{Before: before, After: after}
	}
}

// View renders the form.
func (m *PreferencesFormModel) View(width, height int) string {
	fields := []string{
		renderFormField("Price ceiling", m.inputs[prefsFieldPrice], m.focusedField == prefsFieldPrice),
		renderFormField("Minimum rating", m.inputs[prefsFieldRating], m.focusedField == prefsFieldRating),
		renderFormField("Max distance (km)", m.inputs[prefsFieldDistance], m.focusedField == prefsFieldDistance),
		renderFormField("Cuisines", m.inputs[prefsFieldCuisines], m.focusedField == prefsFieldCuisines),
		m.renderDietary(),
		m.renderSort(),
	}

	return PanelStyle.
		Width(width - 4).
		Height(height - 4).
		Render(strings.Join(fields, "\n"))
}

func (m *PreferencesFormModel) renderDietary() string {
	focused := m.focusedField == prefsFieldDietary
	var opts []string
	for i, r := range match.AllDietaryRestrictions {
		box := "[ ]"
		if m.dietary[r] {
			box = "[x]"
		}
		label := box + " " + string(r)
		if focused && i == m.dietCursor {
			opts = append(opts, SelectedRowStyle.Render(label))
		} else {
			opts = append(opts, NormalRowStyle.Render(label))
		}
	}

	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}
	return style.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render("Dietary (space to toggle)"),
		strings.Join(opts, "  "),
	))
}

func (m *PreferencesFormModel) renderSort() string {
	focused := m.focusedField == prefsFieldSort
	var opts []string
	for i, s := range match.AllSortPreferences {
		label := util.SortLabel(s)
		if i == m.sortIndex {
			opts = append(opts, BreadcrumbActiveStyle.Render("‹ "+label+" ›"))
		} else {
			opts = append(opts, HelpDescStyle.Render(label))
		}
	}

	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}
	return style.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render("Sort (←/→)"),
		strings.Join(opts, "  "),
	))
}

// renderPreferencesSummary is the read-only Preferences tab.
func renderPreferencesSummary(p match.Preferences, width, height int) string {
	dietary := make([]string, 0, len(p.DietaryRestrictions))
	for _, r := range p.DietaryRestrictions {
		dietary = append(dietary, string(r))
	}
	distance := "Any"
	if p.MaxDistanceMeters != nil {
		distance = util.FormatDistance(p.MaxDistanceMeters)
	}
	rating := "Any"
	if p.MinimumRating > 0 {
		rating = util.FormatRating(p.MinimumRating) + " and up"
	}

	fields := []string{
		renderField("Price", util.FormatPriceCeiling(p.PriceCeiling)),
		renderField("Minimum rating", rating),
		renderField("Max distance", distance),
		renderField("Cuisines", util.FormatCuisines(p.Cuisines)),
		renderField("Dietary", strings.Join(dietary, ", ")),
		renderField("Sort", util.SortLabel(p.Sort)),
		"",
		HelpDescStyle.Render("Press 'e' to edit. Dietary, price, rating and distance are hard filters;"),
		HelpDescStyle.Render("cuisines only raise the match score."),
	}

	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(strings.Join(fields, "\n"))
}
