package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type OnboardingSettings struct {
	Completed bool   `json:"completed"`
	Location  string `json:"location,omitempty"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	path := onboardingPath(configDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

// shouldRunOnboarding is true on a first interactive run, and again whenever
// no key can be found.
func shouldRunOnboarding(settings OnboardingSettings, haveKey bool) bool {
	if settings.Completed && haveKey {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepKey onboardingStep = iota
	stepLocation
	stepDone
)

type onboardingModel struct {
	step          onboardingStep
	existingKey   string
	keyInput      textinput.Model
	locationInput textinput.Model
	settings      OnboardingSettings
	capturedKey   string
	status        string
	width         int
	height        int
}

var (
	obColorMuted  = lipgloss.Color("#8C7F76")
	obColorText   = lipgloss.Color("#E8DDD3")
	obColorAccent = lipgloss.Color("#E0915A")
	obColorDanger = lipgloss.Color("#f38ba8")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabInactive = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 2)

	obTabActive = lipgloss.NewStyle().
			Foreground(obColorText).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingInput(placeholder, prompt string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = prompt
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	return in
}

func newOnboardingModel(existingKey, existingLocation string) onboardingModel {
	keyInput := newOnboardingInput("Paste YELP API key here", "api> ", 300)
	locationInput := newOnboardingInput("e.g. Mission District, San Francisco", "near> ", 200)
	locationInput.SetValue(strings.TrimSpace(existingLocation))

	m := onboardingModel{
		step:          stepKey,
		existingKey:   strings.TrimSpace(existingKey),
		keyInput:      keyInput,
		locationInput: locationInput,
		settings: OnboardingSettings{
			Completed: true,
			Location:  strings.TrimSpace(existingLocation),
		},
	}
	if m.existingKey != "" {
		m.step = stepLocation
		m.locationInput.Focus()
	} else {
		m.keyInput.Focus()
	}
	return m
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.settings.Completed = false
			m.status = "Setup canceled."
			m.step = stepDone
			return m, tea.Quit
		}

		switch m.step {
		case stepKey:
			switch msg.String() {
			case "enter":
				key := strings.TrimSpace(m.keyInput.Value())
				if key == "" {
					m.status = "nosh needs a YELP API key to search."
					return m, nil
				}
				m.capturedKey = key
				m.status = ""
				m.step = stepLocation
				m.keyInput.Blur()
				m.locationInput.Focus()
				return m, textinput.Blink
			case "esc":
				m.settings.Completed = false
				m.status = "Skipped key setup. Pass -yelp-key or set YELP_API_KEY."
				m.step = stepDone
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.keyInput, cmd = m.keyInput.Update(msg)
			return m, cmd
		case stepLocation:
			switch msg.String() {
			case "enter":
				m.settings.Location = strings.TrimSpace(m.locationInput.Value())
				m.status = "All set."
				if m.settings.Location == "" {
					m.status = "No home location saved. Pass -location to set one."
				}
				m.step = stepDone
				return m, tea.Quit
			case "esc":
				m.status = "Skipped location. Pass -location to set one."
				m.step = stepDone
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.locationInput, cmd = m.locationInput.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	tabs := m.renderTabs(width)
	footer := m.renderFooter(width)

	contentHeight := max(height-6, 8)
	content := m.renderContent(width, contentHeight)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, footer)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("nosh") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	keyTab := obTabInactive.Render("YELP API Key")
	locationTab := obTabInactive.Render("Home Location")
	switch m.step {
	case stepKey:
		keyTab = obTabActive.Render("YELP API Key")
	case stepLocation:
		locationTab = obTabActive.Render("Home Location")
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, "  ", keyTab, locationTab))
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepKey:
		return obFooterStyle.Width(width).Render("enter next  esc skip  ctrl+c cancel")
	case stepLocation:
		return obFooterStyle.Width(width).Render("enter save  esc skip  ctrl+c cancel")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepKey:
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.keyInput.View())
		lines := []string{
			obLabelStyle.Render("Get a YELP API key:"),
			"",
			obMutedStyle.Render("1) https://www.yelp.com/developers/v3/manage_app"),
			obMutedStyle.Render("2) Create an app"),
			obMutedStyle.Render("3) Copy API key"),
			"",
			obLabelStyle.Render("YELP API Key"),
			input,
			"",
			obMutedStyle.Render("Stored in your OS keychain when one is available."),
		}
		if m.status != "" {
			lines = append(lines, obWarnStyle.Render(m.status))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	case stepLocation:
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.locationInput.View())
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			obLabelStyle.Render("Where should the Home feed look?"),
			"",
			obMutedStyle.Render("A neighborhood, address, or city. Override any run with -location."),
			"",
			obLabelStyle.Render("Home Location"),
			input,
			"",
			obMutedStyle.Render("Saved to ~/.nosh/onboarding.json"),
		)
	default:
		msg := obMutedStyle.Render(m.status)
		if !m.settings.Completed {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg)
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir, existingKey, existingLocation string) (OnboardingSettings, error) {
	model := newOnboardingModel(existingKey, existingLocation)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	return finishOnboarding(configDir, m)
}

func finishOnboarding(configDir string, m onboardingModel) (OnboardingSettings, error) {
	if strings.TrimSpace(m.capturedKey) != "" {
		if err := saveSecureYelpAPIKey(configDir, m.capturedKey); err != nil {
			return OnboardingSettings{}, fmt.Errorf("failed to save Yelp API key: %w", err)
		}
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, fmt.Errorf("failed to save onboarding settings: %w", err)
	}
	return m.settings, nil
}
