package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nosh/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		switch screen {
		case model.ScreenSearch:
			return renderSearchFormHelp(width)
		case model.ScreenPreferences:
			return renderPreferencesFormHelp(width)
		default:
			return renderFormHelp(width)
		}
	}

	switch screen {
	case model.ScreenHome:
		return renderResultsHelp(width, false)
	case model.ScreenSearch:
		return renderResultsHelp(width, true)
	case model.ScreenFavorites:
		return renderFavoritesHelp(width)
	case model.ScreenPreferences:
		return renderHelpLine([]string{
			helpKey("e", "edit"),
			helpKey("←/→", "tabs"),
			helpKey("u/ctrl+r", "undo/redo"),
			helpKey("?", "help"),
			helpKey("q", "quit"),
		}, width)
	case model.ScreenBusinessDetail:
		return renderHelpLine([]string{
			helpKey("h/esc", "back"),
			helpKey("f", "save"),
			helpKey("e", "notes"),
			helpKey("d", "remove"),
		}, width)
	default:
		return renderHelpLine([]string{
			helpKey("j/k", "navigate"),
			helpKey("q", "quit"),
		}, width)
	}
}

func renderResultsHelp(width int, search bool) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "details"),
		helpKey("f", "favorite"),
		helpKey("]/[", "page"),
		helpKey("r", "refresh"),
	}
	if search {
		keys = append(keys, helpKey("/", "new search"))
	}
	keys = append(keys, helpKey("←/→", "tabs"), helpKey("?", "help"))
	return renderHelpLine(keys, width)
}

func renderFavoritesHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("s/S", "sort"),
		helpKey("c/C", "hide/show col"),
		helpKey("n/N", "filter"),
		helpKey("e", "notes"),
		helpKey("d", "remove"),
		helpKey("u/ctrl+r", "undo/redo"),
	}
	return renderHelpLine(keys, width)
}

func renderSearchFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("enter", "search"),
		helpKey("j/k", "pick recent"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderPreferencesFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("space", "toggle"),
		helpKey("←/→", "sort"),
		helpKey("ctrl+s", "save"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("ctrl+s", "save"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"← / →", "Previous / next tab"},
			{"l / enter", "Open details"},
			{"h / b / esc", "Back"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"u / ctrl+r", "Undo / redo"},
			{"q", "Quit (from a tab)"},
			{"?", "Toggle help"},
		}),
		titleSection("Home & Search"),
		helpSection([]helpItem{
			{"] / [", "Next / previous page of matches"},
			{"f", "Save to favorites"},
			{"r", "Refetch from Yelp"},
			{"/", "Edit the search (Search tab)"},
		}),
		titleSection("Favorites"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Cycle active column"},
			{"/ then 1-9", "Jump to column"},
			{"s / S", "Sort active column asc/desc"},
			{"c / C", "Hide active column / show all"},
			{"n / N", "Filter by selected value / clear"},
			{"e", "Edit notes"},
			{"d", "Remove favorite"},
		}),
		titleSection("Preferences"),
		helpSection([]helpItem{
			{"e", "Edit preferences"},
			{"tab", "Next field"},
			{"space", "Toggle dietary restriction"},
			{"← / →", "Cycle sort"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
