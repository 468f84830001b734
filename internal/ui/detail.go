package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nosh/internal/match"
	"nosh/internal/model"
	"nosh/internal/util"
)

const (
	photoWidth  = 40
	photoHeight = 16
)

// BusinessDetailModel shows one business.
type BusinessDetailModel struct {
	business  match.Business
	score     *float64
	breakdown *match.Breakdown
	favorite  *model.Favorite
	fromSaved bool
	photo     string
}

// NewBusinessDetailModel creates a detail view from a loaded business.
func NewBusinessDetailModel(msg model.BusinessDetailLoadedMsg) *BusinessDetailModel {
	return &BusinessDetailModel{
		business:  msg.Business,
		score:     msg.Score,
		breakdown: msg.Breakdown,
		favorite:  msg.Favorite,
		fromSaved: msg.FromSaved,
	}
}

// SetPhoto stores the rendered photo.
func (m *BusinessDetailModel) SetPhoto(photo string) {
	m.photo = photo
}

// SetFavorite updates the saved snapshot after a save, delete or notes edit.
func (m *BusinessDetailModel) SetFavorite(f *model.Favorite) {
	m.favorite = f
}

// View renders the detail panel.
func (m *BusinessDetailModel) View(width, height int) string {
	b := m.business

	shortcuts := "f save  h back"
	if m.favorite != nil {
		shortcuts = "e notes  d remove  h back"
	}
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(HelpDescStyle.Render(shortcuts))

	var fields []string
	name := b.Name
	if m.favorite != nil {
		name = "★ " + name
	}
	fields = append(fields, renderField("Name", name))
	rating := ""
	if b.Rating > 0 {
		rating = RatingStyle.Render(util.FormatRatingStars(b.Rating)) + " " +
			NormalRowStyle.Render(fmt.Sprintf("%s  (%s)", util.FormatRating(b.Rating), util.FormatReviewCount(b.ReviewCount)))
	}
	fields = append(fields, LabelStyle.Render("Rating:")+" "+orDash(rating))
	fields = append(fields, renderField("Price", util.FormatPrice(b.Price)))
	fields = append(fields, renderField("Cuisine", strings.Join(b.Categories, ", ")))
	if !m.fromSaved {
		open := ClosedStyle.Render(util.FormatOpen(false))
		if b.IsOpen {
			open = OpenStyle.Render(util.FormatOpen(true))
		}
		fields = append(fields, LabelStyle.Render("Now:")+" "+open)
		fields = append(fields, renderField("Distance", util.FormatDistance(b.DistanceMeters)))
	}
	fields = append(fields, renderField("Address", b.Address))
	fields = append(fields, renderField("Phone", b.Phone))
	fields = append(fields, renderField("Yelp", b.URL))

	sections := []string{strings.Join(fields, "\n")}

	if m.score != nil && m.breakdown != nil {
		bd := m.breakdown
		sections = append(sections, LabelStyle.Render("Match:")+" "+NormalRowStyle.Render(fmt.Sprintf(
			"%s / 100   rating %.1f · distance %.1f · price %.1f · cuisine %.1f",
			util.FormatScore(*m.score), bd.Rating, bd.Distance, bd.Price, bd.Cuisine,
		)))
	}

	if m.favorite != nil {
		notes := strings.TrimSpace(m.favorite.Notes)
		if notes == "" {
			notes = HelpDescStyle.Render("No notes. Press 'e' to add some.")
		}
		sections = append(sections,
			LabelStyle.Render("Saved")+" "+HelpDescStyle.Render(util.FormatSaved(m.favorite.CreatedAt)),
			notes,
		)
	}

	if m.fromSaved {
		sections = append(sections, HelpDescStyle.Render("Saved snapshot. Open state and distance are not stored."))
	}

	body := strings.Join(sections, "\n\n")
	if m.photo != "" && width-4 > photoWidth+40 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "    ", m.photo)
	} else if m.photo != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", m.photo)
	}

	info := PanelStyle.
		Width(width - 4).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

func orDash(s string) string {
	if s == "" {
		return NormalRowStyle.Render("—")
	}
	return s
}
