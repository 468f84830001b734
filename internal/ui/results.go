package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nosh/internal/feed"
	"nosh/internal/match"
	"nosh/internal/model"
	"nosh/internal/util"
)

// ResultsModel is one page of the ranked feed.
type ResultsModel struct {
	listCursor

	source   model.FeedSource
	request  feed.Request
	results  []match.Result
	page     int
	pageSize int
	total    int
	hasMore  bool
	loaded   bool

	// oldest feed generation a page may carry and still be shown
	generation uint64
}

// NewResultsModel creates an empty results list for req. Pages ranked before
// generation are refused.
func NewResultsModel(source model.FeedSource, req feed.Request, generation uint64) *ResultsModel {
	return &ResultsModel{source: source, request: req, generation: generation}
}

// SetPage replaces the list with a loaded page and resets the cursor.
func (m *ResultsModel) SetPage(msg model.FeedLoadedMsg) {
	m.results = append([]match.Result(nil), msg.Results...)
	m.page = msg.Page
	m.pageSize = msg.PageSize
	m.total = msg.Total
	m.hasMore = msg.HasMore
	m.loaded = true
	m.generation = max(m.generation, msg.Generation)
	m.top()
}

// Accepts reports whether msg belongs to this list's current request and was
// ranked under the preferences the list was built for.
func (m *ResultsModel) Accepts(msg model.FeedLoadedMsg) bool {
	if msg.Source != m.source || msg.Generation < m.generation {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(msg.Term), strings.TrimSpace(m.request.Term)) &&
		strings.EqualFold(strings.TrimSpace(msg.Location), strings.TrimSpace(m.request.Location))
}

// Request is the feed request this list shows.
func (m *ResultsModel) Request() feed.Request { return m.request }

// Page is the current 0-based page index.
func (m *ResultsModel) Page() int { return m.page }

// NextPage returns the index of the following page, if there is one.
func (m *ResultsModel) NextPage() (int, bool) {
	if !m.hasMore {
		return 0, false
	}
	return m.page + 1, true
}

// PrevPage returns the index of the previous page, if there is one.
func (m *ResultsModel) PrevPage() (int, bool) {
	if m.page <= 0 {
		return 0, false
	}
	return m.page - 1, true
}

// Selected returns the result under the cursor.
func (m *ResultsModel) Selected() (match.Result, bool) {
	if len(m.results) == 0 || m.cursor >= len(m.results) {
		return match.Result{}, false
	}
	return m.results[m.cursor], true
}

// rank is the 1-based position of row i across all pages.
func (m *ResultsModel) rank(i int) int {
	return m.page*m.pageSize + i + 1
}

// View renders the list. saved maps business ids of favorites.
func (m *ResultsModel) View(width, height int, saved map[string]int64) string {
	if !m.loaded {
		return EmptyStateStyle.Width(width).Height(height).Render("Loading…")
	}
	if len(m.results) == 0 {
		msg := "    No matches on this page."
		if m.page == 0 {
			msg = "    Nothing nearby matches your preferences.\n    Loosen them on the Preferences tab."
		}
		return EmptyStateStyle.Width(width).Height(height).Render(msg)
	}

	type column struct {
		label string
		width int
	}
	columns := []column{
		{"#", 4},
		{"", 2},
		{"name", 26},
		{"score", 6},
		{"rating", 8},
		{"price", 6},
		{"dist", 8},
		{"cuisine", 16},
		{"open", 7},
	}

	widths := make([]int, len(columns))
	headers := make([]string, len(columns))
	total := 0
	for i, c := range columns {
		widths[i] = c.width
		headers[i] = formatHeaderLabel(c.label)
		total += c.width
	}
	sepTotal := (len(widths) - 1) * tableSeparatorWidth()
	if extra := width - total - sepTotal - 2; extra > 0 {
		widths[7] += extra
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	m.viewportHeight = max(1, height-3)
	m.clamp(len(m.results))

	var rows []string
	for i := m.offset; i < len(m.results) && i < m.offset+m.viewportHeight; i++ {
		r := m.results[i]
		b := r.Business
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}

		marker := ""
		if _, ok := saved[b.ID]; ok {
			marker = "★"
		}
		cells := []string{
			strconv.Itoa(m.rank(i)),
			marker,
			util.TruncateString(b.Name, widths[2]),
			util.FormatScore(r.Score),
			util.FormatRating(b.Rating),
			util.FormatPrice(b.Price),
			util.FormatDistance(b.DistanceMeters),
			util.TruncateString(strings.Join(b.Categories, ", "), widths[7]),
			util.FormatOpen(b.IsOpen),
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	first := m.page*m.pageSize + 1
	last := m.page*m.pageSize + len(m.results)
	status := fmt.Sprintf("page %d  ·  %d-%d of %d matches", m.page+1, first, last, m.total)
	if m.hasMore {
		status += "  ·  ] next"
	}
	if m.page > 0 {
		status += "  ·  [ prev"
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	return renderStatusLine(status, content, height)
}

// MoveDown moves the cursor down.
func (m *ResultsModel) MoveDown() { m.move(1, len(m.results)) }

// MoveUp moves the cursor up.
func (m *ResultsModel) MoveUp() { m.move(-1, len(m.results)) }

// JumpToTop jumps to the first result.
func (m *ResultsModel) JumpToTop() { m.top() }

// JumpToBottom jumps to the last result.
func (m *ResultsModel) JumpToBottom() { m.bottom(len(m.results)) }

// HalfPageDown moves down half a page.
func (m *ResultsModel) HalfPageDown(pageSize int) { m.move(pageSize/2, len(m.results)) }

// HalfPageUp moves up half a page.
func (m *ResultsModel) HalfPageUp(pageSize int) { m.move(-pageSize/2, len(m.results)) }
