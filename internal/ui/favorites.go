package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nosh/internal/match"
	"nosh/internal/model"
	"nosh/internal/util"
)

type tableColumn struct {
	key    string
	label  string
	width  int
	hidden bool
}

// FavoritesModel is the saved-favorites table.
type FavoritesModel struct {
	listCursor

	allRows []model.FavoriteRow
	rows    []model.FavoriteRow

	columns      []tableColumn
	activeColumn int
	sortKey      string
	sortDesc     bool
	filterKey    string
	filterValue  string
}

// NewFavoritesModel creates a favorites table over rows.
func NewFavoritesModel(rows []model.FavoriteRow) *FavoritesModel {
	return &FavoritesModel{
		allRows: append([]model.FavoriteRow(nil), rows...),
		rows:    append([]model.FavoriteRow(nil), rows...),
		columns: favoriteColumns(),
	}
}

func favoriteColumns() []tableColumn {
	return []tableColumn{
		{key: "name", label: "name", width: 24},
		{key: "cuisine", label: "cuisine", width: 14},
		{key: "price", label: "price", width: 6},
		{key: "rating", label: "rating", width: 7},
		{key: "reviews", label: "reviews", width: 8},
		{key: "address", label: "address", width: 24},
		{key: "notes", label: "notes", width: 18},
		{key: "saved", label: "saved", width: 14},
	}
}

func favoriteColumnKeys() []string {
	cols := favoriteColumns()
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.key
	}
	return keys
}

func (m *FavoritesModel) ApplyPrefs(prefs TablePrefs) {
	if prefs.SortKey != "" {
		m.sortKey = prefs.SortKey
		m.sortDesc = prefs.SortDesc
	}
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
	m.rebuild()
}

func (m *FavoritesModel) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		SortKey:       m.sortKey,
		SortDesc:      m.sortDesc,
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

// Selected returns the row under the cursor.
func (m *FavoritesModel) Selected() (model.FavoriteRow, bool) {
	if len(m.rows) == 0 || m.cursor >= len(m.rows) {
		return model.FavoriteRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m *FavoritesModel) rebuild() {
	rows := append([]model.FavoriteRow(nil), m.allRows...)

	if m.filterKey != "" && m.filterValue != "" {
		filtered := make([]model.FavoriteRow, 0, len(rows))
		target := strings.ToLower(strings.TrimSpace(m.filterValue))
		for _, r := range rows {
			if strings.EqualFold(strings.TrimSpace(m.getValue(r, m.filterKey)), target) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if m.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			left := strings.ToLower(m.getValue(rows[i], m.sortKey))
			right := strings.ToLower(m.getValue(rows[j], m.sortKey))
			if left == right {
				return rows[i].ID > rows[j].ID
			}
			if m.sortDesc {
				return left > right
			}
			return left < right
		})
	}

	m.rows = rows
	m.clamp(len(m.rows))
}

// getValue returns the sortable text of a cell. Numbers are zero padded so
// they order correctly as strings.
func (m *FavoritesModel) getValue(row model.FavoriteRow, key string) string {
	switch key {
	case "name":
		return row.Name
	case "cuisine":
		return row.Cuisine
	case "price":
		return row.PriceRange
	case "rating":
		if row.Rating == nil {
			return ""
		}
		return fmt.Sprintf("%04.1f", *row.Rating)
	case "reviews":
		return fmt.Sprintf("%08d", row.ReviewCount)
	case "address":
		return row.Address
	case "notes":
		return row.Notes
	case "saved":
		if row.CreatedAt.IsZero() {
			return ""
		}
		return row.CreatedAt.UTC().Format("2006-01-02T15:04:05")
	default:
		return ""
	}
}

func (m *FavoritesModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *FavoritesModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

func (m *FavoritesModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *FavoritesModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *FavoritesModel) JumpToColumn(number int) bool {
	if number < 1 || number > len(m.columns) {
		return false
	}
	idx := number - 1
	if m.columns[idx].hidden {
		return false
	}
	m.activeColumn = idx
	return true
}

func (m *FavoritesModel) SortActiveColumn(desc bool) {
	m.sortKey = m.columns[m.activeColumn].key
	m.sortDesc = desc
	m.rebuild()
}

func (m *FavoritesModel) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *FavoritesModel) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

func (m *FavoritesModel) FilterBySelectedValue() bool {
	row, ok := m.Selected()
	if !ok {
		return false
	}
	key := m.columns[m.activeColumn].key
	value := strings.TrimSpace(m.getValue(row, key))
	if value == "" {
		return false
	}
	m.filterKey = key
	m.filterValue = value
	m.rebuild()
	return true
}

func (m *FavoritesModel) ClearFilter() bool {
	if m.filterKey == "" {
		return false
	}
	m.filterKey = ""
	m.filterValue = ""
	m.rebuild()
	return true
}

func (m *FavoritesModel) TableMeta() string {
	col := strings.ToUpper(m.columns[m.activeColumn].label)
	parts := []string{fmt.Sprintf("col %s", col)}
	if m.sortKey != "" {
		order := "asc"
		if m.sortDesc {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sortKey), order))
	}
	if m.filterKey != "" {
		parts = append(parts, fmt.Sprintf("filter %s=%q", strings.ToUpper(m.filterKey), m.filterValue))
	}
	return strings.Join(parts, "  ·  ")
}

// View renders the favorites table.
func (m *FavoritesModel) View(width, height int) string {
	if len(m.allRows) == 0 {
		emptyMsg := `    No favorites yet.
    Press  f  on a result to save it here.`
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(emptyMsg)
	}

	visible := m.visibleColumnIndexes()
	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := formatHeaderLabel(col.label)
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		if idx == m.activeColumn {
			label = renderActiveHeaderLabel(label)
		}
		cellWidth := max(col.width+2, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if len(widths) > 0 {
		sepTotal := (len(widths) - 1) * tableSeparatorWidth()
		if extra := width - totalFixed - sepTotal - 2; extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	m.viewportHeight = max(1, height-3)
	m.clamp(len(m.rows))

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+m.viewportHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}

		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			col := m.columns[idx]
			switch col.key {
			case "name":
				cells = append(cells, util.TruncateString(row.Name, col.width))
			case "cuisine":
				cells = append(cells, util.TruncateString(row.Cuisine, col.width))
			case "price":
				cells = append(cells, util.FormatPrice(match.ParsePriceTier(row.PriceRange)))
			case "rating":
				cells = append(cells, util.FormatRatingPtr(row.Rating))
			case "reviews":
				cells = append(cells, strconv.Itoa(row.ReviewCount))
			case "address":
				cells = append(cells, util.TruncateString(row.Address, col.width))
			case "notes":
				cells = append(cells, util.TruncateString(firstLine(row.Notes), col.width))
			case "saved":
				cells = append(cells, util.FormatSaved(row.CreatedAt))
			}
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}
	if len(rows) == 0 {
		rows = append(rows, HelpDescStyle.Render("  No favorites match the filter. Press N to clear it."))
	}

	filterInfo := ""
	if m.filterKey != "" {
		filterInfo = fmt.Sprintf("  ·  filtered: %d/%d", len(m.rows), len(m.allRows))
	}
	rowPos := ""
	if len(m.rows) > 0 {
		rowPos = fmt.Sprintf("  ·  row %d/%d", m.cursor+1, len(m.rows))
	}
	status := fmt.Sprintf("%d favorites%s%s  ·  %s", len(m.rows), rowPos, filterInfo, m.TableMeta())

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	return renderStatusLine(status, content, height)
}

// MoveDown moves the cursor down.
func (m *FavoritesModel) MoveDown() { m.move(1, len(m.rows)) }

// MoveUp moves the cursor up.
func (m *FavoritesModel) MoveUp() { m.move(-1, len(m.rows)) }

// JumpToTop jumps to the first row.
func (m *FavoritesModel) JumpToTop() { m.top() }

// JumpToBottom jumps to the last row.
func (m *FavoritesModel) JumpToBottom() { m.bottom(len(m.rows)) }

// HalfPageDown moves down half a page.
func (m *FavoritesModel) HalfPageDown(pageSize int) { m.move(pageSize/2, len(m.rows)) }

// HalfPageUp moves up half a page.
func (m *FavoritesModel) HalfPageUp(pageSize int) { m.move(-pageSize/2, len(m.rows)) }

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
