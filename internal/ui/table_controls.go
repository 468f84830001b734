package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// tableController is implemented by screens with column controls.
type tableController interface {
	NextColumn()
	PrevColumn()
	JumpToColumn(number int) bool
	SortActiveColumn(desc bool)
	HideActiveColumn() bool
	ShowAllColumns()
	FilterBySelectedValue() bool
	ClearFilter() bool
	TableMeta() string
}

// tableControlResult is what a column key did to the table.
type tableControlResult struct {
	info      string
	persist   bool // layout changed; write ui_prefs.json
	startJump bool // wait for a column digit
	jumped    bool
}

// applyTableControl runs the column key in msg against t. ok is false when
// msg is not a column key.
func applyTableControl(t tableController, keys KeyMap, msg tea.KeyMsg) (res tableControlResult, ok bool) {
	switch {
	case key.Matches(msg, keys.NextColumn):
		t.NextColumn()
		return tableControlResult{persist: true}, true
	case key.Matches(msg, keys.PrevColumn):
		t.PrevColumn()
		return tableControlResult{persist: true}, true
	case key.Matches(msg, keys.ColumnJump):
		return tableControlResult{info: "Jump to column: press 1-9 (esc to cancel)", startJump: true}, true
	case key.Matches(msg, keys.SortAsc):
		t.SortActiveColumn(false)
		return tableControlResult{info: "Sorted ascending", persist: true}, true
	case key.Matches(msg, keys.SortDesc):
		t.SortActiveColumn(true)
		return tableControlResult{info: "Sorted descending", persist: true}, true
	case key.Matches(msg, keys.HideColumn):
		if t.HideActiveColumn() {
			return tableControlResult{info: "Column hidden", persist: true}, true
		}
		return tableControlResult{info: "Cannot hide last visible column"}, true
	case key.Matches(msg, keys.ShowColumns):
		t.ShowAllColumns()
		return tableControlResult{info: "All columns shown", persist: true}, true
	case key.Matches(msg, keys.FilterValue):
		if t.FilterBySelectedValue() {
			return tableControlResult{info: "Filter applied from selected value"}, true
		}
		return tableControlResult{info: "No filterable value in selected cell"}, true
	case key.Matches(msg, keys.ClearFilter):
		if t.ClearFilter() {
			return tableControlResult{info: "Filter cleared"}, true
		}
		return tableControlResult{}, true
	}
	return tableControlResult{}, false
}

// jumpToColumn handles the digit after the column-jump key. ok is false when
// input is not a number.
func jumpToColumn(t tableController, input string) (res tableControlResult, ok bool) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return tableControlResult{}, false
	}
	if t != nil && t.JumpToColumn(n) {
		return tableControlResult{info: fmt.Sprintf("Jumped to column %d", n), persist: true, jumped: true}, true
	}
	return tableControlResult{info: fmt.Sprintf("Column %d unavailable", n)}, true
}
