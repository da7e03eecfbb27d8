package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Staking Position", [][2]string{
		{"Staked", "150 B3TR"},
		{"Pending Reward", "2.5 B3TR"},
	})
	assert.Contains(t, result, "Staking Position")
	assert.Contains(t, result, "Staked")
	assert.Contains(t, result, "150 B3TR")
	assert.Contains(t, result, "Pending Reward:")
}

func TestKeyValueBlockWithoutTitleOrPairs(t *testing.T) {
	assert.Contains(t, KeyValueBlock("", [][2]string{{"Status", "Active"}}), "Active")
	assert.NotEmpty(t, KeyValueBlock("Empty Block", nil))
}

func TestKeyValueBlockMultiplePairsPreservesOrder(t *testing.T) {
	result := KeyValueBlock("Opportunity #3", [][2]string{
		{"First", "Beach cleanup"},
		{"Second", "environmental"},
		{"Third", "50 B3TR"},
	})
	idxFirst := strings.Index(result, "First")
	idxSecond := strings.Index(result, "Second")
	idxThird := strings.Index(result, "Third")
	require.Greater(t, idxFirst, -1)
	require.Greater(t, idxSecond, -1)
	require.Greater(t, idxThird, -1)
	assert.Less(t, idxFirst, idxSecond, "First should appear before Second")
	assert.Less(t, idxSecond, idxThird, "Second should appear before Third")
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Bordered", [][2]string{
		{"Key", "Val"},
	})
	// lipgloss RoundedBorder uses ╭ and ╰ for corners.
	assert.Contains(t, result, "╭", "should have top-left rounded border")
	assert.Contains(t, result, "╰", "should have bottom-left rounded border")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTableStartsUnselected(t *testing.T) {
	tbl := NewTable([]Column{{Title: "ID", Width: 4}, {Title: "Title", Width: 20}})
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.SelIdx)

	tbl.AddRow(Row{"1", "Tree planting"})
	tbl.AddRow(Row{"2", "Reading club"})
	assert.Len(t, tbl.Rows, 2)
}

func TestTableRenderContainsHeaders(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Name", Width: 10},
		{Title: "Reward", Width: 12},
	})
	result := tbl.Render()
	assert.Contains(t, result, "Name")
	assert.Contains(t, result, "Reward")
}

func TestTableRenderContainsRowData(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Category", Width: 14},
		{Title: "Status", Width: 10},
	})
	tbl.AddRow(Row{"environmental", "Active"})
	tbl.AddRow(Row{"water", "Completed"})

	result := tbl.Render()
	assert.Contains(t, result, "environmental")
	assert.Contains(t, result, "Active")
	assert.Contains(t, result, "water")
	assert.Contains(t, result, "Completed")
}

func TestTableRenderHasDivider(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Col", Width: 8}})
	result := tbl.Render()
	assert.Contains(t, result, "--------", "should have a divider line")
}

func TestTableRenderRowShorterThanColumns(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "A", Width: 5},
		{Title: "B", Width: 5},
		{Title: "C", Width: 5},
	})
	tbl.AddRow(Row{"only1"})
	// Missing cells render as empty.
	result := tbl.Render()
	assert.Contains(t, result, "only1")
}

func TestTableRenderPreservesRowOrder(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Rank", Width: 10}})
	tbl.AddRow(Row{"alice"})
	tbl.AddRow(Row{"bob"})
	tbl.AddRow(Row{"carol"})

	result := tbl.Render()
	idxFirst := strings.Index(result, "alice")
	idxSecond := strings.Index(result, "bob")
	idxThird := strings.Index(result, "carol")
	assert.Less(t, idxFirst, idxSecond)
	assert.Less(t, idxSecond, idxThird)
}

func TestTableRenderSelectedRow(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}})
	tbl.AddRow(Row{"row0"})
	tbl.AddRow(Row{"row1"})
	tbl.SelIdx = 1

	result := tbl.Render()
	assert.Contains(t, result, "row0")
	assert.Contains(t, result, "row1")
}

func TestTableMultipleColumns(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Volunteer", Width: 14},
		{Title: "Proof", Width: 14},
		{Title: "Status", Width: 12},
	})
	tbl.AddRow(Row{"0xabc", "QmProof", "Pending"})
	result := tbl.Render()
	assert.Contains(t, result, "Volunteer")
	assert.Contains(t, result, "Proof")
	assert.Contains(t, result, "Status")
	assert.Contains(t, result, "0xabc")
	assert.Contains(t, result, "QmProof")
	assert.Contains(t, result, "Pending")
}

// ---------------------------------------------------------------------------
// fit
// ---------------------------------------------------------------------------

func TestFitPadsAndTruncates(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5, false))
	assert.Equal(t, "   ab", fit("ab", 5, true))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5, false))
	assert.Equal(t, "", fit("abc", 0, false))
}

func TestFitMeasuresStyledCells(t *testing.T) {
	styled := StyleSuccess.Render("Active")
	out := fit(styled, 10, false)
	assert.Equal(t, 10, lipgloss.Width(out))
	assert.Contains(t, out, "Active")
}

func TestTableRightAlignedColumn(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Reward", Width: 10, Right: true}})
	tbl.AddRow(Row{"50"})
	assert.Contains(t, tbl.Render(), "        50")
}
