package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelector(t *testing.T) {
	sel := ParseSelector(" 1001 ")
	assert.True(t, sel.ByCode)
	assert.Equal(t, 1001, sel.Code)
	assert.Equal(t, "1001", sel.Raw)
	assert.Empty(t, sel.Name())

	sel = ParseSelector("  Alice Smith ")
	assert.False(t, sel.ByCode)
	assert.Equal(t, "Alice Smith", sel.Name())

	sel = ParseSelector("10a")
	assert.False(t, sel.ByCode)
	assert.Equal(t, "10a", sel.Name())
}

func TestParseSortOrder(t *testing.T) {
	cases := map[string]SortOrder{
		"":           OrderNone,
		"A":          OrderAscending,
		"asc":        OrderAscending,
		" D ":        OrderDescending,
		"Descending": OrderDescending,
	}
	for raw, want := range cases {
		got, ok := ParseSortOrder(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseSortOrder("sideways")
	assert.False(t, ok)
}

func TestQuizDifficultyDigits(t *testing.T) {
	assert.Equal(t, 1, QuizEasy.Digits())
	assert.Equal(t, 2, QuizModerate.Digits())
	assert.Equal(t, 4, QuizAdvanced.Digits())
	assert.Equal(t, 0, QuizDifficulty("expert").Digits())
}

func TestExportFormatContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ExportCSV.ContentType())
	assert.Equal(t, "application/pdf", ExportPDF.ContentType())
}
