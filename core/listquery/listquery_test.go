package listquery

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type word struct {
	ID        int
	Word      string
	Level     string
	CreatedAt time.Time
}

func wordFields() Fields[word] {
	return Fields[word]{
		Search: []func(word) string{func(w word) string { return w.Word }},
		Filter: map[string]func(word) string{
			"level": func(w word) string { return w.Level },
		},
		Text: func(w word) string { return w.Word },
		Time: func(w word) time.Time { return w.CreatedAt },
		ID:   func(w word) int { return w.ID },
	}
}

func words(w ...word) []word { return w }

func TestApply_filterThenSortThenSlice(t *testing.T) {
	items := words(
		word{ID: 1, Word: "Hund", Level: "A1"},
		word{ID: 2, Word: "Katt", Level: "A1"},
		word{ID: 3, Word: "Bil", Level: "B1"},
	)

	res := Apply(items, Params{
		Filters:  map[string]string{"level": "A1"},
		Sort:     SortAlphaAsc,
		Page:     2,
		PageSize: 1,
	}, wordFields())

	require.Len(t, res.PageItems, 1)
	assert.Equal(t, "Katt", res.PageItems[0].Word)
	assert.Equal(t, 2, res.TotalPages)
}

func TestApply_emptyInput(t *testing.T) {
	res := Apply(nil, Params{
		Search:   "hund",
		Filters:  map[string]string{"level": "A1"},
		Page:     1,
		PageSize: 5,
	}, wordFields())

	assert.Empty(t, res.PageItems)
	assert.Equal(t, 1, res.TotalPages)
}

func TestApply_pageMath(t *testing.T) {
	items := make([]word, 0, 23)
	for i := 1; i <= 23; i++ {
		items = append(items, word{ID: i, Word: fmt.Sprintf("ord%02d", i)})
	}

	res := Apply(items, Params{Page: 3, PageSize: 10, Sort: SortByID}, wordFields())
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.PageItems, 3)

	// every page but the last is full
	for page := 1; page <= 2; page++ {
		res := Apply(items, Params{Page: page, PageSize: 10}, wordFields())
		assert.Len(t, res.PageItems, 10)
	}

	// page past the end is empty but TotalPages is unchanged
	res = Apply(items, Params{Page: 9, PageSize: 10}, wordFields())
	assert.Empty(t, res.PageItems)
	assert.Equal(t, 3, res.TotalPages)
}

func TestApply_searchIsCaseInsensitiveSubstring(t *testing.T) {
	items := words(
		word{ID: 1, Word: "Hund"},
		word{ID: 2, Word: "hundra"},
		word{ID: 3, Word: "Katt"},
	)

	res := Apply(items, Params{Search: "HUND", PageSize: 10}, wordFields())
	assert.Len(t, res.PageItems, 2)

	// empty search matches everything
	res = Apply(items, Params{Search: "  ", PageSize: 10}, wordFields())
	assert.Len(t, res.PageItems, 3)
}

func TestApply_filteringIsMonotonic(t *testing.T) {
	items := words(
		word{ID: 1, Word: "Hund", Level: "A1"},
		word{ID: 2, Word: "Katt", Level: "A1"},
		word{ID: 3, Word: "Bil", Level: "B1"},
		word{ID: 4, Word: "Hus", Level: "B1"},
	)

	base := Apply(items, Params{PageSize: 100}, wordFields())
	narrowed := Apply(items, Params{Filters: map[string]string{"level": "A1"}, PageSize: 100}, wordFields())
	evenNarrower := Apply(items, Params{Search: "hund", Filters: map[string]string{"level": "A1"}, PageSize: 100}, wordFields())

	assert.GreaterOrEqual(t, len(base.PageItems), len(narrowed.PageItems))
	assert.GreaterOrEqual(t, len(narrowed.PageItems), len(evenNarrower.PageItems))
}

func TestApply_sortIsStableAndIdempotent(t *testing.T) {
	items := words(
		word{ID: 1, Word: "äpple"},
		word{ID: 2, Word: "Öl"},
		word{ID: 3, Word: "Apple"},
		word{ID: 4, Word: "äpple"}, // duplicate key, order vs ID 1 must hold
	)

	first := Apply(items, Params{Sort: SortAlphaAsc, PageSize: 10}, wordFields())
	second := Apply(first.PageItems, Params{Sort: SortAlphaAsc, PageSize: 10}, wordFields())
	assert.Equal(t, first.PageItems, second.PageItems)

	// swedish collation: å/ä/ö sort after z
	assert.Equal(t, "Apple", first.PageItems[0].Word)
	assert.Equal(t, "Öl", first.PageItems[3].Word)

	// stability of duplicate keys
	assert.Equal(t, 1, first.PageItems[1].ID)
	assert.Equal(t, 4, first.PageItems[2].ID)
}

func TestApply_recencySort(t *testing.T) {
	now := time.Now()
	withTimes := words(
		word{ID: 1, Word: "a", CreatedAt: now.Add(-time.Hour)},
		word{ID: 2, Word: "b", CreatedAt: now},
		word{ID: 3, Word: "c", CreatedAt: now.Add(-2 * time.Hour)},
	)

	res := Apply(withTimes, Params{Sort: SortNewest, PageSize: 10}, wordFields())
	assert.Equal(t, []int{2, 1, 3}, ids(res.PageItems))

	res = Apply(withTimes, Params{Sort: SortOldest, PageSize: 10}, wordFields())
	assert.Equal(t, []int{3, 1, 2}, ids(res.PageItems))

	// no timestamps: id stands in for recency
	withoutTimes := words(word{ID: 5, Word: "a"}, word{ID: 9, Word: "b"}, word{ID: 2, Word: "c"})
	res = Apply(withoutTimes, Params{Sort: SortNewest, PageSize: 10}, wordFields())
	assert.Equal(t, []int{9, 5, 2}, ids(res.PageItems))
}

func TestApply_unknownFilterFieldMatchesNothing(t *testing.T) {
	items := words(word{ID: 1, Word: "Hund", Level: "A1"})
	res := Apply(items, Params{Filters: map[string]string{"nope": "x"}, PageSize: 10}, wordFields())
	assert.Empty(t, res.PageItems)
	assert.Equal(t, 1, res.TotalPages)
}

func ids(items []word) []int {
	out := make([]int, 0, len(items))
	for _, w := range items {
		out = append(out, w.ID)
	}
	return out
}

func TestState_resetsPageOnQueryChange(t *testing.T) {
	st := NewState(5)
	st.SetPage(4)
	assert.Equal(t, 4, st.Params().Page)

	st.SetSearch("hund")
	assert.Equal(t, 1, st.Params().Page)

	st.SetPage(3)
	st.SetFilter("level", "A1")
	assert.Equal(t, 1, st.Params().Page)

	st.SetPage(2)
	st.SetSort(SortNewest)
	assert.Equal(t, 1, st.Params().Page)

	// setting the same value again is not a change
	st.SetPage(2)
	st.SetSearch("hund")
	st.SetFilter("level", "A1")
	st.SetSort(SortNewest)
	assert.Equal(t, 2, st.Params().Page)
}

func TestState_pageFloor(t *testing.T) {
	st := NewState(0)
	st.SetPage(-3)
	assert.Equal(t, 1, st.Params().Page)
	assert.Equal(t, DefaultPageSize, st.Params().PageSize)
}
