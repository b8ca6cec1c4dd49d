package reviewer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/hint"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

func TestReviewResult_Predicates(t *testing.T) {
	tests := []struct {
		name        string
		summary     Summary
		hasErrors   bool
		hasWarnings bool
		isClean     bool
	}{
		{"empty", Summary{}, false, false, true},
		{"only success", Summary{Total: 2, Success: 2}, false, false, true},
		{"warnings", Summary{Total: 2, Warnings: 2}, false, true, false},
		{"errors", Summary{Total: 1, Errors: 1}, true, false, false},
		{"both", Summary{Total: 8, Errors: 5, Warnings: 3}, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ReviewResult{Summary: tt.summary}
			require.Equal(t, tt.hasErrors, r.HasErrors())
			require.Equal(t, tt.hasWarnings, r.HasWarnings())
			require.Equal(t, tt.isClean, r.IsClean())
		})
	}
}

func TestReviewResult_String(t *testing.T) {
	r := &ReviewResult{Summary: Summary{Total: 10, Errors: 3, Warnings: 5, Success: 2}}
	require.Equal(t, "Review Results: 10 total (3 errors, 5 warnings, 2 success)", r.String())
}

func TestReviewResult_Filters(t *testing.T) {
	r := &ReviewResult{Advices: []*types.Advice{
		{Status: types.Advice_WARNING, Code: int32(hint.AutoIncrement), Title: "a"},
		{Status: types.Advice_ERROR, Code: advisor.StatementDryRunFailed.Int32(), Title: "b"},
		{Status: types.Advice_WARNING, Code: int32(hint.TableEngine), Title: "c"},
	}}

	warnings := r.FilterByStatus(types.Advice_WARNING)
	require.Len(t, warnings, 2)
	require.Equal(t, "a", warnings[0].Title)
	require.Equal(t, "c", warnings[1].Title)

	require.Len(t, r.FilterByCode(int32(hint.TableEngine)), 1)
	require.NotNil(t, r.FilterByCode(999))
	require.Empty(t, r.FilterByCode(999))

	require.Equal(t, "b", r.DryRunFailure().Title)
	require.Nil(t, (&ReviewResult{}).DryRunFailure())
}

func TestReviewResult_SortByPosition(t *testing.T) {
	r := &ReviewResult{Advices: []*types.Advice{
		{Title: "line 3", StartPosition: &types.Position{Line: 3, Column: 1}},
		{Title: "no position"},
		{Title: "line 1 col 5", StartPosition: &types.Position{Line: 1, Column: 5}},
		{Title: "line 1 col 1", StartPosition: &types.Position{Line: 1, Column: 1}},
	}}
	r.SortByPosition()

	var got []string
	for _, a := range r.Advices {
		got = append(got, a.Title)
	}
	require.Equal(t, []string{"no position", "line 1 col 1", "line 1 col 5", "line 3"}, got)
}

func TestCalculateSummary(t *testing.T) {
	tests := []struct {
		name    string
		advices []*types.Advice
		want    Summary
	}{
		{"empty", nil, Summary{}},
		{
			"mixed",
			[]*types.Advice{
				{Status: types.Advice_ERROR},
				{Status: types.Advice_WARNING},
				{Status: types.Advice_WARNING},
				{Status: types.Advice_SUCCESS},
			},
			Summary{Total: 4, Errors: 1, Warnings: 2, Success: 1},
		},
		{
			"unspecified counts only in total",
			[]*types.Advice{{Status: types.Advice_STATUS_UNSPECIFIED}},
			Summary{Total: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, calculateSummary(tt.advices))
		})
	}
}
