package reviewer

import (
	"fmt"
	"sort"

	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// ReviewResult contains the advices of a review and their summary.
type ReviewResult struct {
	// Advices are ordered by rule, then by statement. Empty when the script
	// is clean.
	Advices []*types.Advice `json:"advices" yaml:"advices"`
	Summary Summary         `json:"summary" yaml:"summary"`
}

// Summary counts advices per status.
type Summary struct {
	Total    int `json:"total"    yaml:"total"`
	Errors   int `json:"errors"   yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Success  int `json:"success"  yaml:"success"`
}

// HasErrors returns true if the review found any ERROR-level findings.
//
//	if result.HasErrors() {
//	    os.Exit(1)
//	}
func (r *ReviewResult) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings returns true if the review found any WARNING-level findings.
func (r *ReviewResult) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// IsClean returns true if the review found no errors or warnings.
func (r *ReviewResult) IsClean() bool {
	return r.Summary.Errors == 0 && r.Summary.Warnings == 0
}

// String returns a one-line summary, e.g.
//
//	Review Results: 5 total (2 errors, 3 warnings, 0 success)
func (r *ReviewResult) String() string {
	return fmt.Sprintf(
		"Review Results: %d total (%d errors, %d warnings, %d success)",
		r.Summary.Total,
		r.Summary.Errors,
		r.Summary.Warnings,
		r.Summary.Success,
	)
}

// FilterByStatus returns the advices with the given status.
func (r *ReviewResult) FilterByStatus(status types.Advice_Status) []*types.Advice {
	filtered := make([]*types.Advice, 0)
	for _, advice := range r.Advices {
		if advice.Status == status {
			filtered = append(filtered, advice)
		}
	}
	return filtered
}

// FilterByCode returns the advices with the given code, e.g. every dry-run
// failure:
//
//	failed := result.FilterByCode(advisor.StatementDryRunFailed.Int32())
func (r *ReviewResult) FilterByCode(code int32) []*types.Advice {
	filtered := make([]*types.Advice, 0)
	for _, advice := range r.Advices {
		if advice.Code == code {
			filtered = append(filtered, advice)
		}
	}
	return filtered
}

// DryRunFailure returns the advice of the statement SQLite rejected, or nil.
func (r *ReviewResult) DryRunFailure() *types.Advice {
	if failed := r.FilterByCode(advisor.StatementDryRunFailed.Int32()); len(failed) > 0 {
		return failed[0]
	}
	return nil
}

// SortByPosition orders the advices by statement position. Advices without a
// position come first; ties keep their rule order.
func (r *ReviewResult) SortByPosition() {
	sort.SliceStable(r.Advices, func(i, j int) bool {
		a, b := r.Advices[i].StartPosition, r.Advices[j].StartPosition
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		case a.Line != b.Line:
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
