package services

import (
	"fmt"
	"strings"
)

// ValidationError reports required fields missing from a line item before any
// network call is attempted. Validation failures block the whole submission.
type ValidationError struct {
	Position      int
	ProductCode   string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d (%s): missing %s", e.Position, e.ProductCode, strings.Join(e.MissingFields, ", "))
}

// ValidationErrors aggregates the per-line failures of one submission attempt
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	lines := make([]string, 0, len(e))
	for _, v := range e {
		lines = append(lines, v.Error())
	}
	return "validation failed: " + strings.Join(lines, "; ")
}

// ReconciliationMismatch is raised when local variants and remote read-back
// do not fully line up. It downgrades the group to success-with-warning and
// never fails the group.
type ReconciliationMismatch struct {
	BaseProductCode string
	Missing         []string
	Unexpected      []string
}

func (e *ReconciliationMismatch) Error() string {
	return fmt.Sprintf("reconciliation mismatch for %s: missing [%s], unexpected [%s]",
		e.BaseProductCode, strings.Join(e.Missing, ", "), strings.Join(e.Unexpected, ", "))
}
