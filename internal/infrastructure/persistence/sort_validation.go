package persistence

import "strings"

// Sort parameters reach the repositories from query strings, so they are
// whitelisted before being spliced into ORDER BY clauses.

// ValidateSortOrder normalizes the direction to ASC or DESC, defaulting
// to DESC for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns the field when the whitelist allows it,
// otherwise the default. Matching is exact: column names are lowercase.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// sortFields builds a whitelist from the bookkeeping columns every table
// has plus the entity's own sortable columns.
func sortFields(extra ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range extra {
		m[f] = true
	}
	return m
}

var (
	// StudentSortFields covers the roster listing columns.
	StudentSortFields = sortFields(
		"first_name", "second_name", "class_level", "gender",
		"identity_number", "date_of_birth", "fee", "academic_year_id",
	)

	// PaymentSortFields covers the ledger listing columns.
	PaymentSortFields = sortFields("amount", "paid_at")

	// AcademicYearSortFields covers the year listing columns.
	AcademicYearSortFields = sortFields("year", "start_date", "end_date")

	// UserSortFields covers the account listing columns.
	UserSortFields = sortFields("username", "email", "status", "last_login_at")
)
