package persistence

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortSpec whitelists the columns a list endpoint may order by. Anything
// else, including an empty field, falls back to the default column. Rows
// are always tie-broken by id so pages stay stable.
type sortSpec struct {
	columns       map[string]bool
	defaultColumn string
}

var (
	assetSort = sortSpec{
		defaultColumn: "code",
		columns: map[string]bool{
			"id": true, "created_at": true, "updated_at": true,
			"code": true, "name": true, "category": true, "location": true,
			"status": true, "quantity": true, "accounting_date": true,
		},
	}
	loanSort = sortSpec{
		defaultColumn: "created_at",
		columns: map[string]bool{
			"id": true, "created_at": true, "updated_at": true,
			"borrow_date": true, "due_at": true, "status": true, "quantity": true,
		},
	}
)

// column returns field when whitelisted, otherwise the default column
func (s sortSpec) column(field string) string {
	field = strings.TrimSpace(field)
	if s.columns[field] {
		return field
	}
	return s.defaultColumn
}

// apply adds the ORDER BY clauses. Only an explicit "asc" sorts ascending.
func (s sortSpec) apply(query *gorm.DB, field, dir string) *gorm.DB {
	col := s.column(field)
	desc := !strings.EqualFold(strings.TrimSpace(dir), "asc")
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	if col != "id" {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return query
}
