package shared

// Filter carries the paging, ordering and free-text search shared by list
// queries. OrderBy is checked against a per-table whitelist by the
// repository before it reaches SQL.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Offset returns the row offset for the filter's page; pages start at 1
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
