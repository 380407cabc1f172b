package bridge

import (
	"github.com/vyrodovalexey/navrouter/internal/navigation"
	"github.com/vyrodovalexey/navrouter/internal/router"
)

// Table is the route configuration served to sessions.
type Table struct {
	Routes      []router.Route
	BaseContext string
	Views       *navigation.ViewTable
}

// NewTable builds a table. notFound is the view selected for unmatched
// pathnames.
func NewTable(routes []router.Route, baseContext string, notFound any) *Table {
	return &Table{
		Routes:      routes,
		BaseContext: navigation.NormalizeContext(baseContext),
		Views:       navigation.NewViewTable(routes, notFound),
	}
}

// TableSource supplies the current table. Sessions read it on init and on
// reload.
type TableSource interface {
	Table() *Table
}

// StaticTable is a TableSource that never changes.
type StaticTable struct {
	table *Table
}

// NewStaticTable wraps t.
func NewStaticTable(t *Table) StaticTable {
	return StaticTable{table: t}
}

// Table implements TableSource.
func (s StaticTable) Table() *Table {
	return s.table
}
