package persistence

import (
	"strings"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"gorm.io/gorm/clause"
)

// productSortColumns are the product columns a listing may be ordered by
var productSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"price":      true,
}

// orderBy builds the ORDER BY for a filter. Unknown columns fall back to
// fallback and anything but "asc" sorts descending. The id tiebreaker keeps
// pages stable when many rows share a timestamp.
func orderBy(f shared.Filter, allowed map[string]bool, fallback string) clause.OrderBy {
	column := strings.TrimSpace(f.OrderBy)
	if !allowed[column] {
		column = fallback
	}
	desc := !strings.EqualFold(strings.TrimSpace(f.OrderDir), "asc")

	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}
