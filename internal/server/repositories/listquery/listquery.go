// Package listquery turns a models.ListQuery into SQL fragments, allowing
// only whitelisted columns.
package listquery

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

// Columns maps public field names to SQL expressions.
type Columns map[string]string

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns a condition such as "(b.title ILIKE $3 OR b.description ILIKE $3)"
// and appends its argument to args. It returns "" when q carries no search.
// Search text and filters must be given together.
func Search(q models.ListQuery, allowed Columns, args []any) (string, []any, error) {
	hasSearch := strings.TrimSpace(q.Search) != ""
	if hasSearch != (len(q.Filters) > 0) {
		return "", args, fmt.Errorf("%w: query and filter must be provided together", common.ErrInvalidQuery)
	}
	if !hasSearch {
		return "", args, nil
	}

	args = append(args, "%"+likeEscaper.Replace(strings.TrimSpace(q.Search))+"%")
	placeholder := fmt.Sprintf("$%d", len(args))

	parts := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		col, ok := allowed[f]
		if !ok {
			return "", args, fmt.Errorf("%w: filter %q", common.ErrInvalidQuery, f)
		}
		parts = append(parts, col+" ILIKE "+placeholder)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

// OrderBy returns an ORDER BY list built from q.Sort, always ending with
// tiebreak so paging is deterministic.
func OrderBy(q models.ListQuery, allowed Columns, tiebreak string) (string, error) {
	parts := make([]string, 0, len(q.Sort)+1)
	for _, s := range q.Sort {
		col, ok := allowed[s.Field]
		if !ok {
			return "", fmt.Errorf("%w: sort %q", common.ErrInvalidQuery, s.Field)
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	parts = append(parts, tiebreak)
	return strings.Join(parts, ", "), nil
}

// ParseSort reads "title_desc,createdAt" style sort strings.
func ParseSort(raw string) []models.SortField {
	var out []models.SortField
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		field, dir, _ := strings.Cut(pair, "_")
		out = append(out, models.SortField{Field: field, Desc: dir == "desc"})
	}
	return out
}
