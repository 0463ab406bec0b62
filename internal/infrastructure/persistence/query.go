package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

const maxPageSize = 100

// applyPaging orders and pages a list query. The sort field must already be
// whitelisted by the caller.
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return query.Offset(filter.Offset()).Limit(pageSize)
}

// likePattern builds a case-insensitive LIKE pattern for a search term
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(strings.TrimSpace(search)))
	return "%" + escaped + "%"
}

// filterString returns a non-empty string filter value
func filterString(filter shared.Filter, key string) (string, bool) {
	if filter.Filters == nil {
		return "", false
	}
	v, ok := filter.Filters[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// isDuplicateKey reports whether err is a unique constraint violation on
// either PostgreSQL or SQLite
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
