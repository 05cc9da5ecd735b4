package option

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

// QuerySortBy restricts ordering to an allowlist of columns.
type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{SortBy: sortBy, OrderBy: orderBy, Allow: allow}
}

// WithSortBy orders by the requested column when allowed, falling back to
// created_at (or the first allowed column) descending.
func WithSortBy(q QuerySortBy) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		column := strings.ToLower(strings.TrimSpace(q.SortBy))
		if !q.Allow[column] {
			column = "created_at"
			if !q.Allow[column] {
				column = "id"
			}
		}

		direction := "DESC"
		if strings.EqualFold(strings.TrimSpace(q.OrderBy), "asc") {
			direction = "ASC"
		}
		return db.Order(fmt.Sprintf("%s %s", column, direction))
	})
}

// WithPaging applies 1-based page/per-page offsets.
func WithPaging(page, perPage int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if perPage <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * perPage).Limit(perPage)
	})
}

type Operator string

const (
	EQ   Operator = "="
	GTE  Operator = ">="
	LTE  Operator = "<="
	LIKE Operator = "LIKE"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a single comparison. Field names are never taken from user input.
func ApplyOperator(cond Condition) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		switch cond.Operator {
		case EQ, GTE, LTE, LIKE:
			return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
		default:
			return db
		}
	})
}

// Columns maps the public field names an admin entity declares to table
// columns. Names missing from the map never reach SQL.
type Columns map[string]string

// ListQuery is an admin list request resolved against an entity's declared
// filters, search fields and default ordering.
type ListQuery struct {
	Search       string            `form:"q" json:"q"`
	Filters      map[string]string `form:"-" json:"-"`
	SearchFields []string          `form:"-" json:"-"`
	Ordering     string            `form:"-" json:"-"`
}

// Where returns the filter and search clauses for q.
func (q ListQuery) Where(columns Columns) []QueryOption {
	return []QueryOption{
		WithFilters(columns, q.Filters),
		WithSearch(columns, q.SearchFields, q.Search),
	}
}

// WithFilters adds an equality condition per known filter, in key order.
func WithFilters(columns Columns, filters map[string]string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		keys := make([]string, 0, len(filters))
		for key := range filters {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			column, ok := columns[key]
			value := strings.TrimSpace(filters[key])
			if !ok || value == "" {
				continue
			}
			db = ApplyOperator(Condition{Field: column, Operator: EQ, Value: value}).Apply(db)
		}
		return db
	})
}

// WithSearch matches term case-insensitively as a substring of any known field.
func WithSearch(columns Columns, fields []string, term string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return db
		}

		pattern := "%" + EscapeLike(term) + "%"
		clauses := make([]string, 0, len(fields))
		args := make([]any, 0, len(fields))
		for _, field := range fields {
			column, ok := columns[field]
			if !ok {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) %s ? ESCAPE '!'", column, LIKE))
			args = append(args, pattern)
		}
		if len(clauses) == 0 {
			return db
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	})
}

// WithOrdering orders by a "field" or "-field" declaration, with id as the
// tie-breaker. Unknown fields fall back to fallback.
func WithOrdering(columns Columns, ordering, fallback string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(ordering)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			field = strings.TrimPrefix(field, "-")
			direction = "DESC"
		}

		column, ok := columns[field]
		if !ok {
			return db.Order(fallback)
		}
		return db.Order(fmt.Sprintf("%s %s, id %s", column, direction, direction))
	})
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// EscapeLike escapes LIKE wildcards using '!' as the escape character.
func EscapeLike(value string) string {
	return likeEscaper.Replace(value)
}
