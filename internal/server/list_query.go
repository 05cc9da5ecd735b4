package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/obtain/pkg/db/option"
)

// listQuery reads the search term and the declared filters of an admin entity
// from the query string. Undeclared filter keys are ignored.
func (s *Server) listQuery(c *gin.Context, entity string) option.ListQuery {
	cfg := s.site.Entity(entity)

	q := option.ListQuery{
		Search:       strings.TrimSpace(c.Query("q")),
		SearchFields: cfg.SearchFields,
		Ordering:     cfg.Ordering,
	}
	for _, key := range cfg.ListFilter {
		value := strings.TrimSpace(c.Query(key))
		if value == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]string, len(cfg.ListFilter))
		}
		q.Filters[key] = value
	}
	return q
}
