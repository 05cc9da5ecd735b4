package service

import (
	"strconv"
	"strings"

	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/internal/submission/domain"
	"github.com/smallbiznis/obtain/internal/validation"
)

func normalizeSubmit(req domain.SubmitRequest) domain.SubmitRequest {
	req.ToolName = strings.TrimSpace(req.ToolName)
	req.ToolWebsite = strings.TrimSpace(req.ToolWebsite)
	req.ToolCategory = strings.TrimSpace(req.ToolCategory)
	req.ToolPricing = strings.ToLower(strings.TrimSpace(req.ToolPricing))
	req.ToolDescription = strings.TrimSpace(req.ToolDescription)
	req.ToolDetailedDescription = strings.TrimSpace(req.ToolDetailedDescription)
	req.ListingType = strings.ToLower(strings.TrimSpace(req.ListingType))
	if req.ListingType == "" {
		req.ListingType = string(catalogdomain.ListingSimple)
	}
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
	req.ContactCompany = strings.TrimSpace(req.ContactCompany)
	req.UserTimezone = strings.TrimSpace(req.UserTimezone)
	return req
}

// validateSubmit reports every problem at once, required fields first in
// form order.
func validateSubmit(req domain.SubmitRequest) error {
	v := &validation.Errors{}
	v.Required("toolName", req.ToolName)
	v.Required("toolWebsite", req.ToolWebsite)
	v.Required("toolCategory", req.ToolCategory)
	hasPricing := v.Required("toolPricing", req.ToolPricing)
	v.Required("toolDescription", req.ToolDescription)
	v.Required("contactName", req.ContactName)
	hasEmail := v.Required("contactEmail", req.ContactEmail)

	if hasPricing {
		v.OneOf("toolPricing", req.ToolPricing, catalogdomain.PricingValues()...)
	}
	v.OneOf("listingType", req.ListingType, catalogdomain.ListingTypeValues()...)
	if hasEmail {
		v.Email("contactEmail", req.ContactEmail)
	}
	return v.Err()
}

func splitNonEmpty(value, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinLinks(links ...string) string {
	kept := make([]string, 0, len(links))
	for _, link := range links {
		if link = strings.TrimSpace(link); link != "" {
			kept = append(kept, link)
		}
	}
	return strings.Join(kept, ",")
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func copyStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// parseIDs parses and dedupes ids, keeping the first occurrence order.
func parseIDs(ids []string) ([]int64, error) {
	if len(ids) == 0 {
		return nil, domain.ErrNoIDs
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			return nil, domain.ErrInvalidID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
