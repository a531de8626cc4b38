package tenant

import "strings"

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields present on every tenant entity
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// WithCommonSortFields merges extra columns into CommonSortFields
func WithCommonSortFields(extra ...string) map[string]bool {
	fields := make(map[string]bool, len(CommonSortFields)+len(extra))
	for k := range CommonSortFields {
		fields[k] = true
	}
	for _, f := range extra {
		fields[f] = true
	}
	return fields
}
