package followers

import (
	"strings"
)

type Criteria struct {
	ExcludeAlreadyFollowing bool `json:"notFollowing"`
	RequireAvatar           bool `json:"hasAvatar"`
	RequireBio              bool `json:"hasBio"`
}

func (c Criteria) Accepts(record *Record) bool {
	if c.ExcludeAlreadyFollowing && record.IsFollowing() {
		return false
	}
	if c.RequireAvatar && (record.Avatar == nil || *record.Avatar == "") {
		return false
	}
	if c.RequireBio && (record.Description == nil || strings.TrimSpace(*record.Description) == "") {
		return false
	}
	return true
}

// Apply returns the records accepted by criteria, in their original order.
func Apply(records []Record, criteria Criteria) []Record {
	result := make([]Record, 0, len(records))
	for i := range records {
		if criteria.Accepts(&records[i]) {
			result = append(result, records[i])
		}
	}
	return result
}
