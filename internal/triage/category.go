package triage

import "strings"

// Category is the urgency bucket assigned to a message.
type Category string

const (
	CategoryUrgent      Category = "Urgent"
	CategoryImportant   Category = "Important"
	CategoryLowPriority Category = "Low Priority"
)

// String returns the wire representation of the category.
func (c Category) String() string {
	return string(c)
}

// ParseCategory maps a model reply to a category by exact match after
// trimming whitespace. Anything outside the three literals resolves to
// Low Priority: the documented bias is toward the lowest urgency on
// uncertainty.
func ParseCategory(s string) Category {
	switch Category(strings.TrimSpace(s)) {
	case CategoryUrgent:
		return CategoryUrgent
	case CategoryImportant:
		return CategoryImportant
	case CategoryLowPriority:
		return CategoryLowPriority
	default:
		return CategoryLowPriority
	}
}
