package core

import (
	"fmt"
	"strings"
)

// Category classifies the subject of a memory. The set is closed: values
// outside it are rejected by ParseCategory and ParseCategoryInput.
type Category string

const (
	CategoryPersonalInfo Category = "personal_info"
	CategoryHealth       Category = "health"
	CategoryPreferences  Category = "preferences"
	CategoryEvents       Category = "events"
	CategoryInterests    Category = "interests"
	CategoryWork         Category = "work"
	CategoryOther        Category = "other"
)

var categories = []Category{
	CategoryPersonalInfo,
	CategoryHealth,
	CategoryPreferences,
	CategoryEvents,
	CategoryInterests,
	CategoryWork,
	CategoryOther,
}

// Categories returns the taxonomy in its canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory maps a wire value onto the taxonomy. Only the exact
// lowercase values are accepted.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// ParseCategoryInput is ParseCategory for values typed by a person: CLI
// flags and tool arguments. Surrounding whitespace and letter case are ignored.
func ParseCategoryInput(s string) (Category, error) {
	c, err := ParseCategory(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPersonalInfo, CategoryHealth, CategoryPreferences,
		CategoryEvents, CategoryInterests, CategoryWork, CategoryOther:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// Describe returns a short human description used when instructing the
// generator about the taxonomy.
func (c Category) Describe() string {
	switch c {
	case CategoryPersonalInfo:
		return "name, age, family, location and other identity facts"
	case CategoryHealth:
		return "medical conditions, allergies, medications, fitness"
	case CategoryPreferences:
		return "likes, dislikes and how the user wants things done"
	case CategoryEvents:
		return "dated plans, appointments and notable happenings"
	case CategoryInterests:
		return "hobbies and topics the user follows"
	case CategoryWork:
		return "job, employer, projects and professional skills"
	case CategoryOther:
		return "durable facts that fit no other category"
	default:
		return ""
	}
}
