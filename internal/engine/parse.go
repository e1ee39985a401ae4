package engine

import "strings"

// ParseCategory parses user input to a Category.
// Supported: code, language, fitness, career, personal, other.
// If input is empty or unrecognized, returns DefaultCategory.
func ParseCategory(input string) Category {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "":
		return DefaultCategory
	case "code", "coding", "dev":
		return CategoryCode
	case "language", "lang":
		return CategoryLanguage
	case "fitness", "health", "gym":
		return CategoryFitness
	case "career", "work", "finance":
		return CategoryCareer
	case "personal":
		return CategoryPersonal
	case "other":
		return CategoryOther
	default:
		return DefaultCategory
	}
}
