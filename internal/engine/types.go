package engine

// Category tags a project and selects its XP multiplier.
type Category string

const (
	CategoryCode     Category = "code"
	CategoryLanguage Category = "language"
	CategoryFitness  Category = "fitness"
	CategoryCareer   Category = "career"
	CategoryPersonal Category = "personal"
	CategoryOther    Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryCode, CategoryLanguage, CategoryFitness, CategoryCareer, CategoryPersonal, CategoryOther:
		return true
	default:
		return false
	}
}

// DefaultCategory is used when user input is missing/invalid.
const DefaultCategory Category = CategoryOther

// High-impact categories earn 1.2x per recorded minute; everything else
// stays at the neutral 1.0.
var categoryMultipliers = map[Category]float64{
	CategoryCode:   1.2,
	CategoryCareer: 1.2,
}

func (c Category) Multiplier() float64 {
	if m, ok := categoryMultipliers[c]; ok {
		return m
	}
	return 1
}
