package catalog

const (
	CategoryBehavioral = "BEHAVIORAL"
	CategoryTechnical  = "TECHNICAL"
	CategoryObjectives = "OBJECTIVES"
)

// Categories is also the display order.
var Categories = []string{CategoryBehavioral, CategoryTechnical, CategoryObjectives}

var CategoryLabels = map[string]string{
	CategoryBehavioral: "Competências comportamentais",
	CategoryTechnical:  "Competências técnicas",
	CategoryObjectives: "Objetivos",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func CategoryRank(category string) int {
	for i, c := range Categories {
		if c == category {
			return i
		}
	}
	return len(Categories)
}
