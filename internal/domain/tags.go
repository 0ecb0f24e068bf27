package domain

// DietGoal is one of the diet goals a user can follow
type DietGoal string

const (
	DietGoalKeto       DietGoal = "keto"
	DietGoalPaleo      DietGoal = "paleo"
	DietGoalVegan      DietGoal = "vegan"
	DietGoalVegetarian DietGoal = "vegetarian"
	DietGoalLowCarb    DietGoal = "lowCarb"
	DietGoalLowFat     DietGoal = "lowFat"
)

// AllDietGoals contains all valid diet goals in display order
var AllDietGoals = []DietGoal{
	DietGoalKeto, DietGoalPaleo, DietGoalVegan,
	DietGoalVegetarian, DietGoalLowCarb, DietGoalLowFat,
}

// IsValid checks if a diet goal is valid
func (g DietGoal) IsValid() bool {
	switch g {
	case DietGoalKeto, DietGoalPaleo, DietGoalVegan, DietGoalVegetarian, DietGoalLowCarb, DietGoalLowFat:
		return true
	}
	return false
}

// DisplayName returns the label shown next to the checkbox
func (g DietGoal) DisplayName() string {
	switch g {
	case DietGoalKeto:
		return "Keto"
	case DietGoalPaleo:
		return "Paleo"
	case DietGoalVegan:
		return "Vegan"
	case DietGoalVegetarian:
		return "Vegetarian"
	case DietGoalLowCarb:
		return "Low Carb"
	case DietGoalLowFat:
		return "Low Fat"
	}
	return string(g)
}

// Allergy is an allergy or sensitivity the scanner should flag
type Allergy string

const (
	AllergyGluten    Allergy = "gluten"
	AllergyDairy     Allergy = "dairy"
	AllergyNuts      Allergy = "nuts"
	AllergySoy       Allergy = "soy"
	AllergyShellfish Allergy = "shellfish"
	AllergyEggs      Allergy = "eggs"
)

// AllAllergies contains all valid allergies in display order
var AllAllergies = []Allergy{
	AllergyGluten, AllergyDairy, AllergyNuts,
	AllergySoy, AllergyShellfish, AllergyEggs,
}

// IsValid checks if an allergy is valid
func (a Allergy) IsValid() bool {
	switch a {
	case AllergyGluten, AllergyDairy, AllergyNuts, AllergySoy, AllergyShellfish, AllergyEggs:
		return true
	}
	return false
}

// DisplayName returns the label shown next to the checkbox
func (a Allergy) DisplayName() string {
	switch a {
	case AllergyGluten:
		return "Gluten"
	case AllergyDairy:
		return "Dairy"
	case AllergyNuts:
		return "Nuts"
	case AllergySoy:
		return "Soy"
	case AllergyShellfish:
		return "Shellfish"
	case AllergyEggs:
		return "Eggs"
	}
	return string(a)
}

// UniqueTags drops duplicates and empty strings, keeping first-seen order.
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
