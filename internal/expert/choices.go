package expert

import "github.com/abelbrown/eses/internal/dataset"

var (
	habitats = []string{"Bamboo Forest", "Savannah", "Rainforest", "Grassland", "Arctic", "Mountain", "Ocean", "Coastal"}
	diets    = []string{"Herbivore", "Carnivore", "Omnivore"}
)

// Habitats returns the habitat choices offered by the form.
func Habitats() []string {
	return append([]string(nil), habitats...)
}

// Diets returns the diet choices offered by the form.
func Diets() []string {
	return append([]string(nil), diets...)
}

// HabitatChoices returns Habitats followed by any habitat in t that the
// fixed list does not name, in first-seen order.
func HabitatChoices(t *dataset.Table) []string {
	return extend(habitats, t.Distinct(dataset.Habitat))
}

// DietChoices is HabitatChoices for diets.
func DietChoices(t *dataset.Table) []string {
	return extend(diets, t.Distinct(dataset.Diet))
}

func extend(base, extra []string) []string {
	out := append([]string(nil), base...)
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range extra {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
