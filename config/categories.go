package config

import "resalelens/server/internal/models"

// DefaultPriceRange applies to categories outside the fixed table
var DefaultPriceRange = models.CategoryPriceRange{Min: 10000, Max: 200000}

// CategoryPriceRanges holds plausible resale bounds in KRW per category
var CategoryPriceRanges = map[models.Category]models.CategoryPriceRange{
	models.CategoryElectronics: {Min: 100000, Max: 500000},
	models.CategoryClothing:    {Min: 10000, Max: 100000},
	models.CategoryShoes:       {Min: 30000, Max: 200000},
	models.CategoryBags:        {Min: 50000, Max: 300000},
	models.CategoryFurniture:   {Min: 50000, Max: 500000},
	models.CategoryBooks:       {Min: 5000, Max: 50000},
	models.CategoryOther:       {Min: 10000, Max: 200000},
}

// GetPriceRange returns the range for a category, falling back to DefaultPriceRange
func GetPriceRange(category models.Category) models.CategoryPriceRange {
	if r, ok := CategoryPriceRanges[category]; ok {
		return r
	}
	return DefaultPriceRange
}

// CategoryInfo is the public description of a category
type CategoryInfo struct {
	Name  models.Category           `json:"name"`
	Label string                    `json:"label"`
	Range models.CategoryPriceRange `json:"range"`
}

// GetCategoryInfos returns every category with its label and range, in display order
func GetCategoryInfos() []CategoryInfo {
	infos := make([]CategoryInfo, len(models.Categories))
	for i, c := range models.Categories {
		infos[i] = CategoryInfo{
			Name:  c,
			Label: c.Label(),
			Range: GetPriceRange(c),
		}
	}
	return infos
}
