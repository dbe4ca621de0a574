package models

import "strings"

// Category is one of the fixed item types offered by the form
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryShoes       Category = "Shoes"
	CategoryBags        Category = "Bags"
	CategoryFurniture   Category = "Furniture"
	CategoryBooks       Category = "Books"
	CategoryOther       Category = "Other"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryShoes,
	CategoryBags,
	CategoryFurniture,
	CategoryBooks,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryElectronics: "전자기기",
	CategoryClothing:    "의류",
	CategoryShoes:       "신발",
	CategoryBags:        "가방",
	CategoryFurniture:   "가구",
	CategoryBooks:       "도서",
	CategoryOther:       "기타",
}

// Label returns the Korean display label of the category
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Valid reports whether c is part of the fixed enumeration
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts either the English name (any case) or the Korean label
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || s == categoryLabels[c] {
			return c, true
		}
	}
	return "", false
}

// ItemSubmission is a single user request. It is never persisted.
type ItemSubmission struct {
	Description string
	Category    Category
	Image       []byte
	ImageMIME   string
}

// HasImage reports whether an image survived validation
func (s *ItemSubmission) HasImage() bool {
	return len(s.Image) > 0
}

type PriceEstimate struct {
	Amount    *int64   `json:"amount,omitempty"`
	Basis     string   `json:"basis"`
	Outlook   string   `json:"outlook,omitempty"`
	Tips      string   `json:"tips,omitempty"`
	Rationale []string `json:"rationale,omitempty"`
	Raw       string   `json:"raw,omitempty"`
	Strategy  string   `json:"strategy"`
}

// HasAmount reports whether a numeric estimate was produced
func (e *PriceEstimate) HasAmount() bool {
	return e != nil && e.Amount != nil
}

type CategoryPriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}
