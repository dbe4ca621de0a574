package estimator

import (
	"context"
	"fmt"
	"math/rand"

	"resalelens/server/internal/models"
)

// TemplateLookup returns the pre-written reply for a category
type TemplateLookup func(models.Category) (string, error)

// Template answers from a fixed per-category table. Only the category affects the result.
type Template struct {
	lookup TemplateLookup
}

func NewTemplate(lookup TemplateLookup) *Template {
	return &Template{lookup: lookup}
}

func (t *Template) Name() string { return "template" }

func (t *Template) Estimate(_ context.Context, sub *models.ItemSubmission, _ *rand.Rand) (*models.PriceEstimate, error) {
	reply, err := t.lookup(sub.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to load template for %s: %w", sub.Category, err)
	}

	est := ParseReply(reply)
	est.Strategy = t.Name()
	return est, nil
}
