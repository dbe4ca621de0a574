package estimator

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resalelens/server/config"
	"resalelens/server/internal/models"
)

func TestTemplate_Estimate(t *testing.T) {
	require.NoError(t, config.LoadTemplates(""))
	strategy := NewTemplate(config.GetTemplate)

	expected := map[models.Category]int64{
		models.CategoryElectronics: 350000,
		models.CategoryClothing:    25000,
		models.CategoryShoes:       75000,
		models.CategoryBags:        120000,
		models.CategoryFurniture:   85000,
		models.CategoryBooks:       8000,
		models.CategoryOther:       45000,
	}

	for category, amount := range expected {
		est, err := strategy.Estimate(context.Background(), &models.ItemSubmission{
			Description: "무엇이든",
			Category:    category,
		}, nil)
		require.NoError(t, err, category)
		require.NotNil(t, est.Amount, category)
		assert.Equal(t, amount, *est.Amount, category)
		assert.NotEmpty(t, est.Basis, category)
		assert.NotEmpty(t, est.Outlook, category)
		assert.NotEmpty(t, est.Tips, category)
		assert.Equal(t, "template", est.Strategy)
	}
}

func TestTemplate_IgnoresDescriptionAndImage(t *testing.T) {
	require.NoError(t, config.LoadTemplates(""))
	strategy := NewTemplate(config.GetTemplate)

	a, err := strategy.Estimate(context.Background(), &models.ItemSubmission{
		Description: "아이폰 1년 스크래치", Category: models.CategoryShoes,
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	b, err := strategy.Estimate(context.Background(), &models.ItemSubmission{
		Description: "완전히 다른 설명", Category: models.CategoryShoes, Image: []byte{1, 2, 3},
	}, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTemplate_LookupError(t *testing.T) {
	strategy := NewTemplate(func(models.Category) (string, error) {
		return "", errors.New("templates not loaded")
	})
	_, err := strategy.Estimate(context.Background(), &models.ItemSubmission{Category: models.CategoryBooks}, nil)
	assert.Error(t, err)
}
