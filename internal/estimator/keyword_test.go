package estimator

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resalelens/server/config"
	"resalelens/server/internal/models"
)

func estimateKeyword(t *testing.T, description string, category models.Category, seed int64) *models.PriceEstimate {
	t.Helper()
	est, err := NewKeywordRule(config.GetPriceRange).Estimate(context.Background(), &models.ItemSubmission{
		Description: description,
		Category:    category,
	}, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	require.NotNil(t, est.Amount)
	return est
}

func TestKeywordRule_AgeThenWear(t *testing.T) {
	est := estimateKeyword(t, "갤럭시 탭 사용 1년, 모서리에 스크래치 있음", models.CategoryElectronics, 7)

	base := drawBase(rand.New(rand.NewSource(7)), config.GetPriceRange(models.CategoryElectronics))
	want := int64(math.Round(float64(base)*0.85*0.90/1000)) * 1000
	assert.Equal(t, want, *est.Amount)

	require.Len(t, est.Rationale, 3)
	assert.Contains(t, est.Rationale[0], "전자기기")
	assert.Contains(t, est.Rationale[1], "1년")
	assert.Contains(t, est.Rationale[1], "0.85")
	assert.Contains(t, est.Rationale[2], "스크래치")
	assert.Contains(t, est.Rationale[2], "0.90")
	assert.Equal(t, "keyword", est.Strategy)
}

func TestKeywordRule_Idempotent(t *testing.T) {
	description := "맥북 프로 2년 사용, 사용감 있지만 깨끗합니다. 풀박스"

	first := estimateKeyword(t, description, models.CategoryElectronics, 42)
	for i := 0; i < 5; i++ {
		again := estimateKeyword(t, description, models.CategoryElectronics, 42)
		assert.Equal(t, *first.Amount, *again.Amount)
		if diff := cmp.Diff(first.Rationale, again.Rationale); diff != "" {
			t.Fatalf("rationale changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestKeywordRule_LaterItemRuleOverwrites(t *testing.T) {
	est := estimateKeyword(t, "운동용 덤벨과 아이폰 일괄 판매", models.CategoryOther, 3)

	// dumbbell first, then phone replaces it
	require.GreaterOrEqual(t, len(est.Rationale), 2)
	assert.Contains(t, est.Rationale[0], "운동기구")
	assert.Contains(t, est.Rationale[1], "스마트폰")

	phone := models.CategoryPriceRange{Min: 300000, Max: 1200000}
	assert.GreaterOrEqual(t, *est.Amount, phone.Min)
	assert.LessOrEqual(t, *est.Amount, phone.Max)
}

func TestKeywordRule_ItemRanges(t *testing.T) {
	tests := []struct {
		name        string
		description string
		category    models.Category
		min, max    int64
		label       string
	}{
		{name: "Dumbbell", description: "10kg 덤벨 한 쌍", category: models.CategoryOther, min: 30000, max: 80000, label: "운동기구"},
		{name: "Laptop", description: "MacBook Air M2", category: models.CategoryElectronics, min: 400000, max: 1500000, label: "노트북"},
		{name: "Phone", description: "아이폰 13 미니", category: models.CategoryElectronics, min: 300000, max: 1200000, label: "스마트폰"},
		{name: "Generic uses category range", description: "원목 식탁", category: models.CategoryFurniture, min: 50000, max: 500000, label: "가구"},
		{name: "Generic books stay in books range", description: "소설책 한 권", category: models.CategoryBooks, min: 5000, max: 50000, label: "도서"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 20; seed++ {
				est := estimateKeyword(t, tt.description, tt.category, seed)
				assert.GreaterOrEqual(t, *est.Amount, tt.min)
				assert.LessOrEqual(t, *est.Amount, tt.max)
				require.Len(t, est.Rationale, 1)
				assert.Contains(t, est.Rationale[0], tt.label)
			}
		})
	}
}

func TestKeywordRule_AgeMarkers(t *testing.T) {
	tests := []struct {
		description string
		factor      float64
	}{
		{description: "노트북 1년 사용", factor: 0.85},
		{description: "노트북 2년 사용", factor: 0.70},
		{description: "노트북 3년 사용", factor: 0.55},
		// only the first marker in rule order applies
		{description: "노트북 3년 전 구매, 1년 사용", factor: 0.85},
	}

	laptop := models.CategoryPriceRange{Min: 400000, Max: 1500000}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			est := estimateKeyword(t, tt.description, models.CategoryElectronics, 11)
			base := drawBase(rand.New(rand.NewSource(11)), laptop)
			assert.Equal(t, int64(math.Round(float64(base)*tt.factor/1000))*1000, *est.Amount)
			assert.Len(t, est.Rationale, 2)
		})
	}
}

func TestKeywordRule_StackedConditions(t *testing.T) {
	est := estimateKeyword(t, "아이폰 미개봉 새상품, 박스 포함", models.CategoryElectronics, 5)

	base := drawBase(rand.New(rand.NewSource(5)), models.CategoryPriceRange{Min: 300000, Max: 1200000})
	assert.Equal(t, int64(math.Round(float64(base)*1.20*1.05/1000))*1000, *est.Amount)
	require.Len(t, est.Rationale, 3)
	assert.Contains(t, est.Rationale[1], "미개봉")
	assert.Contains(t, est.Rationale[2], "박스")
	assert.Equal(t, est.Basis, est.Rationale[0]+" "+est.Rationale[1]+" "+est.Rationale[2])
}

func TestKeywordRule_RequiresRand(t *testing.T) {
	_, err := NewKeywordRule(config.GetPriceRange).Estimate(context.Background(), &models.ItemSubmission{
		Description: "책", Category: models.CategoryBooks,
	}, nil)
	assert.Error(t, err)
}

func TestRoundToThousand(t *testing.T) {
	assert.Equal(t, int64(0), roundToThousand(-5))
	assert.Equal(t, int64(1000), roundToThousand(500))
	assert.Equal(t, int64(298000), roundToThousand(297_512.4))
}
