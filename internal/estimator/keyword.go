package estimator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"resalelens/server/internal/models"
)

// RangeLookup returns the price range of a category
type RangeLookup func(models.Category) models.CategoryPriceRange

type itemRule struct {
	label   string
	markers []string
	price   models.CategoryPriceRange
}

type factorRule struct {
	markers []string
	factor  float64
	reason  string
}

// Item-type rules run in order; a later match replaces an earlier one.
var itemRules = []itemRule{
	{label: "운동기구", markers: []string{"덤벨", "운동", "dumbbell"}, price: models.CategoryPriceRange{Min: 30000, Max: 80000}},
	{label: "노트북", markers: []string{"노트북", "맥북", "macbook", "laptop"}, price: models.CategoryPriceRange{Min: 400000, Max: 1500000}},
	{label: "스마트폰", markers: []string{"아이폰", "iphone"}, price: models.CategoryPriceRange{Min: 300000, Max: 1200000}},
}

// At most one age marker applies; the first one found in this order wins.
var ageRules = []factorRule{
	{markers: []string{"1년"}, factor: 0.85},
	{markers: []string{"2년"}, factor: 0.70},
	{markers: []string{"3년"}, factor: 0.55},
}

// Condition rules stack multiplicatively in this order.
var conditionRules = []factorRule{
	{markers: []string{"스크래치", "사용감"}, factor: 0.90, reason: "사용 흔적이 언급되어"},
	{markers: []string{"깨끗", "양호"}, factor: 1.10, reason: "상태가 좋다고 언급되어"},
	{markers: []string{"미개봉", "새상품"}, factor: 1.20, reason: "새 제품에 가까워"},
	{markers: []string{"고장", "파손"}, factor: 0.50, reason: "고장 또는 파손이 언급되어"},
	{markers: []string{"풀박스", "박스"}, factor: 1.05, reason: "구성품이 갖춰져 있어"},
}

// KeywordRule estimates from substring checks against the description
type KeywordRule struct {
	ranges RangeLookup
}

func NewKeywordRule(ranges RangeLookup) *KeywordRule {
	return &KeywordRule{ranges: ranges}
}

func (k *KeywordRule) Name() string { return "keyword" }

func (k *KeywordRule) Estimate(_ context.Context, sub *models.ItemSubmission, rng *rand.Rand) (*models.PriceEstimate, error) {
	if rng == nil {
		return nil, fmt.Errorf("keyword estimator requires a random source")
	}

	text := strings.ToLower(sub.Description)
	var rationale []string

	price := k.ranges(sub.Category)
	matched := false
	for _, rule := range itemRules {
		marker, ok := findMarker(text, rule.markers)
		if !ok {
			continue
		}
		matched = true
		price = rule.price
		rationale = append(rationale, fmt.Sprintf("설명에 '%s' 키워드가 있어 %s 시세(%s~%s원)를 기준으로 삼았습니다.",
			marker, rule.label, models.FormatAmount(price.Min), models.FormatAmount(price.Max)))
	}
	if !matched {
		rationale = append(rationale, fmt.Sprintf("특정 품목 키워드가 없어 '%s' 카테고리 기본 시세(%s~%s원)를 적용했습니다.",
			sub.Category.Label(), models.FormatAmount(price.Min), models.FormatAmount(price.Max)))
	}

	value := float64(drawBase(rng, price))

	for _, rule := range ageRules {
		marker, ok := findMarker(text, rule.markers)
		if !ok {
			continue
		}
		value *= rule.factor
		rationale = append(rationale, fmt.Sprintf("사용 기간 '%s'이(가) 확인되어 감가율 %.2f를 적용했습니다.", marker, rule.factor))
		break
	}

	for _, rule := range conditionRules {
		marker, ok := findMarker(text, rule.markers)
		if !ok {
			continue
		}
		value *= rule.factor
		rationale = append(rationale, fmt.Sprintf("'%s' 표현으로 보아 %s 가격에 %.2f배를 적용했습니다.", marker, rule.reason, rule.factor))
	}

	amount := roundToThousand(value)
	return &models.PriceEstimate{
		Amount:    &amount,
		Basis:     strings.Join(rationale, " "),
		Outlook:   "키워드 규칙에 기반한 추정치이며, 실제 거래가는 시기와 상태에 따라 달라질 수 있습니다.",
		Tips:      "사용 기간, 외관 상태, 구성품을 설명에 구체적으로 적으면 더 정확한 추정이 가능합니다.",
		Rationale: rationale,
		Strategy:  k.Name(),
	}, nil
}

func findMarker(text string, markers []string) (string, bool) {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return m, true
		}
	}
	return "", false
}

// drawBase picks a uniform integer price in [Min, Max]
func drawBase(rng *rand.Rand, r models.CategoryPriceRange) int64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Int63n(r.Max-r.Min+1)
}

func roundToThousand(v float64) int64 {
	if v < 0 {
		return 0
	}
	return int64(math.Round(v/1000)) * 1000
}
