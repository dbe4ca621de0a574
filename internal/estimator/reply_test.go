package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int64
	}{
		{
			name: "Labelled price",
			text: "Estimated Price: 350,000 KRW\nAnalysis Basis: ...",
			want: ptr(350000),
		},
		{
			name: "Labelled price wins over earlier bare figure",
			text: "새 제품은 900,000 KRW 입니다.\nEstimated Price: 420,000 KRW",
			want: ptr(420000),
		},
		{
			name: "Bare KRW figure",
			text: "I would ask around 75,000 KRW for it.",
			want: ptr(75000),
		},
		{
			name: "No separators",
			text: "Estimated Price: 8000KRW",
			want: ptr(8000),
		},
		{
			name: "Only commas before KRW",
			text: "Estimated Price: , KRW and later 12,000 KRW",
			want: ptr(12000),
		},
		{
			name: "No KRW token",
			text: "Estimated Price: 350,000 won",
			want: nil,
		},
		{
			name: "Empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPrice(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseReply(t *testing.T) {
	text := "Estimated Price: 120,000 KRW\n" +
		"**Analysis Basis:** 브랜드 가방입니다.\n" +
		"Market Outlook: 수요가 꾸준합니다.\n" +
		"- Trading Tips: 정품 인증을 첨부하세요.\n"

	est := ParseReply(text)
	require.NotNil(t, est.Amount)
	assert.Equal(t, int64(120000), *est.Amount)
	assert.Equal(t, "브랜드 가방입니다.", est.Basis)
	assert.Equal(t, "수요가 꾸준합니다.", est.Outlook)
	assert.Equal(t, "정품 인증을 첨부하세요.", est.Tips)
	assert.Equal(t, text, est.Raw)
}

func ptr(v int64) *int64 { return &v }
