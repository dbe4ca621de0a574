package estimator

import (
	"regexp"
	"strconv"
	"strings"

	"resalelens/server/internal/models"
)

const (
	labelBasis   = "Analysis Basis:"
	labelOutlook = "Market Outlook:"
	labelTips    = "Trading Tips:"
)

var (
	labelledPriceRx = regexp.MustCompile(`Estimated Price:\s*([\d,]+)\s*KRW`)
	anyPriceRx      = regexp.MustCompile(`([\d,]+)\s*KRW`)
)

// ExtractPrice finds the estimated amount in a free-form reply. It returns nil when no
// "<digits> KRW" figure can be parsed; it never fabricates a zero.
func ExtractPrice(text string) *int64 {
	for _, rx := range []*regexp.Regexp{labelledPriceRx, anyPriceRx} {
		for _, match := range rx.FindAllStringSubmatch(text, -1) {
			digits := strings.ReplaceAll(match[1], ",", "")
			if digits == "" {
				continue
			}
			amount, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				continue
			}
			return &amount
		}
	}
	return nil
}

// ParseReply splits a reply in the four-line format into an estimate
func ParseReply(text string) *models.PriceEstimate {
	est := &models.PriceEstimate{
		Amount: ExtractPrice(text),
		Raw:    text,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "*-# "))
		switch {
		case strings.HasPrefix(line, labelBasis):
			est.Basis = labelValue(line, labelBasis)
		case strings.HasPrefix(line, labelOutlook):
			est.Outlook = labelValue(line, labelOutlook)
		case strings.HasPrefix(line, labelTips):
			est.Tips = labelValue(line, labelTips)
		}
	}
	return est
}

// labelValue also drops markdown emphasis some models wrap labels in
func labelValue(line, label string) string {
	return strings.Trim(strings.TrimPrefix(line, label), "* ")
}
