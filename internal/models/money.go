package models

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders n with Korean digit grouping, e.g. 350000 -> "350,000"
func FormatAmount(n int64) string {
	return message.NewPrinter(language.Korean).Sprintf("%d", n)
}
