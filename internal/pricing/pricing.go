// Package pricing quotes the subscription offer in the viewer's regional currency.
//
// The region is inferred from the locale and IANA timezone only; there is no network lookup and no error path.
// Anything that is not recognisably British or continental European is priced in US dollars.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Region is a pricing region.
type Region int

const (
	US Region = iota
	UK
	EU
)

func (r Region) String() string {
	switch r {
	case UK:
		return "UK"
	case EU:
		return "EU"
	default:
		return "US"
	}
}

// Environment is the locale and timezone the quote is computed from. Empty fields mean unknown.
type Environment struct {
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
}

// PricingQuote is the offer for one region.
type PricingQuote struct {
	Region              string  `json:"region"`
	Currency            string  `json:"currency"`
	Symbol              string  `json:"symbol"`
	Original            float64 `json:"original"`
	Discounted          float64 `json:"discounted"`
	OriginalFormatted   string  `json:"original_formatted"`
	DiscountedFormatted string  `json:"discounted_formatted"`
	SavingsPercentage   int     `json:"savings_percentage"`
}

type price struct {
	unit       currency.Unit
	symbol     string
	original   float64
	discounted float64
}

var table = map[Region]price{
	UK: {currency.GBP, "£", 5.99, 0.99},
	EU: {currency.EUR, "€", 6.99, 1.19},
	US: {currency.USD, "$", 7.99, 1.29},
}

var euLanguages = map[string]bool{"de": true, "fr": true, "es": true, "it": true, "nl": true, "pt": true}

var euCities = []string{
	"Berlin", "Paris", "Madrid", "Rome", "Amsterdam", "Brussels", "Vienna", "Lisbon",
	"Dublin", "Athens", "Stockholm", "Copenhagen", "Helsinki", "Warsaw", "Prague", "Budapest",
}

var ukCities = []string{"London", "Edinburgh"}

// NormalizeLocale turns POSIX and BCP 47 locale strings into a canonical BCP 47 tag:
// "en_GB.UTF-8" and "en-gb" both become "en-GB". Unparseable input is returned trimmed.
func NormalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return ""
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	return tag.String()
}

// Classify maps an environment to a region: UK first, then EU, then US.
func Classify(env Environment) Region {
	base, region := splitLocale(env.Locale)

	if (base == "en" && region == "GB") || containsAny(env.Timezone, ukCities) {
		return UK
	}
	if (euLanguages[base] && region != "") || containsAny(env.Timezone, euCities) {
		return EU
	}
	return US
}

// splitLocale returns the language and the explicit region of a locale, or empty strings.
func splitLocale(locale string) (string, string) {
	norm := NormalizeLocale(locale)
	if norm == "" {
		return "", ""
	}
	tag, err := language.Parse(norm)
	if err != nil {
		return "", ""
	}
	base, _ := tag.Base()
	reg, conf := tag.Region()
	if conf != language.Exact {
		return base.String(), ""
	}
	return base.String(), reg.String()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Quote prices the offer for env.
func Quote(env Environment) PricingQuote {
	region := Classify(env)
	p := table[region]
	return PricingQuote{
		Region:              region.String(),
		Currency:            p.unit.String(),
		Symbol:              p.symbol,
		Original:            p.original,
		Discounted:          p.discounted,
		OriginalFormatted:   formatAmount(p, p.original),
		DiscountedFormatted: formatAmount(p, p.discounted),
		SavingsPercentage:   savings(p.original, p.discounted),
	}
}

// DiscountedMinor is the discounted price in the currency's minor unit, as payment providers expect.
func (q PricingQuote) DiscountedMinor() int64 {
	scale := 2
	if unit, err := currency.ParseISO(q.Currency); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}
	return int64(math.Round(q.Discounted * math.Pow10(scale)))
}

func formatAmount(p price, amount float64) string {
	if p.unit == currency.GBP && amount < 1 {
		return fmt.Sprintf("%dp", int(math.Round(amount*100)))
	}
	return fmt.Sprintf("%s%.2f", p.symbol, amount)
}

func savings(original, discounted float64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round(100 * (original - discounted) / original))
}
