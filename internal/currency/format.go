package currency

import (
	"context"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatOptions overrides the session defaults for a single call.
type FormatOptions struct {
	Currency string
	Locale   string
	// SkipConversion formats the amount as-is, used for reference prices
	// like "1 USD = X".
	SkipConversion bool
	// Rate overrides the table rate when positive.
	Rate float64
}

// Format converts amount into the session currency and renders it per the
// session locale.
func (s *Service) Format(ctx context.Context, sessionID string, amount float64) string {
	return s.FormatWith(ctx, sessionID, amount, FormatOptions{})
}

func (s *Service) FormatWith(ctx context.Context, sessionID string, amount float64, opts FormatOptions) string {
	prefs := s.Preferences(ctx, sessionID)

	code := opts.Currency
	if code == "" {
		code = prefs.Currency
	}
	locale := opts.Locale
	if locale == "" {
		locale = prefs.Locale
	}

	value := amount
	if !opts.SkipConversion {
		rate := opts.Rate
		if rate <= 0 {
			rate = s.Rate(code)
		}
		value = amount * rate
	}

	return formatAmount(value, code, locale)
}

func formatAmount(value float64, code, locale string) string {
	tag, err := language.Parse(NormalizeLocale(locale))
	if err != nil {
		tag = language.AmericanEnglish
	}
	printer := message.NewPrinter(tag)

	unit, err := xcurrency.ParseISO(code)
	if err != nil {
		// Unknown code: still show something rather than failing.
		return printer.Sprintf("%s %.2f", code, value)
	}
	return printer.Sprint(xcurrency.Symbol(unit.Amount(value)))
}
