package currency

import "strings"

// localeCurrencies maps a normalized locale tag to the currency a visitor
// from that locale most likely prices in. Anything missing falls back to the
// base currency.
var localeCurrencies = map[string]string{
	"en-US": "USD",
	"en-GB": "GBP",
	"en-CA": "CAD",
	"en-AU": "AUD",
	"en-NZ": "NZD",
	"en-IE": "EUR",
	"en-IN": "INR",
	"en-SG": "SGD",
	"en-HK": "HKD",
	"en-ZA": "ZAR",
	"en-NG": "NGN",
	"fr-FR": "EUR",
	"fr-CA": "CAD",
	"fr-CH": "CHF",
	"de-DE": "EUR",
	"de-AT": "EUR",
	"de-CH": "CHF",
	"es-ES": "EUR",
	"es-MX": "MXN",
	"es-AR": "ARS",
	"it-IT": "EUR",
	"nl-NL": "EUR",
	"pt-PT": "EUR",
	"pt-BR": "BRL",
	"fi-FI": "EUR",
	"sv-SE": "SEK",
	"nb-NO": "NOK",
	"da-DK": "DKK",
	"pl-PL": "PLN",
	"cs-CZ": "CZK",
	"tr-TR": "TRY",
	"ru-RU": "RUB",
	"uk-UA": "UAH",
	"ar-AE": "AED",
	"ar-SA": "SAR",
	"he-IL": "ILS",
	"ja-JP": "JPY",
	"ko-KR": "KRW",
	"zh-CN": "CNY",
	"zh-TW": "TWD",
	"th-TH": "THB",
	"id-ID": "IDR",
	"vi-VN": "VND",
}

// NormalizeLocale turns runtime-supplied tags ("fr_FR.UTF-8", "en_us") into
// the hyphenated form used everywhere else.
func NormalizeLocale(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexByte(tag, '.'); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ReplaceAll(tag, "_", "-")

	parts := strings.SplitN(tag, "-", 2)
	if len(parts) == 2 {
		return strings.ToLower(parts[0]) + "-" + strings.ToUpper(parts[1])
	}
	return strings.ToLower(tag)
}

// CurrencyForLocale resolves a locale tag to its default currency.
func CurrencyForLocale(tag string) string {
	if code, ok := localeCurrencies[NormalizeLocale(tag)]; ok {
		return code
	}
	return BaseCurrency
}
