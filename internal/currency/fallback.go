package currency

// staticRates is the bundled fallback table, relative to USD. Used until the
// first successful fetch and underneath every merged fetch so a shrunken
// payload cannot drop a currency entirely.
var staticRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"CAD": 1.36,
	"AUD": 1.52,
	"NZD": 1.64,
	"CHF": 0.88,
	"JPY": 149.50,
	"KRW": 1330.0,
	"CNY": 7.24,
	"TWD": 31.90,
	"HKD": 7.82,
	"SGD": 1.34,
	"INR": 83.10,
	"IDR": 15600.0,
	"VND": 24500.0,
	"THB": 35.80,
	"BRL": 4.97,
	"MXN": 17.15,
	"ARS": 860.0,
	"SEK": 10.45,
	"NOK": 10.60,
	"DKK": 6.86,
	"PLN": 3.98,
	"CZK": 23.30,
	"TRY": 32.20,
	"RUB": 92.50,
	"UAH": 39.40,
	"ZAR": 18.70,
	"NGN": 1450.0,
	"AED": 3.67,
	"SAR": 3.75,
	"ILS": 3.70,
}
