package domain

// Preferences is the persisted locale/currency pair for a session.
type Preferences struct {
	Currency string `json:"currency"`
	Locale   string `json:"locale"`
}
