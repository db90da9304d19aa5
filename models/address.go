package models

// Address is the address snapshot stored on payment and order records.
// It is embedded with a column prefix, e.g. billing_state, shipping_state.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country" gorm:"default:India"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone,omitempty"`
	Landmark   string `json:"landmark,omitempty"`
}
