package models

// EnrolledCard is the reference record for a card known to the processor:
// the authorizing bank, the account limit and the stored card code used for
// authorization. Records are read-only once the store is bootstrapped.
type EnrolledCard struct {
	ID              string  `json:"id"`
	CustomerID      string  `json:"customer_id"`
	Name            string  `json:"name"`
	AuthorizingBank string  `json:"authorizing_bank"`
	CardCode        string  `json:"card_code"`
	CardLimit       FlexInt `json:"card_limit"`
	Currency        string  `json:"currency"`
	ExpMonth        FlexInt `json:"exp_month"`
	ExpYear         FlexInt `json:"exp_year"`
	ZipCode         string  `json:"zip_code"`
}
