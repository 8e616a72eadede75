package webhook

const (
	EventChargeSuccess = "charge.success"

	Provider = "paystack"
)

// ChargeEvent mirrors the provider's charge notification schema. Amount is
// in minor units (kobo); divide by 100 for the wallet credit.
type ChargeEvent struct {
	Event string     `json:"event"`
	Data  ChargeData `json:"data"`
}

type ChargeData struct {
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency"`
	Status    string   `json:"status"`
	Channel   string   `json:"channel"`
	Customer  Customer `json:"customer"`
}

type Customer struct {
	Email string `json:"email"`
}
