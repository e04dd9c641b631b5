package billing

import "context"

// CheckoutMode selects between a one-time payment and a subscription.
type CheckoutMode string

const (
	ModePayment      CheckoutMode = "payment"
	ModeSubscription CheckoutMode = "subscription"
)

// Charge is a single provider charge, amounts in minor units.
type Charge struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
	Created  int64
}

// ChargePage is one page of a customer's charge history.
type ChargePage struct {
	Charges []Charge
	HasMore bool
}

// CheckoutParams describes a provider-hosted checkout session.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	Quantity   int64
	Mode       CheckoutMode
	SuccessURL string
	CancelURL  string
}

// Gateway is a thin typed facade over the payment provider. Calls are
// synchronous and never retried; provider failures surface as *GatewayError.
type Gateway interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
	ListCharges(ctx context.Context, customerID, startingAfter string, limit int64) (ChargePage, error)
}

// GatewayError wraps any provider-side failure with its message.
type GatewayError struct {
	Msg string
}

func (e *GatewayError) Error() string {
	return e.Msg
}
