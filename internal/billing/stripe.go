package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(apiKey string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	return customer.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(p.CustomerID),
		Mode:     stripe.String(string(p.Mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(p.Quantity),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	return session.URL, nil
}

func (g *StripeGateway) ListCharges(ctx context.Context, customerID, startingAfter string, limit int64) (ChargePage, error) {
	params := &stripe.ChargeListParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	// one page per call; the orchestrator drives the cursor loop
	params.Single = true
	if startingAfter != "" {
		params.StartingAfter = stripe.String(startingAfter)
	}

	iter := g.api.Charges.List(params)
	var page ChargePage
	for iter.Next() {
		charge := iter.Charge()
		page.Charges = append(page.Charges, Charge{
			ID:       charge.ID,
			Amount:   charge.Amount,
			Currency: string(charge.Currency),
			Status:   string(charge.Status),
			Created:  charge.Created,
		})
	}
	if err := iter.Err(); err != nil {
		return ChargePage{}, wrapStripeErr(err)
	}
	page.HasMore = iter.ChargeList().HasMore
	return page, nil
}

func wrapStripeErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &GatewayError{Msg: stripeErr.Msg}
	}
	return &GatewayError{Msg: err.Error()}
}
