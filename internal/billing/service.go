package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest indicates a caller precondition failed; the gateway
// is never contacted in that case.
var ErrInvalidRequest = errors.New("invalid request")

const (
	chargePageSize = 100
	// hard stop for the cursor loop so a misbehaving provider cannot
	// keep a request paging forever
	maxChargePages = 100
)

// Transaction is a charge normalized for presentation: amount in major
// units, currency upper-cased, status capitalized.
type Transaction struct {
	ID       string
	Amount   float64
	Currency string
	Status   string
	Created  int64
}

// Service implements the billing use cases on top of a Gateway. It keeps
// no local state; everything is per-request orchestration.
type Service interface {
	CreateCheckoutSession(ctx context.Context, priceID, customerID string, subscription bool) (string, error)
	ListAllCharges(ctx context.Context, customerID string) ([]Transaction, error)
	ChargeForUsage(ctx context.Context, customerID string, units int64, priceID string) (string, error)
}

// CheckoutURLs are the provider redirect targets for hosted checkout.
type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

type service struct {
	gateway Gateway
	urls    CheckoutURLs
}

func NewService(gateway Gateway, urls CheckoutURLs) Service {
	return &service{
		gateway: gateway,
		urls:    urls,
	}
}

func (s *service) CreateCheckoutSession(ctx context.Context, priceID, customerID string, subscription bool) (string, error) {
	if priceID == "" || customerID == "" {
		return "", fmt.Errorf("%w: missing price ID or customer ID", ErrInvalidRequest)
	}

	mode := ModePayment
	if subscription {
		mode = ModeSubscription
	}

	return s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		Quantity:   1,
		Mode:       mode,
		SuccessURL: s.urls.SuccessURL,
		CancelURL:  s.urls.CancelURL,
	})
}

func (s *service) ListAllCharges(ctx context.Context, customerID string) ([]Transaction, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: missing customer ID", ErrInvalidRequest)
	}

	var all []Charge
	startingAfter := ""
	for page := 0; ; page++ {
		if page >= maxChargePages {
			return nil, fmt.Errorf("charge history for %s exceeds %d pages", customerID, maxChargePages)
		}

		result, err := s.gateway.ListCharges(ctx, customerID, startingAfter, chargePageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Charges...)

		if !result.HasMore || len(result.Charges) == 0 {
			break
		}
		startingAfter = result.Charges[len(result.Charges)-1].ID
	}

	transactions := make([]Transaction, len(all))
	for i, charge := range all {
		transactions[i] = Transaction{
			ID:       charge.ID,
			Amount:   float64(charge.Amount) / 100,
			Currency: strings.ToUpper(charge.Currency),
			Status:   capitalize(charge.Status),
			Created:  charge.Created,
		}
	}
	return transactions, nil
}

func (s *service) ChargeForUsage(ctx context.Context, customerID string, units int64, priceID string) (string, error) {
	if customerID == "" || units <= 0 || priceID == "" {
		return "", fmt.Errorf("%w: missing customer ID, units, or price ID", ErrInvalidRequest)
	}

	return s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		Quantity:   units,
		Mode:       ModePayment,
		SuccessURL: s.urls.SuccessURL,
		CancelURL:  s.urls.CancelURL,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
