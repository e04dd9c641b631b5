package billing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	pages         []ChargePage
	calls         int
	cursors       []string
	checkouts     []CheckoutParams
	checkoutURL   string
	checkoutErr   error
	listErr       error
	alwaysHasMore bool
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, email string) (string, error) {
	return "cus_fake", nil
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	f.checkouts = append(f.checkouts, params)
	if f.checkoutErr != nil {
		return "", f.checkoutErr
	}
	return f.checkoutURL, nil
}

func (f *fakeGateway) ListCharges(ctx context.Context, customerID, startingAfter string, limit int64) (ChargePage, error) {
	f.cursors = append(f.cursors, startingAfter)
	call := f.calls
	f.calls++
	if f.listErr != nil {
		return ChargePage{}, f.listErr
	}
	if f.alwaysHasMore {
		return ChargePage{Charges: []Charge{{ID: fmt.Sprintf("ch_%d", call)}}, HasMore: true}, nil
	}
	if call >= len(f.pages) {
		return ChargePage{}, nil
	}
	return f.pages[call], nil
}

func chargePage(start, n int, hasMore bool) ChargePage {
	page := ChargePage{HasMore: hasMore}
	for i := 0; i < n; i++ {
		page.Charges = append(page.Charges, Charge{
			ID:       fmt.Sprintf("ch_%04d", start+i),
			Amount:   1999,
			Currency: "usd",
			Status:   "succeeded",
			Created:  1700000000 + int64(start+i),
		})
	}
	return page
}

func TestListAllChargesPagination(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{pages: []ChargePage{
		chargePage(0, 100, true),
		chargePage(100, 100, true),
		chargePage(200, 100, false),
	}}
	svc := NewService(gw, CheckoutURLs{})

	transactions, err := svc.ListAllCharges(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Len(t, transactions, 300)

	// provider order preserved, cursor is the last id of the previous page
	require.Equal(t, "ch_0000", transactions[0].ID)
	require.Equal(t, "ch_0299", transactions[299].ID)
	require.Equal(t, []string{"", "ch_0099", "ch_0199"}, gw.cursors)

	// normalization: minor units divided by 100, currency upper, status capitalized
	require.Equal(t, 19.99, transactions[0].Amount)
	require.Equal(t, "USD", transactions[0].Currency)
	require.Equal(t, "Succeeded", transactions[0].Status)
}

func TestListAllChargesSinglePage(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{pages: []ChargePage{chargePage(0, 3, false)}}
	svc := NewService(gw, CheckoutURLs{})

	transactions, err := svc.ListAllCharges(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	require.Equal(t, 1, gw.calls)
}

func TestListAllChargesEmptyHistory(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	svc := NewService(gw, CheckoutURLs{})

	transactions, err := svc.ListAllCharges(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Empty(t, transactions)
}

func TestListAllChargesBoundedPages(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{alwaysHasMore: true}
	svc := NewService(gw, CheckoutURLs{})

	_, err := svc.ListAllCharges(context.Background(), "cus_1")
	require.Error(t, err)
	require.Equal(t, maxChargePages, gw.calls)
}

func TestListAllChargesGatewayError(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{listErr: &GatewayError{Msg: "boom"}}
	svc := NewService(gw, CheckoutURLs{})

	_, err := svc.ListAllCharges(context.Background(), "cus_1")
	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
}

func TestCreateCheckoutSessionModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		subscription bool
		wantMode     CheckoutMode
	}{
		{name: "one-time", subscription: false, wantMode: ModePayment},
		{name: "recurring", subscription: true, wantMode: ModeSubscription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{checkoutURL: "https://checkout.example/s"}
			svc := NewService(gw, CheckoutURLs{SuccessURL: "https://ok", CancelURL: "https://no"})

			url, err := svc.CreateCheckoutSession(context.Background(), "price_1", "cus_1", tt.subscription)
			require.NoError(t, err)
			require.Equal(t, "https://checkout.example/s", url)

			require.Len(t, gw.checkouts, 1)
			got := gw.checkouts[0]
			require.Equal(t, tt.wantMode, got.Mode)
			require.Equal(t, int64(1), got.Quantity)
			require.Equal(t, "https://ok", got.SuccessURL)
			require.Equal(t, "https://no", got.CancelURL)
		})
	}
}

func TestCreateCheckoutSessionInvalidRequest(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	svc := NewService(gw, CheckoutURLs{})

	_, err := svc.CreateCheckoutSession(context.Background(), "", "cus_1", false)
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.CreateCheckoutSession(context.Background(), "price_1", "", false)
	require.ErrorIs(t, err, ErrInvalidRequest)

	require.Empty(t, gw.checkouts, "gateway must not be contacted")
}

func TestChargeForUsage(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{checkoutURL: "https://checkout.example/u"}
	svc := NewService(gw, CheckoutURLs{})

	url, err := svc.ChargeForUsage(context.Background(), "cus_1", 42, "price_1")
	require.NoError(t, err)
	require.Equal(t, "https://checkout.example/u", url)

	require.Len(t, gw.checkouts, 1)
	require.Equal(t, int64(42), gw.checkouts[0].Quantity)
	require.Equal(t, ModePayment, gw.checkouts[0].Mode)
}

func TestChargeForUsageInvalidRequest(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	svc := NewService(gw, CheckoutURLs{})

	for _, tc := range []struct {
		customerID string
		units      int64
		priceID    string
	}{
		{"", 1, "price_1"},
		{"cus_1", 0, "price_1"},
		{"cus_1", 1, ""},
	} {
		_, err := svc.ChargeForUsage(context.Background(), tc.customerID, tc.units, tc.priceID)
		require.ErrorIs(t, err, ErrInvalidRequest)
	}
	require.Empty(t, gw.checkouts)
}
