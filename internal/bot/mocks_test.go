package bot

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"steam-topup-bot/pkg/funpay"
	"steam-topup-bot/pkg/steamapi"
)

// Shared fakes for the bot package tests.

func serverError() error {
	return &steamapi.Error{Op: "create_order", Status: 500, Kind: steamapi.KindServer, Message: "internal error"}
}

type sentMessage struct {
	chatID string
	text   string
}

type fakeMarketplace struct {
	orders map[string]*funpay.Order

	messages  []sentMessage
	refunds   []string
	completes []string

	sendErr     error
	refundErr   error
	completeErr error

	listings    []funpay.ListingRef
	fields      map[string]funpay.ListingFields
	fieldsErr   map[string]error
	saveErr     map[string]error
	saved       []string
	listingsErr error
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{
		orders:    make(map[string]*funpay.Order),
		fields:    make(map[string]funpay.ListingFields),
		fieldsErr: make(map[string]error),
		saveErr:   make(map[string]error),
	}
}

func (f *fakeMarketplace) GetOrder(_ context.Context, orderID string) (*funpay.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	return o, nil
}

func (f *fakeMarketplace) SendMessage(_ context.Context, chatID, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, sentMessage{chatID, text})
	return nil
}

func (f *fakeMarketplace) RefundOrder(_ context.Context, orderID string) error {
	f.refunds = append(f.refunds, orderID)
	return f.refundErr
}

func (f *fakeMarketplace) CompleteOrder(_ context.Context, orderID string) error {
	f.completes = append(f.completes, orderID)
	return f.completeErr
}

func (f *fakeMarketplace) ListingsByCategory(_ context.Context, _ string) ([]funpay.ListingRef, error) {
	if f.listingsErr != nil {
		return nil, f.listingsErr
	}
	return f.listings, nil
}

func (f *fakeMarketplace) ListingFields(_ context.Context, listingID string) (funpay.ListingFields, error) {
	if err := f.fieldsErr[listingID]; err != nil {
		return nil, err
	}
	fields, ok := f.fields[listingID]
	if !ok {
		return nil, errors.New("listing not found")
	}
	return fields, nil
}

func (f *fakeMarketplace) SaveListing(_ context.Context, fields funpay.ListingFields) error {
	if err := f.saveErr[fields.ListingID()]; err != nil {
		return err
	}
	f.saved = append(f.saved, fields.ListingID())
	return nil
}

type fakeProvider struct {
	validLogins map[string]bool
	loginErr    error

	usdRate    decimal.Decimal
	convertErr error

	createErr   error
	payErr      error
	createCalls int
	payCalls    int
	lastLogin   string
	lastUSD     decimal.Decimal

	balance    decimal.Decimal
	balanceErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		validLogins: make(map[string]bool),
		usdRate:     decimal.RequireFromString("0.012"),
		balance:     decimal.NewFromInt(100),
	}
}

func (f *fakeProvider) CheckLogin(_ context.Context, login string) (bool, error) {
	if f.loginErr != nil {
		return false, f.loginErr
	}
	return f.validLogins[login], nil
}

func (f *fakeProvider) ConvertToUSD(_ context.Context, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if f.convertErr != nil {
		return decimal.Zero, f.convertErr
	}
	if currency == "USD" {
		return amount, nil
	}
	return amount.Mul(f.usdRate), nil
}

func (f *fakeProvider) CreateOrder(_ context.Context, _, login string, quantity decimal.Decimal) error {
	f.createCalls++
	f.lastLogin = login
	f.lastUSD = quantity
	return f.createErr
}

func (f *fakeProvider) PayOrder(_ context.Context, _ string) error {
	f.payCalls++
	return f.payErr
}

func (f *fakeProvider) Balance(_ context.Context) (decimal.Decimal, error) {
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.balance, nil
}
