package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"steam-topup-bot/pkg/funpay"
)

const testCategory = "1086"

func newIntakeFixture() (*Intake, *Store, *fakeMarketplace, *fakeProvider) {
	logger := zap.NewNop()
	store := NewStore(time.Hour, logger)
	mp := newFakeMarketplace()
	provider := newFakeProvider()
	comp := NewCompensator(mp, true, "", logger)
	intake := NewIntake(store, mp, provider, comp, testCategory, logger)
	return intake, store, mp, provider
}

func walletOrder(desc string) *funpay.Order {
	return &funpay.Order{
		ID:          "1001",
		BuyerID:     "42",
		ChatID:      "7",
		CategoryID:  testCategory,
		Title:       "Пополнение Steam",
		Description: desc,
	}
}

func TestIntakeCreatesSession(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	intake.OnNewOrder(context.Background(), walletOrder("steam_wallet: RUB количество: 20"))

	sess := store.Lookup("", "42", "1001")
	if sess == nil {
		t.Fatal("expected a session registered under the composite key")
	}
	if store.Lookup("", "42", "") != sess {
		t.Error("session not reachable by user key")
	}
	if store.Lookup("7", "", "") != sess {
		t.Error("session not reachable by chat key")
	}

	if sess.Currency != CurrencyRUB {
		t.Errorf("currency: got %s, want RUB", sess.Currency)
	}
	if !sess.Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("amount: got %s, want 20", sess.Amount)
	}
	if sess.Step != StepWaitingLogin {
		t.Errorf("step: got %s, want %s", sess.Step, StepWaitingLogin)
	}

	if len(mp.refunds) != 0 {
		t.Errorf("refunds: got %d, want 0", len(mp.refunds))
	}
	if len(mp.messages) != 1 || !strings.Contains(mp.messages[0].text, "Steam-логин") {
		t.Fatalf("expected a single login prompt, got %v", mp.messages)
	}
}

func TestIntakeIgnoresOtherCategory(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	order := walletOrder("steam_wallet: RUB количество: 20")
	order.CategoryID = "9999"
	intake.OnNewOrder(context.Background(), order)

	if store.Lookup("", "42", "1001") != nil {
		t.Error("session created for a foreign category")
	}
	if len(mp.messages) != 0 || len(mp.refunds) != 0 {
		t.Error("foreign-category order must be ignored silently")
	}
}

func TestIntakeIgnoresDuplicateOrderEvent(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	order := walletOrder("steam_wallet: RUB количество: 20")
	intake.OnNewOrder(context.Background(), order)
	intake.OnNewOrder(context.Background(), order)

	if got := len(mp.messages); got != 1 {
		t.Errorf("login prompts: got %d, want 1", got)
	}
	if store.Lookup("", "42", "1001") == nil {
		t.Error("original session lost after duplicate event")
	}
}

func TestIntakeSecondOrderFromSameBuyer(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	intake.OnNewOrder(context.Background(), walletOrder("steam_wallet: RUB количество: 20"))

	second := walletOrder("steam_wallet: RUB количество: 30")
	second.ID = "2002"
	second.ChatID = "8"
	intake.OnNewOrder(context.Background(), second)

	if store.Lookup("", "42", "1001") == nil {
		t.Error("first session lost after the second order")
	}
	sess := store.Lookup("", "42", "2002")
	if sess == nil {
		t.Fatal("second order from the same buyer did not open a session")
	}
	if !sess.Amount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("second session amount: got %s, want 30", sess.Amount)
	}
	if got := len(mp.messages); got != 2 {
		t.Errorf("login prompts: got %d, want 2", got)
	}
	if len(mp.refunds) != 0 {
		t.Errorf("refunds: %v", mp.refunds)
	}
}

func TestIntakeMissingCurrencyMarker(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	intake.OnNewOrder(context.Background(), walletOrder("пополнение кошелька, количество: 20"))

	assertCompensatedOnce(t, store, mp, "не указана валюта")
}

func TestIntakeUnsupportedCurrency(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	intake.OnNewOrder(context.Background(), walletOrder("steam_wallet: eur количество: 20"))

	assertCompensatedOnce(t, store, mp, "Неверная валюта")
}

func TestIntakeBelowMinimum(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	intake.OnNewOrder(context.Background(), walletOrder("steam_wallet: usd quantity: 0.05"))

	assertCompensatedOnce(t, store, mp, "Минимальная сумма")
}

func TestIntakeAmountUndetermined(t *testing.T) {
	intake, store, mp, _ := newIntakeFixture()

	intake.OnNewOrder(context.Background(), &funpay.Order{
		ID:          "1001",
		BuyerID:     "42",
		ChatID:      "7",
		CategoryID:  testCategory,
		Description: "steam_wallet: rub",
	})

	assertCompensatedOnce(t, store, mp, "сумму пополнения")
}

func TestIntakeConversionFailure(t *testing.T) {
	intake, store, mp, provider := newIntakeFixture()
	provider.convertErr = context.DeadlineExceeded

	intake.OnNewOrder(context.Background(), walletOrder("steam_wallet: RUB количество: 20"))

	assertCompensatedOnce(t, store, mp, "преобразовать валюту")
}

func assertCompensatedOnce(t *testing.T, store *Store, mp *fakeMarketplace, wantText string) {
	t.Helper()
	if store.Lookup("7", "42", "1001") != nil {
		t.Error("no session must be created on a compensated order")
	}
	if got := len(mp.refunds); got != 1 {
		t.Fatalf("refunds: got %d, want 1", got)
	}
	if got := len(mp.messages); got != 1 {
		t.Fatalf("messages: got %d, want exactly the compensation notice", got)
	}
	if !strings.Contains(mp.messages[0].text, wantText) {
		t.Errorf("compensation message %q does not mention %q", mp.messages[0].text, wantText)
	}
}
