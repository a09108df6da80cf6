package bot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"steam-topup-bot/pkg/funpay"
	"steam-topup-bot/pkg/steamapi"
)

// Payments submits the two-phase provider payment and runs the balance-safety
// side effects when either phase fails.
type Payments struct {
	provider       Provider
	mp             Marketplace
	comp           *Compensator
	minBalance     decimal.Decimal
	autoDeactivate bool
	categoryID     string
	logger         *zap.Logger

	newCorrelationID func() string
}

func NewPayments(provider Provider, mp Marketplace, comp *Compensator, minBalance decimal.Decimal, autoDeactivate bool, categoryID string, logger *zap.Logger) *Payments {
	return &Payments{
		provider:         provider,
		mp:               mp,
		comp:             comp,
		minBalance:       minBalance,
		autoDeactivate:   autoDeactivate,
		categoryID:       categoryID,
		logger:           logger,
		newCorrelationID: uuid.NewString,
	}
}

// Process submits a create/pay pair under a fresh correlation id. The pay
// call goes out only if creation succeeded; any failure classifies the
// error, runs the balance floor check and compensates exactly once.
func (p *Payments) Process(ctx context.Context, sess *Session) error {
	customID := p.newCorrelationID()
	p.logger.Info("Creating provider order",
		zap.String("custom_id", customID),
		zap.String("order_id", sess.OrderID),
		zap.String("login", sess.Login),
		zap.String("usd_amount", sess.SettlementAmount.StringFixed(2)))

	if err := p.provider.CreateOrder(ctx, customID, sess.Login, sess.SettlementAmount); err != nil {
		p.fail(ctx, sess, err, "create_order")
		return fmt.Errorf("create order: %w", err)
	}

	p.logger.Info("Paying provider order", zap.String("custom_id", customID))
	if err := p.provider.PayOrder(ctx, customID); err != nil {
		p.fail(ctx, sess, err, "pay_order")
		return fmt.Errorf("pay order: %w", err)
	}

	msg := msgPaymentDone(sess.Login, sess.Amount, sess.Currency, sess.SettlementAmount, funpay.OrderLink(sess.OrderID))
	if err := p.mp.SendMessage(ctx, sess.ChatID, msg); err != nil {
		p.logger.Error("Failed to send completion notice",
			zap.String("chat_id", sess.ChatID),
			zap.Error(err))
	}
	p.logger.Info("Top-up delivered",
		zap.String("order_id", sess.OrderID),
		zap.String("login", sess.Login))
	return nil
}

func (p *Payments) fail(ctx context.Context, sess *Session, err error, op string) {
	kind := steamapi.ClassifyErr(err)
	p.logger.Error("Provider call failed",
		zap.String("op", op),
		zap.String("order_id", sess.OrderID),
		zap.String("kind", kind.String()),
		zap.Error(err))

	p.checkBalanceFloor(ctx)
	p.comp.Compensate(ctx, sess.ChatID, sess.OrderID, "❌ "+kind.UserMessage())
}

// checkBalanceFloor deactivates the catalog category when the provider
// balance has fallen below the floor, so listings stop selling top-ups the
// account can no longer cover.
func (p *Payments) checkBalanceFloor(ctx context.Context) {
	balance, err := p.provider.Balance(ctx)
	if err != nil {
		p.logger.Error("Balance check failed", zap.Error(err))
		balance = decimal.Zero
	}
	p.logger.Info("Provider balance", zap.String("balance", balance.String()))

	if balance.GreaterThanOrEqual(p.minBalance) || !p.autoDeactivate {
		return
	}

	p.logger.Warn("Balance below floor, deactivating category listings",
		zap.String("balance", balance.String()),
		zap.String("floor", p.minBalance.String()))
	changed, skipped, failed := p.SetCategoryActive(ctx, p.categoryID, false)
	p.logger.Warn("Category deactivation finished",
		zap.Int("changed", changed),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.String("category_id", p.categoryID))
}

// SetCategoryActive flips the active flag on every listing in the category.
// A listing whose fields cannot be read or saved is counted and skipped; the
// batch keeps going.
func (p *Payments) SetCategoryActive(ctx context.Context, categoryID string, active bool) (changed, skipped, failed int) {
	listings, err := p.mp.ListingsByCategory(ctx, categoryID)
	if err != nil {
		p.logger.Error("Failed to enumerate category listings",
			zap.String("category_id", categoryID),
			zap.Error(err))
		return 0, 0, 0
	}

	for _, ref := range listings {
		fields, err := p.mp.ListingFields(ctx, ref.ID)
		if err != nil {
			p.logger.Error("Failed to read listing fields",
				zap.String("listing_id", ref.ID),
				zap.Error(err))
			failed++
			continue
		}
		if fields.IsActive() == active {
			skipped++
			continue
		}
		fields.SetActive(active)
		if err := p.mp.SaveListing(ctx, fields); err != nil {
			p.logger.Error("Failed to save listing",
				zap.String("listing_id", ref.ID),
				zap.Error(err))
			failed++
			continue
		}
		changed++
		p.logger.Info("Listing updated",
			zap.String("listing_id", ref.ID),
			zap.Bool("active", active))
	}
	return changed, skipped, failed
}
