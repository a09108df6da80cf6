package bot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"steam-topup-bot/pkg/funpay"
)

// Intake validates a fresh marketplace order and opens its session. Every
// rejection past the category filter is terminal and compensated.
type Intake struct {
	store      *Store
	mp         Marketplace
	converter  Converter
	comp       *Compensator
	categoryID string
	logger     *zap.Logger
	now        func() time.Time
}

func NewIntake(store *Store, mp Marketplace, converter Converter, comp *Compensator, categoryID string, logger *zap.Logger) *Intake {
	return &Intake{
		store:      store,
		mp:         mp,
		converter:  converter,
		comp:       comp,
		categoryID: categoryID,
		logger:     logger,
		now:        time.Now,
	}
}

// OnNewOrder validates the order and either opens a session or compensates.
func (i *Intake) OnNewOrder(ctx context.Context, o *funpay.Order) {
	if funpay.NormalizeID(o.CategoryID) != i.categoryID {
		i.logger.Debug("Order outside configured category, ignoring",
			zap.String("order_id", o.ID),
			zap.String("category_id", o.CategoryID))
		return
	}

	orderID := funpay.NormalizeID(o.ID)
	buyerID := funpay.NormalizeID(o.BuyerID)
	chatID := funpay.NormalizeID(o.ChatID)

	// The lookup may fall through to the bare user key and return the
	// buyer's session for a different in-flight order; only an exact order
	// match is a duplicate.
	if existing := i.store.Lookup("", buyerID, orderID); existing != nil && existing.OrderID == orderID {
		i.logger.Warn("Duplicate new-order event, ignoring", zap.String("order_id", orderID))
		return
	}

	i.logger.Info("New order",
		zap.String("order_id", orderID),
		zap.String("buyer_id", buyerID),
		zap.String("title", o.Title))

	currency, err := ParseWalletCurrency(o.DescriptionText())
	if err != nil {
		reason := msgMissingCurrency
		if errors.Is(err, ErrCurrencyUnsupported) {
			reason = msgUnsupportedCurrency(string(currency))
		}
		i.comp.Compensate(ctx, chatID, orderID, reason)
		return
	}

	amount, source, err := ExtractAmount(o)
	if err != nil {
		i.comp.Compensate(ctx, chatID, orderID, msgAmountUndetermined)
		return
	}
	i.logger.Info("Order amount",
		zap.String("order_id", orderID),
		zap.String("amount", amount.String()),
		zap.String("currency", string(currency)),
		zap.String("source", source))

	if min := minAmounts[currency]; amount.LessThan(min) {
		i.comp.Compensate(ctx, chatID, orderID, msgBelowMinimum(min, currency))
		return
	}

	settlement, err := i.converter.ConvertToUSD(ctx, string(currency), amount)
	if err != nil {
		i.logger.Error("Currency conversion failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		i.comp.Compensate(ctx, chatID, orderID, msgConversionFailed)
		return
	}

	sess := NewSession(o, amount, currency, settlement, i.now())
	i.store.Put(sess)

	if err := i.mp.SendMessage(ctx, chatID, msgGreeting(amount, currency, settlement)); err != nil {
		i.logger.Error("Failed to send login prompt",
			zap.String("chat_id", chatID),
			zap.Error(err))
	}
	i.logger.Info("Waiting for buyer login",
		zap.String("buyer_id", buyerID),
		zap.String("order_id", orderID))
}
