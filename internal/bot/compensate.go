package bot

import (
	"context"

	"go.uber.org/zap"
)

// Compensator performs the uniform failure path: explain the failure to the
// buyer and, when enabled, refund the marketplace order.
type Compensator struct {
	mp          Marketplace
	autoRefund  bool
	adminChatID string
	logger      *zap.Logger
}

func NewCompensator(mp Marketplace, autoRefund bool, adminChatID string, logger *zap.Logger) *Compensator {
	return &Compensator{
		mp:          mp,
		autoRefund:  autoRefund,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Compensate notifies the buyer and issues the refund if enabled. A refund
// failure is reported to the operator channel and never retried: the payment
// state behind a failed refund is unknown, and a second attempt risks a
// double refund or masking a real billing error.
func (c *Compensator) Compensate(ctx context.Context, chatID, orderID, reason string) {
	c.logger.Info("Compensating order",
		zap.String("order_id", orderID),
		zap.String("reason", reason))

	if chatID != "" {
		suffix := msgRefundManual
		if c.autoRefund {
			suffix = msgRefundAuto
		}
		if err := c.mp.SendMessage(ctx, chatID, reason+suffix); err != nil {
			c.logger.Error("Failed to notify buyer",
				zap.String("chat_id", chatID),
				zap.Error(err))
		}
	}

	if orderID == "" || !c.autoRefund {
		return
	}
	if err := c.mp.RefundOrder(ctx, orderID); err != nil {
		c.logger.Error("Refund call failed, manual follow-up required",
			zap.String("order_id", orderID),
			zap.Error(err))
		c.alertOperator(ctx, msgRefundFailedAlert(orderID, err))
	}
}

func (c *Compensator) alertOperator(ctx context.Context, text string) {
	if c.adminChatID == "" {
		return
	}
	if err := c.mp.SendMessage(ctx, c.adminChatID, text); err != nil {
		c.logger.Error("Failed to alert operator", zap.Error(err))
	}
}
