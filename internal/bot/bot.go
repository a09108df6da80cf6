package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"steam-topup-bot/pkg/funpay"
)

// Bot consumes the marketplace event feed and routes each event through the
// fulfillment components. Events are processed strictly one at a time, which
// is what lets the session store run lock-free.
type Bot struct {
	mp     Marketplace
	store  *Store
	intake *Intake
	engine *Engine
	logger *zap.Logger
}

func New(mp Marketplace, store *Store, intake *Intake, engine *Engine, logger *zap.Logger) *Bot {
	return &Bot{
		mp:     mp,
		store:  store,
		intake: intake,
		engine: engine,
		logger: logger,
	}
}

// Run drains the event channel until it closes or the context ends.
func (b *Bot) Run(ctx context.Context, events <-chan funpay.Event) error {
	b.logger.Info("Bot started, waiting for marketplace events")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case ev, ok := <-events:
			if !ok {
				b.logger.Info("Event feed closed")
				return nil
			}
			b.handleEvent(ctx, ev)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, ev funpay.Event) {
	switch ev := ev.(type) {
	case funpay.NewOrderEvent:
		// The feed carries only the order id; fetch the full order before intake.
		order, err := b.mp.GetOrder(ctx, ev.OrderID)
		if err != nil {
			b.logger.Error("Failed to load order",
				zap.String("order_id", ev.OrderID),
				zap.Error(err))
			return
		}
		b.intake.OnNewOrder(ctx, order)

	case funpay.NewMessageEvent:
		b.handleMessage(ctx, ev.Message)

	default:
		b.logger.Debug("Unhandled event type, ignoring")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg funpay.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		b.logger.Debug("Message without text, ignoring", zap.String("chat_id", msg.ChatID))
		return
	}

	chatID := funpay.NormalizeID(msg.ChatID)
	authorID := funpay.NormalizeID(msg.AuthorID)

	sess := b.store.Lookup(chatID, authorID, "")
	if sess == nil {
		b.logger.Debug("No session for message",
			zap.String("chat_id", chatID),
			zap.String("author_id", authorID))
		return
	}
	b.engine.OnMessage(ctx, sess, text, authorID)
}
