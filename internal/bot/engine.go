package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"steam-topup-bot/pkg/funpay"
)

// Engine drives a session through buyer messages.
type Engine struct {
	store    *Store
	mp       Marketplace
	logins   LoginChecker
	payments *Payments
	logger   *zap.Logger
	now      func() time.Time
}

func NewEngine(store *Store, mp Marketplace, logins LoginChecker, payments *Payments, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		mp:       mp,
		logins:   logins,
		payments: payments,
		logger:   logger,
		now:      time.Now,
	}
}

// OnMessage advances the session in response to one buyer message. The text
// is expected trimmed.
func (e *Engine) OnMessage(ctx context.Context, sess *Session, text, authorID string) {
	authorID = funpay.NormalizeID(authorID)
	if sess.BuyerID != "" && authorID != sess.BuyerID {
		e.logger.Debug("Message author does not own session, ignoring",
			zap.String("author_id", authorID),
			zap.String("buyer_id", sess.BuyerID))
		return
	}

	if e.store.ExpireIfStale(sess, e.now()) {
		return
	}

	switch sess.Step {
	case StepPaying, StepFinished:
		e.logger.Debug("Message after point of no return, ignoring",
			zap.String("order_id", sess.OrderID),
			zap.String("step", sess.Step))
	case StepWaitingLogin:
		e.handleLogin(ctx, sess, text)
	case StepConfirmLogin:
		e.handleConfirm(ctx, sess, text)
	default:
		e.logger.Warn("Session in unknown step",
			zap.String("order_id", sess.OrderID),
			zap.String("step", sess.Step))
	}
}

func (e *Engine) handleLogin(ctx context.Context, sess *Session, login string) {
	if !e.loginExists(ctx, login) {
		e.send(ctx, sess.ChatID, msgLoginNotFound(login))
		return
	}
	sess.Login = login
	sess.Step = StepConfirmLogin
	e.send(ctx, sess.ChatID, msgConfirmLogin(login, sess.Amount, sess.Currency, sess.SettlementAmount))
	e.logger.Info("Login accepted",
		zap.String("order_id", sess.OrderID),
		zap.String("login", login))
}

func (e *Engine) handleConfirm(ctx context.Context, sess *Session, text string) {
	if sess.Paid {
		e.send(ctx, sess.ChatID, msgAlreadyProcessing)
		return
	}

	if text != "+" {
		// Any other text is a replacement login.
		if !e.loginExists(ctx, text) {
			e.send(ctx, sess.ChatID, msgLoginNotFound(text))
			return
		}
		sess.Login = text
		e.send(ctx, sess.ChatID, msgConfirmLogin(text, sess.Amount, sess.Currency, sess.SettlementAmount))
		e.logger.Info("Login replaced",
			zap.String("order_id", sess.OrderID),
			zap.String("login", text))
		return
	}

	// Point of no return: mark paid before the payment call goes out so a
	// duplicated "+" cannot race a second submission.
	sess.Paid = true
	sess.Step = StepPaying
	defer e.store.Remove(sess)

	if err := e.payments.Process(ctx, sess); err != nil {
		// Payments already compensated.
		return
	}

	sess.Step = StepFinished
	e.completeOrder(ctx, sess)
}

// completeOrder closes the marketplace order after funds were delivered. A
// failure here is never refunded: the top-up has happened, the marketplace
// settles the order on its own timer.
func (e *Engine) completeOrder(ctx context.Context, sess *Session) {
	if err := e.mp.CompleteOrder(ctx, sess.OrderID); err != nil {
		e.logger.Error("Failed to complete marketplace order",
			zap.String("order_id", sess.OrderID),
			zap.Error(err))
		e.send(ctx, sess.ChatID, msgCompletionDelayed)
		return
	}
	e.logger.Info("Order completed", zap.String("order_id", sess.OrderID))
}

func (e *Engine) loginExists(ctx context.Context, login string) bool {
	if login == "" {
		return false
	}
	ok, err := e.logins.CheckLogin(ctx, login)
	if err != nil {
		e.logger.Error("Login check failed",
			zap.String("login", login),
			zap.Error(err))
		return false
	}
	return ok
}

func (e *Engine) send(ctx context.Context, chatID, text string) {
	if err := e.mp.SendMessage(ctx, chatID, text); err != nil {
		e.logger.Error("Failed to send message",
			zap.String("chat_id", chatID),
			zap.Error(err))
	}
}
