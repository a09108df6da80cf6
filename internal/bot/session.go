package bot

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"steam-topup-bot/pkg/funpay"
)

// Conversation steps. A session only moves forward along
// waiting_login → confirm_login → paying → finished.
const (
	StepWaitingLogin = "waiting_login"
	StepConfirmLogin = "confirm_login"
	StepPaying       = "paying"
	StepFinished     = "finished"
)

// Session tracks one order's fulfillment progress in memory.
type Session struct {
	BuyerID string
	ChatID  string
	OrderID string

	Amount           decimal.Decimal
	Currency         Currency
	SettlementAmount decimal.Decimal

	Step      string
	Login     string
	Paid      bool
	CreatedAt time.Time

	indexKeys []string
}

// NewSession builds the initial session for a validated order.
func NewSession(o *funpay.Order, amount decimal.Decimal, currency Currency, settlement decimal.Decimal, now time.Time) *Session {
	return &Session{
		BuyerID:          funpay.NormalizeID(o.BuyerID),
		ChatID:           funpay.NormalizeID(o.ChatID),
		OrderID:          funpay.NormalizeID(o.ID),
		Amount:           amount,
		Currency:         currency,
		SettlementAmount: settlement,
		Step:             StepWaitingLogin,
		CreatedAt:        now,
	}
}

func chatKey(chatID string) string {
	return "chat:" + chatID
}

func userKey(buyerID string) string {
	return "user:" + buyerID
}

func orderKey(buyerID, orderID string) string {
	return "user:" + buyerID + ":order:" + orderID
}

// Store indexes active sessions by chat, buyer and buyer+order, with TTL
// expiry. The event path processes one marketplace event to completion
// before the next, so the maps need no locking.
type Store struct {
	ttl      time.Duration
	sessions map[string][]*Session
	logger   *zap.Logger
	now      func() time.Time
}

func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string][]*Session),
		logger:   logger,
		now:      time.Now,
	}
}

// Put registers the session under every key derivable from its identity.
// Keys whose underlying id is absent are skipped; the derived key set is
// recorded on the session so removal stays all-or-nothing.
func (s *Store) Put(sess *Session) {
	var keys []string
	if sess.ChatID != "" {
		keys = append(keys, chatKey(sess.ChatID))
	}
	if sess.BuyerID != "" {
		keys = append(keys, userKey(sess.BuyerID))
		if sess.OrderID != "" {
			keys = append(keys, orderKey(sess.BuyerID, sess.OrderID))
		}
	}
	for _, k := range keys {
		s.sessions[k] = append(s.sessions[k], sess)
	}
	sess.indexKeys = keys
}

// Lookup resolves a session by the most specific key available: buyer+order,
// then buyer, then chat. A bare user key that maps to more than one session
// is ambiguous and treated as a miss rather than guessed at. A stale session
// found by any key is expired on the spot and reported as a miss.
func (s *Store) Lookup(chatID, authorID, orderID string) *Session {
	if authorID != "" && orderID != "" {
		if found := s.sessions[orderKey(authorID, orderID)]; len(found) > 0 {
			if sess := s.live(found[0]); sess != nil {
				return sess
			}
		}
	}
	if authorID != "" {
		found := s.sessions[userKey(authorID)]
		switch {
		case len(found) == 1:
			if sess := s.live(found[0]); sess != nil {
				return sess
			}
		case len(found) > 1:
			s.logger.Warn("Ambiguous user key, refusing to guess",
				zap.String("buyer_id", authorID),
				zap.Int("sessions", len(found)))
		}
	}
	if chatID != "" {
		if found := s.sessions[chatKey(chatID)]; len(found) > 0 {
			if sess := s.live(found[0]); sess != nil {
				return sess
			}
		}
	}
	return nil
}

// Remove drops the session from every key it was registered under. Safe to
// call twice.
func (s *Store) Remove(sess *Session) {
	for _, k := range sess.indexKeys {
		entries := s.sessions[k]
		for i, e := range entries {
			if e == sess {
				s.sessions[k] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(s.sessions[k]) == 0 {
			delete(s.sessions, k)
		}
	}
	sess.indexKeys = nil
}

// ExpireIfStale removes the session when its age exceeds the store TTL and
// reports whether it did.
func (s *Store) ExpireIfStale(sess *Session, now time.Time) bool {
	if now.Sub(sess.CreatedAt) <= s.ttl {
		return false
	}
	s.logger.Info("Session expired",
		zap.String("order_id", sess.OrderID),
		zap.String("buyer_id", sess.BuyerID),
		zap.Time("created_at", sess.CreatedAt))
	s.Remove(sess)
	return true
}

func (s *Store) live(sess *Session) *Session {
	if s.ExpireIfStale(sess, s.now()) {
		return nil
	}
	return sess
}
