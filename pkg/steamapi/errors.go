package steamapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a provider failure for the compensation path.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindRateLimited
	KindServer
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server_error"
	case KindClient:
		return "client_error"
	default:
		return "unknown"
	}
}

// UserMessage is the buyer-facing explanation for a failure of this kind.
func (k Kind) UserMessage() string {
	switch k {
	case KindAuth:
		return "Ошибка авторизации сервиса. Уже разбираемся — оформим возврат."
	case KindRateLimited:
		return "Сервис перегружен. Попробуйте оформить заказ чуть позже — мы сделаем возврат."
	case KindServer:
		return "У сервиса технические неполадки. Мы вернём средства."
	case KindClient:
		return "Запрос отклонён сервисом. Мы вернём средства."
	default:
		return "Не удалось выполнить запрос. Мы вернём средства."
	}
}

// Error is a classified provider failure.
type Error struct {
	Op      string
	Status  int
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("steamapi: %s: HTTP %d (%s): %s", e.Op, e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("steamapi: %s: HTTP %d (%s)", e.Op, e.Status, e.Kind)
}

// ClassifyErr extracts the failure kind from any error returned by the
// client. Transport failures (timeouts included) classify as unknown.
func ClassifyErr(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func classify(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindClient
	default:
		return KindUnknown
	}
}
