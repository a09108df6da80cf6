package bot

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Buyer-facing copy lives in one place so the conversational tone stays
// consistent across components.

const (
	msgAlreadyProcessing  = "⏳ Ваш заказ уже обрабатывается, пожалуйста, подождите."
	msgMissingCurrency    = "⚠️ Ошибка в заказе: не указана валюта (ожидалось `steam_wallet: rub|uah|kzt|usd`)."
	msgAmountUndetermined = "⚠️ Не удалось определить сумму пополнения. Пожалуйста, укажите количество при оформлении заказа."
	msgConversionFailed   = "❌ Не удалось преобразовать валюту. Повторите заказ позже."
	msgCompletionDelayed  = "ℹ️ Пополнение выполнено, но возникла техническая задержка с завершением заказа. Статус обновится автоматически."

	msgRefundAuto   = "\n\nДеньги будут возвращены автоматически."
	msgRefundManual = "\n\n⚠️ Автоматический возврат выключен. Свяжитесь с оператором для возврата."
)

func msgUnsupportedCurrency(raw string) string {
	if raw == "" {
		raw = "—"
	}
	return fmt.Sprintf("⚠️ Неверная валюта: %s. Поддерживаются: RUB, UAH, KZT, USD.", raw)
}

func msgBelowMinimum(min decimal.Decimal, currency Currency) string {
	return fmt.Sprintf("⚠️ Минимальная сумма пополнения — %s %s.", min.String(), currency)
}

func msgGreeting(amount decimal.Decimal, currency Currency, usd decimal.Decimal) string {
	return fmt.Sprintf(
		"👋 Спасибо за заказ!\n\n"+
			"Сумма пополнения: %s %s (≈ %s USD).\n"+
			"Пожалуйста, укажите ваш *Steam-логин* (без почты и телефона).",
		amount.String(), currency, usd.StringFixed(2))
}

func msgLoginNotFound(login string) string {
	return fmt.Sprintf(
		"⚠️ Логин *%s* не найден. Проверьте правильность написания и отправьте ещё раз.\n\n"+
			"Пример: `gabelogannewell`", login)
}

func msgConfirmLogin(login string, amount decimal.Decimal, currency Currency, usd decimal.Decimal) string {
	return fmt.Sprintf(
		"✅ Логин найден!\n\n"+
			"Вы указали: *%s*\n"+
			"Сумма: *%s %s* (≈ *%s USD*)\n\n"+
			"Если всё верно — напишите `+`.\n"+
			"Если нужно изменить логин — просто отправьте новый.",
		login, amount.String(), currency, usd.StringFixed(2))
}

func msgPaymentDone(login string, amount decimal.Decimal, currency Currency, usd decimal.Decimal, reviewLink string) string {
	return fmt.Sprintf(
		"🎉 Готово!\n\n"+
			"Мы пополнили баланс *%s* на *%s %s* (≈ *%s USD*).\n\n"+
			"Заказ завершён. Если всё понравилось, пожалуйста, оставьте отзыв — это очень помогает!\n"+
			"Ссылка на ваш заказ: %s",
		login, amount.String(), currency, usd.StringFixed(2), reviewLink)
}

func msgRefundFailedAlert(orderID string, err error) string {
	return fmt.Sprintf("⚠️ Возврат по заказу %s не прошёл: %v. Требуется ручная проверка.", orderID, err)
}
