package service

import "github.com/shopspring/decimal"

// BusinessError is a rejection the client is expected to render: a
// machine code plus Uzbek and Russian messages. Total and Remaining are
// set only on the minimum-order rejection.
type BusinessError struct {
	Code      string           `json:"error"`
	MessageUz string           `json:"message_uz"`
	MessageRu string           `json:"message_ru"`
	Total     *decimal.Decimal `json:"total,omitempty"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
}

func (e *BusinessError) Error() string {
	return e.Code
}

// minimumOrderError copies ErrMinimumOrderNotReached and attaches the
// evaluated cart total and the shortfall, so the client can render
// progress toward the wholesale threshold.
func minimumOrderError(gate GateResult) *BusinessError {
	e := *ErrMinimumOrderNotReached
	e.Total = &gate.Total
	e.Remaining = &gate.Remaining
	return &e
}

var (
	// ErrMinimumOrderNotReached distinguishes the wholesale-minimum
	// rejection so the client can render progress toward the threshold.
	ErrMinimumOrderNotReached = &BusinessError{
		Code:      "MINIMUM_ORDER_NOT_REACHED",
		MessageUz: "Minimal buyurtma miqdori 500 000 so'm. Savatingizni to'ldiring.",
		MessageRu: "Минимальная сумма заказа 500 000 сум. Пополните корзину.",
	}

	ErrEmptyCart = &BusinessError{
		Code:      "CART_EMPTY",
		MessageUz: "Savatingiz bo'sh.",
		MessageRu: "Ваша корзина пуста.",
	}

	ErrInvalidCardNumber = &BusinessError{
		Code:      "INVALID_CARD_NUMBER",
		MessageUz: "Karta raqami noto'g'ri. 8600 yoki 9860 bilan boshlanadigan 16 xonali raqam kiriting.",
		MessageRu: "Неверный номер карты. Введите 16-значный номер, начинающийся с 8600 или 9860.",
	}

	ErrPaymentAlreadyProcessed = &BusinessError{
		Code:      "PAYMENT_ALREADY_PROCESSED",
		MessageUz: "Bu buyurtma uchun to'lov allaqachon amalga oshirilgan.",
		MessageRu: "Оплата по этому заказу уже обработана.",
	}

	ErrPaymentInProgress = &BusinessError{
		Code:      "PAYMENT_IN_PROGRESS",
		MessageUz: "To'lov hozirda amalga oshirilmoqda. Birozdan so'ng urinib ko'ring.",
		MessageRu: "Платёж уже обрабатывается. Повторите попытку чуть позже.",
	}

	ErrMissingBankDetails = &BusinessError{
		Code:      "MISSING_BANK_DETAILS",
		MessageUz: "Bank rekvizitlari to'liq emas.",
		MessageRu: "Банковские реквизиты указаны не полностью.",
	}
)
