package services

import (
	"errors"
	"log/slog"
)

// GatewayErrorInfo describes one entry of the gateway's closed error vocabulary.
type GatewayErrorInfo struct {
	Name    string
	Code    int
	Message map[string]string
}

var (
	GatewayErrorAmountMismatch = GatewayErrorInfo{
		Name: "AmountMismatch",
		Code: -31001,
		Message: map[string]string{
			"uz": "Noto'g'ri summa",
			"ru": "Недопустимая сумма",
			"en": "Invalid amount",
		},
	}
	GatewayErrorTransactionNotFound = GatewayErrorInfo{
		Name: "TransactionNotFound",
		Code: -31003,
		Message: map[string]string{
			"uz": "Tranzaktsiya topilmadi",
			"ru": "Транзакция не найдена",
			"en": "Transaction not found",
		},
	}
	GatewayErrorAlreadyCompleted = GatewayErrorInfo{
		Name: "AlreadyCompleted",
		Code: -31007,
		Message: map[string]string{
			"uz": "To'lov yakunlangan, bekor qilib bo'lmaydi",
			"ru": "Платёж завершён, отмена невозможна",
			"en": "Payment is completed and cannot be cancelled",
		},
	}
	GatewayErrorCannotPerform = GatewayErrorInfo{
		Name: "CannotPerform",
		Code: -31008,
		Message: map[string]string{
			"uz": "Biz operatsiyani bajara olmaymiz",
			"ru": "Мы не можем сделать операцию",
			"en": "We can't do operation",
		},
	}
	GatewayErrorOrderNotFound = GatewayErrorInfo{
		Name: "OrderNotFound",
		Code: -31050,
		Message: map[string]string{
			"uz": "Buyurtma topilmadi",
			"ru": "Заказ не найден",
			"en": "Order not found",
		},
	}
	GatewayErrorOrderAlreadyProcessed = GatewayErrorInfo{
		Name: "OrderAlreadyProcessed",
		Code: -31051,
		Message: map[string]string{
			"uz": "Buyurtma uchun to'lov boshlangan",
			"ru": "Оплата по заказу уже начата",
			"en": "Order is already being processed",
		},
	}
	GatewayErrorInternal = GatewayErrorInfo{
		Name: "InternalError",
		Code: -32400,
		Message: map[string]string{
			"uz": "Ichki xatolik",
			"ru": "Внутренняя ошибка",
			"en": "Internal error",
		},
	}
	GatewayErrorInvalidAuthorization = GatewayErrorInfo{
		Name: "InvalidAuthorization",
		Code: -32504,
		Message: map[string]string{
			"uz": "Avtorizatsiya yaroqsiz",
			"ru": "Авторизация недействительна",
			"en": "Authorization invalid",
		},
	}
	GatewayErrorMethodNotFound = GatewayErrorInfo{
		Name: "MethodNotFound",
		Code: -32601,
		Message: map[string]string{
			"uz": "Metod topilmadi",
			"ru": "Метод не найден",
			"en": "Method not found",
		},
	}
)

// TransactionError is a protocol-visible gateway failure.
type TransactionError struct {
	Info GatewayErrorInfo
	ID   any
	Data any
}

func (e *TransactionError) Error() string {
	return e.Info.Name
}

// MapError forces any failure into the closed vocabulary. Protocol errors pass
// through; everything else is logged with full context server-side and answered
// as InternalError so internals never leak to the gateway.
func MapError(log *slog.Logger, err error, id any) *TransactionError {
	var txErr *TransactionError
	if errors.As(err, &txErr) {
		return txErr
	}
	if log != nil {
		log.Error("unmapped gateway failure", "err", err)
	}
	return &TransactionError{Info: GatewayErrorInternal, ID: id}
}
