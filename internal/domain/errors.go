package domain

import "errors"

var (
	// ErrNotFound — запрошенная сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = wrapNotFound("order")
	// ErrAddressNotFound возвращается, если адрес не найден в репозитории.
	ErrAddressNotFound = wrapNotFound("address")
	// ErrCustomerNotFound возвращается, если клиент не найден.
	ErrCustomerNotFound = wrapNotFound("customer")

	// ErrInvalidInput — входные данные не прошли проверку предусловий.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCrossCustomerAddress — попытка назначить заказу адрес другого клиента.
	ErrCrossCustomerAddress = errors.New("shipping address belongs to another customer")

	// ErrConstraintViolation — нарушение ограничений целостности на стороне хранилища.
	ErrConstraintViolation = errors.New("storage constraint violation")
	// ErrStorageUnavailable — временная недоступность хранилища, операцию можно повторить.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrWriteFailed — прочая ошибка записи.
	ErrWriteFailed = errors.New("storage write failed")
	// ErrNestedTransaction — попытка открыть транзакцию внутри уже открытой.
	ErrNestedTransaction = errors.New("nested transactions are not supported")

	// ErrUpdateFailed — смена адреса доставки не была зафиксирована.
	ErrUpdateFailed = errors.New("shipping address update failed")
)

type notFoundError struct {
	entity string
}

func (e *notFoundError) Error() string { return e.entity + " not found" }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

func wrapNotFound(entity string) error {
	return &notFoundError{entity: entity}
}

// IsNotFound проверяет, что ошибка означает отсутствие сущности любого типа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable сообщает, имеет ли смысл повторить операцию.
// Ядро само повторов не делает, решение остаётся за вызывающей стороной.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
