package domain

import (
	"fmt"
	"strings"
)

// CountryCodeLength — длина кода страны ISO-3166 alpha-2.
const CountryCodeLength = 2

// Address — адрес клиента. Один и тот же адрес может быть адресом доставки нескольких заказов.
type Address struct {
	ID         int64
	CustomerID int64
	Line1      string
	City       string
	Country    string
	IsDefault  bool
}

// Persisted сообщает, получил ли адрес идентификатор в хранилище.
func (a Address) Persisted() bool {
	return a.ID > 0
}

// NormalizeCountry приводит код страны к верхнему регистру и проверяет,
// что это ровно две латинские буквы.
func NormalizeCountry(country string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if len(code) != CountryCodeLength {
		return "", fmt.Errorf("%w: country code must have %d letters, got %q", ErrInvalidInput, CountryCodeLength, country)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: country code must contain only letters, got %q", ErrInvalidInput, country)
		}
	}
	return code, nil
}

// ValidateForCreate проверяет поля, обязательные для вставки новой записи.
func (a Address) ValidateForCreate() error {
	if a.CustomerID <= 0 {
		return fmt.Errorf("%w: address customer_id is required", ErrInvalidInput)
	}
	if len(a.Country) != CountryCodeLength {
		return fmt.Errorf("%w: address country must be a 2-letter code", ErrInvalidInput)
	}
	return nil
}
