// Package contact содержит идентификацию удаленного абонента RCS.
package contact

import (
	"fmt"
	"strings"
)

// ContactId представляет идентификатор удаленного контакта в международном
// формате (MSISDN). Значение неизменяемо после создания.
type ContactId struct {
	number string
}

// NewContactId создает идентификатор контакта из номера в международном формате.
// Возвращает ошибку, если номер не проходит валидацию.
func NewContactId(number string) (ContactId, error) {
	normalized := normalize(number)
	if !isValid(normalized) {
		return ContactId{}, fmt.Errorf("недопустимый номер контакта: %q", number)
	}
	return ContactId{number: normalized}, nil
}

// MustContactId создает идентификатор контакта и паникует при невалидном номере.
// Используется в тестах и при инициализации констант.
func MustContactId(number string) ContactId {
	c, err := NewContactId(number)
	if err != nil {
		panic(err)
	}
	return c
}

// String возвращает номер контакта в международном формате.
func (c ContactId) String() string {
	return c.number
}

// IsZero сообщает, что идентификатор не был установлен.
func (c ContactId) IsZero() bool {
	return c.number == ""
}

// SipUser возвращает user-часть для SIP URI данного контакта.
func (c ContactId) SipUser() string {
	return c.number
}

// normalize убирает разделители и приводит номер к каноничному виду
func normalize(number string) string {
	var b strings.Builder
	for i, r := range number {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// разделители игнорируем
		default:
			// недопустимый символ оставляем, валидация отклонит номер
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isValid проверяет номер: опциональный '+' и от 3 до 15 цифр (E.164)
func isValid(number string) bool {
	digits := number
	if strings.HasPrefix(number, "+") {
		digits = number[1:]
	}
	if len(digits) < 3 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
