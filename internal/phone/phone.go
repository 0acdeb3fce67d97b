// Package phone приводит номера мобильных денег к каноническому международному виду.
package phone

import (
	"errors"
	"strings"
)

const (
	CountryCode = "254"
	TrunkPrefix = "0"

	subscriberDigits = 8
	localLength      = len(TrunkPrefix) + 1 + subscriberDigits
	canonicalLength  = len(CountryCode) + 1 + subscriberDigits
)

// Цифры оператора, допустимые после префикса
const carrierDigits = "71"

var ErrInvalid = errors.New("invalid mobile money phone number")

// Normalize возвращает номер в виде 2547XXXXXXXX.
// Принимаются только две формы: 07XXXXXXXX и 2547XXXXXXXX (любые нецифровые символы отбрасываются).
func Normalize(raw string) (string, error) {
	digits := digitsOnly(raw)

	switch {
	case len(digits) == localLength && strings.HasPrefix(digits, TrunkPrefix):
		if !isCarrier(digits[len(TrunkPrefix)]) {
			return "", ErrInvalid
		}
		return CountryCode + digits[len(TrunkPrefix):], nil
	case len(digits) == canonicalLength && strings.HasPrefix(digits, CountryCode):
		if !isCarrier(digits[len(CountryCode)]) {
			return "", ErrInvalid
		}
		return digits, nil
	default:
		return "", ErrInvalid
	}
}

func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isCarrier(c byte) bool {
	return strings.IndexByte(carrierDigits, c) >= 0
}
