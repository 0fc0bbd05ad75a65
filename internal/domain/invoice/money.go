package invoice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents денежная сумма в копейках/центах.
type Cents int64

var ErrInvalidAmount = errors.New("invalid amount")

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// FormatCents поле ввода суммы: цифры трактуются как центы.
// "123" -> "1.23", "5" -> "0.05", "" -> "0.00". Нецифровые символы отбрасываются.
func FormatCents(raw string) string {
	return FromDigits(raw).String()
}

// FromDigits сумма из сырых нажатий: каждая цифра сдвигает значение на разряд.
func FromDigits(raw string) Cents {
	var v int64
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		// переполнение не даём: лишние цифры игнорируются
		if v > (1<<62)/10 {
			break
		}
		v = v*10 + int64(r-'0')
	}
	return Cents(v)
}

// ParseCents принимает "12.50", "12,5", "12" (рубли/доллары) или "#1250" (сырые центы).
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "#") {
		return FromDigits(s[1:]), nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 || w > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	var f int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	return Cents(w*100 + f), nil
}
