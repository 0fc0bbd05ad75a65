package gate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordNotSet = errors.New("password is not set")

// HashSource отдаёт bcrypt-хеш пароля оператора.
type HashSource interface {
	PasswordHash(ctx context.Context, telegramID int64) (string, error)
}

// BcryptVerifier сверяет введённый пароль с хешем конкретного оператора.
type BcryptVerifier struct {
	src        HashSource
	telegramID int64
}

func NewBcryptVerifier(src HashSource, telegramID int64) *BcryptVerifier {
	return &BcryptVerifier{src: src, telegramID: telegramID}
}

func (v *BcryptVerifier) Verify(ctx context.Context, secret string) error {
	hash, err := v.src.PasswordHash(ctx, v.telegramID)
	if err != nil {
		return fmt.Errorf("load password hash: %w", err)
	}
	if hash == "" {
		return &VerificationError{Err: ErrPasswordNotSet}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return &VerificationError{Err: err}
	}
	return nil
}

// HashPassword для /setpassword и тестов.
func HashPassword(password string) (string, error) {
	if len(password) < 4 {
		return "", fmt.Errorf("password is too short")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
