package store

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("material not found")

// FetchError не удалось загрузить коллекцию (сеть, статус или формат ответа).
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch materials: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("fetch materials: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RemoteError ошибка одиночного вызова (get/create/update/delete/stock).
// Message можно показывать пользователю как есть.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// UserMessage текст для баннера в интерфейсе.
func UserMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return "Не удалось загрузить список материалов"
	}
	return "Ошибка обращения к складу материалов"
}
