package invoices

import (
	"fmt"
	"net/url"
	"strings"
)

type Links struct {
	baseURL string
}

func NewLinks(baseURL string) *Links {
	return &Links{baseURL: strings.TrimRight(baseURL, "/")}
}

// ExportURL ссылка на выгрузку счёта в xlsx с нашего HTTP-сервера.
func (l *Links) ExportURL(number string) string {
	return fmt.Sprintf("%s/invoices/export?number=%s", l.baseURL, url.QueryEscape(number))
}
