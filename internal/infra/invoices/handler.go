package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/material-desk/internal/domain/invoice"
)

type Repo interface {
	Get(ctx context.Context, number string) (*invoice.Invoice, error)
	AddPayment(ctx context.Context, number string, p invoice.Payment) (*invoice.Invoice, error)
}

type Handler struct {
	log  *slog.Logger
	repo Repo
}

func NewHandler(log *slog.Logger, repo Repo) *Handler {
	return &Handler{log: log, repo: repo}
}

// Export GET /invoices/export?number=INV-... -> xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	if number == "" {
		http.Error(w, "missing number parameter", http.StatusBadRequest)
		return
	}
	inv, err := h.repo.Get(r.Context(), number)
	if errors.Is(err, invoice.ErrNotFound) {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("load invoice failed", "number", number, "err", err)
		http.Error(w, "failed to load invoice", http.StatusInternalServerError)
		return
	}
	data, err := invoice.ExportXLSX(*inv)
	if err != nil {
		h.log.Error("export invoice failed", "number", number, "err", err)
		http.Error(w, "failed to export invoice", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, inv.Number))
	_, _ = w.Write(data)
}

// Pay POST /invoices/pay?number=...&amount=12.50: регистрирует оплату.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	amount, err := invoice.ParseCents(r.URL.Query().Get("amount"))
	if number == "" || err != nil {
		http.Error(w, "invalid number or amount", http.StatusBadRequest)
		return
	}

	inv, err := h.repo.AddPayment(r.Context(), number, invoice.Payment{
		Date:   time.Now().UTC(),
		Amount: amount,
		Method: strings.TrimSpace(r.URL.Query().Get("method")),
	})
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	case errors.Is(err, invoice.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("add payment failed", "number", number, "err", err)
		http.Error(w, "failed to add payment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "invoice %s: paid %s, balance %s\n", inv.Number, inv.Paid(), inv.Balance())
}
