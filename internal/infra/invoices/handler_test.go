package invoices

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Spok95/material-desk/internal/domain/invoice"
	"github.com/Spok95/material-desk/internal/infra/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExport(t *testing.T) {
	h := NewHandler(logger.Discard(), invoice.NewMockRepo())

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/invoices/export?number=INV-2024-002", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "INV-2024-002.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, err := f.GetCellValue("Invoice", "B1")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-002", v)

	rec = httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/invoices/export?number=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/invoices/export", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPay(t *testing.T) {
	repo := invoice.NewMockRepo()
	h := NewHandler(logger.Discard(), repo)

	rec := httptest.NewRecorder()
	h.Pay(rec, httptest.NewRequest(http.MethodGet, "/invoices/pay?number=INV-2024-002&amount=10", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.Pay(rec, httptest.NewRequest(http.MethodPost, "/invoices/pay?number=INV-2024-002&amount=10.50&method=cash", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "paid 10.50")

	rec = httptest.NewRecorder()
	h.Pay(rec, httptest.NewRequest(http.MethodPost, "/invoices/pay?number=INV-2024-002&amount=999999", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Pay(rec, httptest.NewRequest(http.MethodPost, "/invoices/pay?number=INV-2024-002&amount=184467440737095517", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	inv, err := repo.Get(context.Background(), "INV-2024-002")
	require.NoError(t, err)
	assert.Equal(t, invoice.Cents(1050), inv.Paid())

	rec = httptest.NewRecorder()
	h.Pay(rec, httptest.NewRequest(http.MethodPost, "/invoices/pay?number=INV-2024-002&amount=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportURL(t *testing.T) {
	l := NewLinks("http://desk.local/")
	assert.Equal(t, "http://desk.local/invoices/export?number=INV+1", l.ExportURL("INV 1"))
}
