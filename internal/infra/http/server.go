package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv *http.Server
}

// InvoiceRoutes обработчики выгрузки и оплаты счетов.
type InvoiceRoutes interface {
	Export(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)
}

func New(addr string, exposeMetrics bool, invoices InvoiceRoutes) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewMux(exposeMetrics, invoices),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func NewMux(exposeMetrics bool, invoices InvoiceRoutes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if invoices != nil {
		mux.HandleFunc("/invoices/export", invoices.Export)
		mux.HandleFunc("/invoices/pay", invoices.Pay)
	}
	return mux
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
