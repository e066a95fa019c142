package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/ulule/limiter/v3"
	limitmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Handler builds the routed, CORS-wrapped HTTP handler.
func (s *Service) Handler() (http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(s.cfg.LoginRate)
	if err != nil {
		return nil, fmt.Errorf("parsing login rate %q: %w", s.cfg.LoginRate, err)
	}
	loginLimit := limitmw.NewMiddleware(limiter.New(memory.NewStore(), rate))

	r := mux.NewRouter()
	r.Use(s.requestID, s.accessLog)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/exec", s.handleRPC).Methods(http.MethodPost)
	r.Handle("/v1/login", loginLimit.Handler(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(s.authenticate)

	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	api.HandleFunc("/clients", s.handleListClients).Methods(http.MethodGet)
	api.Handle("/clients", s.adminOnly(s.handleCreateClient)).Methods(http.MethodPost)
	api.HandleFunc("/clients/selected", s.handleSelected).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id:[0-9]+}", s.handleGetClient).Methods(http.MethodGet)
	api.Handle("/clients/{id:[0-9]+}/select", s.adminOnly(s.handleSelect)).Methods(http.MethodPost)
	api.Handle("/clients/{id:[0-9]+}/abono", s.adminOnly(s.handleSetAbono)).Methods(http.MethodPut)
	api.Handle("/clients/{id:[0-9]+}/expenses", s.adminOnly(s.handleAddExpense)).Methods(http.MethodPost)
	api.Handle("/clients/{id:[0-9]+}/expenses/{expenseID:[0-9]+}", s.adminOnly(s.handleRemoveExpense)).Methods(http.MethodDelete)
	api.Handle("/clients/{id:[0-9]+}/archive", s.adminOnly(s.handleArchive)).Methods(http.MethodPost)

	api.HandleFunc("/history", s.handleListHistory).Methods(http.MethodGet)
	api.HandleFunc("/history/{id:[0-9]+}", s.handleGetArchived).Methods(http.MethodGet)
	api.Handle("/history/{id:[0-9]+}", s.adminOnly(s.handleDeleteHistory)).Methods(http.MethodDelete)
	api.HandleFunc("/history/{id:[0-9]+}/invoice.pdf", s.handleInvoice).Methods(http.MethodGet)
	api.HandleFunc("/history/{id:[0-9]+}/share", s.handleShare).Methods(http.MethodGet)

	api.HandleFunc("/payments", s.handlePayments).Methods(http.MethodGet)

	api.HandleFunc("/ledger", s.handleListLedger).Methods(http.MethodGet)
	api.Handle("/ledger", s.adminOnly(s.handleAddLedger)).Methods(http.MethodPost)
	api.Handle("/ledger", s.adminOnly(s.handleClearLedger)).Methods(http.MethodDelete)
	api.Handle("/ledger/{id:[0-9]+}", s.adminOnly(s.handleDeleteLedger)).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         600,
	})
	return c.Handler(r), nil
}
