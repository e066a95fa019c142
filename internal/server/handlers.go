package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/theirongolddev/harmony/internal/auth"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/invoice"
	"github.com/theirongolddev/harmony/internal/ledger"
	"github.com/theirongolddev/harmony/internal/model"
)

// clientView is a project with its derived figures.
type clientView struct {
	model.Client
	Metrics finance.Metrics `json:"metrics"`
}

func viewOf(c model.Client) clientView {
	return clientView{Client: c, Metrics: finance.Snapshot(c)}
}

func viewsOf(list []model.Client) []clientView {
	out := make([]clientView, len(list))
	for i, c := range list {
		out[i] = viewOf(c)
	}
	return out
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

type loginRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.deps.Directory.Authenticate(req.Username, req.PIN)
	if err != nil {
		s.log.Info().Str("username", req.Username).Msg("login rejected")
		s.fail(w, err)
		return
	}
	token, exp, err := s.deps.Tokens.Issue(auth.Session{Username: u.Name, Role: u.Role})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, Username: u.Name, Role: string(u.Role)})
}

func (s *Service) handleListClients(w http.ResponseWriter, r *http.Request) {
	list := clients.Search(s.deps.Manager.Active(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, viewsOf(list))
}

func (s *Service) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, ok := s.deps.Manager.Find(pathID(r, "id"))
	if !ok {
		s.fail(w, clients.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (s *Service) handleSelected(w http.ResponseWriter, _ *http.Request) {
	c, ok := s.deps.Manager.Selected()
	if !ok {
		s.fail(w, clients.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (s *Service) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if _, ok := s.deps.Manager.Find(id); !ok {
		s.fail(w, clients.ErrNotFound)
		return
	}
	s.deps.Manager.Select(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var in model.NewClientInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := s.deps.Manager.Create(r.Context(), in)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.record(EventClientAdded, c.ID)
	writeJSON(w, http.StatusCreated, viewOf(c))
}

type abonoRequest struct {
	AbonoTotal *float64 `json:"abonoTotal"`
}

func (s *Service) handleSetAbono(w http.ResponseWriter, r *http.Request) {
	var req abonoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AbonoTotal == nil {
		s.fail(w, &model.ValidationError{Fields: map[string]string{"abonoTotal": "required"}})
		return
	}
	c, err := s.deps.Manager.SetAbono(r.Context(), pathID(r, "id"), *req.AbonoTotal)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.record(EventClientUpdated, c.ID)
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (s *Service) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var in model.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	id := pathID(r, "id")
	exp, err := s.deps.Manager.AddExpense(r.Context(), id, in)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.record(EventClientUpdated, id)
	writeJSON(w, http.StatusCreated, exp)
}

func (s *Service) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := s.deps.Manager.RemoveExpense(r.Context(), id, pathID(r, "expenseID")); err != nil {
		s.fail(w, err)
		return
	}
	s.record(EventClientUpdated, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleArchive(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if _, ok := s.deps.Manager.Find(id); !ok {
		s.fail(w, clients.ErrNotFound)
		return
	}
	if err := s.deps.Manager.Archive(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.record(EventClientArchived, id)
	c, _ := s.deps.Manager.FindArchived(id)
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (s *Service) handleListHistory(w http.ResponseWriter, r *http.Request) {
	list := clients.Search(s.deps.Manager.History(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, viewsOf(list))
}

func (s *Service) handleGetArchived(w http.ResponseWriter, r *http.Request) {
	c, ok := s.deps.Manager.FindArchived(pathID(r, "id"))
	if !ok {
		s.fail(w, clients.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (s *Service) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := s.deps.Manager.DeleteFromHistory(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.record(EventHistoryDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleInvoice(w http.ResponseWriter, r *http.Request) {
	c, ok := s.deps.Manager.FindArchived(pathID(r, "id"))
	if !ok {
		s.fail(w, clients.ErrNotFound)
		return
	}
	var buf bytes.Buffer
	if err := invoice.WritePDF(&buf, invoice.Build(c, s.cfg.Business, time.Now())); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "factura-"+strconv.FormatInt(c.ID, 10)+".pdf"))
	_, _ = w.Write(buf.Bytes())
}

type shareResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (s *Service) handleShare(w http.ResponseWriter, r *http.Request) {
	c, ok := s.deps.Manager.FindArchived(pathID(r, "id"))
	if !ok {
		s.fail(w, clients.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Message: invoice.ShareMessage(c), URL: invoice.WhatsAppURL(c)})
}

func (s *Service) handlePayments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Manager.Portfolio())
}

type ledgerResponse struct {
	Entries []model.BusinessExpense `json:"entries"`
	Total   float64                 `json:"total"`
}

func (s *Service) ledgerFor(r *http.Request) *ledger.Ledger {
	return ledger.New(s.deps.KV, sessionFrom(r.Context()).Username)
}

func (s *Service) handleListLedger(w http.ResponseWriter, r *http.Request) {
	list, err := s.ledgerFor(r).List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerResponse{Entries: list, Total: ledger.Total(list)})
}

func (s *Service) handleAddLedger(w http.ResponseWriter, r *http.Request) {
	var in model.BusinessExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	entry, err := s.ledgerFor(r).Add(r.Context(), in)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Service) handleDeleteLedger(w http.ResponseWriter, r *http.Request) {
	if err := s.ledgerFor(r).Delete(r.Context(), pathID(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleClearLedger(w http.ResponseWriter, r *http.Request) {
	if err := s.ledgerFor(r).Clear(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
