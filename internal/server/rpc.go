package server

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/remote"
)

type rpcRequest struct {
	Action   string        `json:"action"`
	Client   *model.Client `json:"client"`
	ClientID int64         `json:"clientId"`
}

// rpcReply mirrors remote.Response on the wire. Clients is an interface so
// an empty list is still emitted for GET_ALL_DATA.
type rpcReply struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Clients any    `json:"clients,omitempty"`
}

// rpcAllowed accepts the shared ?token= secret or an admin bearer token.
// RPCOpen lifts the check for deployments that opt out explicitly.
func (s *Service) rpcAllowed(r *http.Request) bool {
	if s.cfg.RPCOpen {
		return true
	}
	if got := r.URL.Query().Get("token"); s.cfg.RPCToken != "" && got != "" {
		return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.RPCToken)) == 1
	}
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return false
	}
	sess, err := s.deps.Tokens.Parse(raw)
	return err == nil && sess.RequireAdmin() == nil
}

// handleRPC serves the action protocol spoken by remote.Client. The body is
// JSON sent as text/plain.
func (s *Service) handleRPC(w http.ResponseWriter, r *http.Request) {
	if !s.rpcAllowed(r) {
		writeJSON(w, http.StatusForbidden, rpcReply{Error: "token inválido"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusOK, rpcReply{Error: "cuerpo demasiado grande"})
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, rpcReply{Error: "JSON inválido"})
		return
	}

	ctx := r.Context()
	switch req.Action {
	case remote.ActionGetAllData:
		writeJSON(w, http.StatusOK, rpcReply{Success: true, Clients: s.deps.Manager.Active()})

	case remote.ActionSaveClient:
		if req.Client == nil {
			writeJSON(w, http.StatusOK, rpcReply{Error: "falta client"})
			return
		}
		if err := s.deps.Manager.Upsert(ctx, *req.Client); err != nil {
			s.log.Warn().Err(err).Int64("id", req.Client.ID).Msg("rpc save failed")
			writeJSON(w, http.StatusOK, rpcReply{Error: err.Error()})
			return
		}
		s.record(EventClientUpdated, req.Client.ID)
		writeJSON(w, http.StatusOK, rpcReply{Success: true})

	case remote.ActionArchiveClient:
		if err := s.deps.Manager.Archive(ctx, req.ClientID); err != nil {
			s.log.Warn().Err(err).Int64("id", req.ClientID).Msg("rpc archive failed")
			writeJSON(w, http.StatusOK, rpcReply{Error: err.Error()})
			return
		}
		s.record(EventClientArchived, req.ClientID)
		writeJSON(w, http.StatusOK, rpcReply{Success: true})

	default:
		writeJSON(w, http.StatusOK, rpcReply{Error: "acción desconocida: " + req.Action})
	}
}
