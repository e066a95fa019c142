package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/harmony/internal/model"
)

func TestNewClientEmptyURL(t *testing.T) {
	assert.Nil(t, NewClient("   "))
}

func TestNilClientNotConfigured(t *testing.T) {
	var c *Client
	resp := c.GetAllData(context.Background())
	assert.False(t, resp.Success)
	assert.Equal(t, MsgNotConfigured, resp.Error)
	assert.Empty(t, c.Endpoint())
}

func TestCallSendsActionAndPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, contentType, r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).ArchiveClient(context.Background(), 42)

	assert.True(t, resp.Success)
	assert.Equal(t, ActionArchiveClient, got["action"])
	assert.Equal(t, float64(42), got["clientId"])
}

func TestSaveClientEmbedsClient(t *testing.T) {
	var got struct {
		Action string       `json:"action"`
		Client model.Client `json:"client"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := model.Client{ID: 7, Name: "Ana", Total: 100, Status: model.StatusIniciado, Expenses: []model.Expense{}}
	resp := NewClient(srv.URL).SaveClient(context.Background(), c)

	assert.True(t, resp.Success)
	assert.Equal(t, ActionSaveClient, got.Action)
	assert.Equal(t, c, got.Client)
}

func TestGetAllDataLooseNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"clients":[
			{"id":"17","name":"Ana","total":"1000000","abonoTotal":500000,"pct":"50%","phone":3001234567,
			 "status":"Activo","expenses":[{"id":1,"item":"Vidrio","amount":"200000"}]},
			{"id":18,"name":"Luis","total":2000000,"abonoTotal":null,"pct":"75%","status":"Iniciado"}
		]}`))
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).GetAllData(context.Background())
	require.True(t, resp.Success)
	require.Len(t, resp.Clients, 2)

	ana := resp.Clients[0]
	assert.Equal(t, int64(17), ana.ID)
	assert.Equal(t, 1000000.0, ana.Total)
	assert.Equal(t, "3001234567", ana.Phone)
	require.NotNil(t, ana.AbonoTotal)
	assert.Equal(t, 500000.0, *ana.AbonoTotal)
	assert.Equal(t, 200000.0, ana.Expenses[0].Amount)

	luis := resp.Clients[1]
	assert.Nil(t, luis.AbonoTotal)
	assert.Equal(t, 1500000.0, luis.Abono())
	assert.NotNil(t, luis.Expenses)
}

func TestEmptyClientListIsKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"clients":[]}`))
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).GetAllData(context.Background())
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Clients)
	assert.Empty(t, resp.Clients)
}

func TestCallFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		err    error
	}{
		{"server error", http.StatusInternalServerError, "", MsgConnection, nil},
		{"unauthorized", http.StatusForbidden, "", MsgConnection, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, "", MsgConnection, ErrRateLimited},
		{"html body", http.StatusOK, "<html>", MsgBadResponse, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp := NewClient(srv.URL).GetAllData(context.Background())
			assert.False(t, resp.Success)
			assert.Equal(t, tt.want, resp.Error)
			assert.Error(t, resp.Err)
			if tt.err != nil {
				assert.ErrorIs(t, resp.Err, tt.err)
			}
		})
	}
}

func TestRemoteErrorPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"hoja bloqueada"}`))
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).GetAllData(context.Background())
	assert.False(t, resp.Success)
	assert.Equal(t, "hoja bloqueada", resp.Error)
	assert.NoError(t, resp.Err)
}

func TestCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	resp := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).GetAllData(context.Background())
	assert.False(t, resp.Success)
	assert.Equal(t, MsgConnection, resp.Error)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`75`, 75, true},
		{`75.5`, 75.5, true},
		{`"75%"`, 75, true},
		{`" 1200 "`, 1200, true},
		{`"1.500.000"`, 1500000, true},
		{`"$ 2,000,000"`, 2000000, true},
		{`"Infinity"`, 0, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"abc"`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(json.RawMessage(tt.raw))
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
