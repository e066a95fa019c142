package remote

import (
	"encoding/json"
	"strconv"

	"github.com/theirongolddev/harmony/internal/model"
)

// Actions understood by the remote endpoint.
const (
	ActionGetAllData    = "GET_ALL_DATA"
	ActionSaveClient    = "SAVE_CLIENT"
	ActionArchiveClient = "ARCHIVE_CLIENT"
)

// Messages returned in Response.Error for local failures.
const (
	MsgNotConfigured = "URL no configurada"
	MsgConnection    = "Error de conexión con el servidor"
	MsgBadResponse   = "Respuesta inválida del servidor"
)

// Response is the uniform result of every remote call.
// Err carries the underlying cause of a local failure and is never serialized.
type Response struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Clients []model.Client `json:"clients,omitempty"`
	Err     error          `json:"-"`
}

// wireResponse is the raw body. Spreadsheet-backed endpoints are loose about
// numeric types, so clients are decoded field by field.
type wireResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Clients []wireClient `json:"clients"`
}

type wireClient struct {
	ID           json.RawMessage `json:"id"`
	Name         string          `json:"name"`
	Desc         string          `json:"desc"`
	Phone        json.RawMessage `json:"phone"`
	Location     string          `json:"location"`
	Total        json.RawMessage `json:"total"`
	AbonoPercent json.RawMessage `json:"abonoPercent"`
	AbonoTotal   json.RawMessage `json:"abonoTotal"`
	Pct          string          `json:"pct"`
	Status       string          `json:"status"`
	Expenses     []wireExpense   `json:"expenses"`
	Start        string          `json:"start"`
	End          string          `json:"end"`
}

type wireExpense struct {
	ID     json.RawMessage `json:"id"`
	Item   string          `json:"item"`
	Ref    string          `json:"ref"`
	Icon   string          `json:"icon"`
	Amount json.RawMessage `json:"amount"`
}

func (w wireClient) toModel() model.Client {
	id, _ := parseNumber(w.ID)
	total, _ := parseNumber(w.Total)
	phone, _ := parseText(w.Phone)
	c := model.Client{
		ID:       int64(id),
		Name:     w.Name,
		Desc:     w.Desc,
		Phone:    phone,
		Location: w.Location,
		Total:    total,
		Pct:      w.Pct,
		Status:   model.Status(w.Status),
		Expenses: make([]model.Expense, 0, len(w.Expenses)),
		Start:    w.Start,
		End:      w.End,
	}
	if v, ok := parseNumber(w.AbonoPercent); ok {
		c.AbonoPercent = model.Float(v)
	}
	if v, ok := parseNumber(w.AbonoTotal); ok {
		c.AbonoTotal = model.Float(v)
	}
	for _, e := range w.Expenses {
		eid, _ := parseNumber(e.ID)
		amount, _ := parseNumber(e.Amount)
		c.Expenses = append(c.Expenses, model.Expense{
			ID:     int64(eid),
			Item:   e.Item,
			Ref:    e.Ref,
			Icon:   e.Icon,
			Amount: amount,
		})
	}
	return c
}

// parseNumber accepts a JSON number or a numeric string such as "750000",
// "1.500.000" or "75%". Null, empty and unparseable values report ok=false.
func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := model.ParseAmount(s); err == nil {
			return v, true
		}
	}
	return 0, false
}

// parseText accepts a JSON string or number. Phone columns arrive as numbers.
func parseText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	if f, ok := parseNumber(raw); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}
