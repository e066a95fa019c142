// Package model defines domain types for harmony projects, expenses and the business ledger.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DateLayout is the day/month/year format used for start and end dates.
const DateLayout = "02/01/2006"

// OpenEnd marks a project that has no end date yet.
const OpenEnd = "TBD"

// Status is the lifecycle or health label of a project.
type Status string

const (
	StatusIniciado   Status = "Iniciado"
	StatusActivo     Status = "Activo"
	StatusMedio      Status = "Medio"
	StatusCritico    Status = "Crítico"
	StatusAgotado    Status = "Agotado"
	StatusFinalizado Status = "Finalizado"
)

// Client is one contracted installation job ("obra").
//
// AbonoTotal is the authoritative amount received from the customer. When it
// is absent the amount is derived from Pct against Total; use Abono to read it.
type Client struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Desc         string    `json:"desc"`
	Phone        string    `json:"phone,omitempty"`
	Location     string    `json:"location,omitempty"`
	Total        float64   `json:"total"`
	AbonoPercent *float64  `json:"abonoPercent,omitempty"`
	AbonoTotal   *float64  `json:"abonoTotal,omitempty"`
	Pct          string    `json:"pct,omitempty"`
	Status       Status    `json:"status"`
	Expenses     []Expense `json:"expenses"`
	Start        string    `json:"start,omitempty"`
	End          string    `json:"end,omitempty"`
}

// Expense is a cost charged against a single project's cash box.
type Expense struct {
	ID     int64   `json:"id"`
	Item   string  `json:"item"`
	Ref    string  `json:"ref"`
	Icon   string  `json:"icon"`
	Amount float64 `json:"amount"`
}

// Abono returns the amount received from the customer.
func (c Client) Abono() float64 {
	if c.AbonoTotal != nil {
		return *c.AbonoTotal
	}
	return c.Total * float64(ParsePercent(c.Pct)) / 100
}

// IsArchived reports whether the project has been finalized.
func (c Client) IsArchived() bool {
	return c.Status == StatusFinalizado
}

// MarshalJSON always emits an expenses array, never null.
func (c Client) MarshalJSON() ([]byte, error) {
	type alias Client
	a := alias(c)
	if a.Expenses == nil {
		a.Expenses = []Expense{}
	}
	return json.Marshal(a)
}

// ParsePercent reads the leading integer of a label such as "75%".
// Anything unparseable yields 0.
func ParsePercent(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		ch := s[end]
		if ch >= '0' && ch <= '9' || (end == 0 && (ch == '-' || ch == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
