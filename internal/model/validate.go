package model

import (
	"errors"
	"fmt"
	"html"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Defaults applied to user input.
const (
	DefaultDesc         = "General"
	DefaultExpenseRef   = "General"
	DefaultExpenseIcon  = "receipt_long"
	DefaultBusinessRef  = "Gasto de Empresa"
	DefaultAbonoPercent = 50.0
)

var (
	validate  = newValidator()
	sanitizer = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	return v
}

// ValidationError lists the rejected input fields and the rule each failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// Validate checks v against its struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating input: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

// sanitizePasses bounds how many entity layers Sanitize peels off.
const sanitizePasses = 4

// Sanitize strips markup and surrounding whitespace from free text. Entities
// are decoded for display, and markup that only appears after decoding is
// stripped as well.
func Sanitize(s string) string {
	out := s
	for range sanitizePasses {
		next := html.UnescapeString(sanitizer.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

// NewClientInput is the data needed to open a project.
type NewClientInput struct {
	Name         string   `json:"name" validate:"required"`
	Desc         string   `json:"desc"`
	Phone        string   `json:"phone"`
	Location     string   `json:"location"`
	Total        float64  `json:"total" validate:"finite,gt=0"`
	AbonoPercent *float64 `json:"abonoPercent" validate:"omitempty,finite,gte=0,lte=100"`
}

// Normalize sanitizes text fields and fills defaults.
func (in *NewClientInput) Normalize() {
	in.Name = Sanitize(in.Name)
	in.Desc = Sanitize(in.Desc)
	in.Phone = Sanitize(in.Phone)
	in.Location = Sanitize(in.Location)
	if in.Desc == "" {
		in.Desc = DefaultDesc
	}
	if in.AbonoPercent == nil {
		in.AbonoPercent = Float(DefaultAbonoPercent)
	}
}

// ExpenseInput is a cost to charge against a project.
type ExpenseInput struct {
	Item   string  `json:"item" validate:"required"`
	Ref    string  `json:"ref"`
	Amount float64 `json:"amount" validate:"finite,gt=0"`
}

// Normalize sanitizes text fields, fills defaults and truncates the amount
// to whole pesos.
func (in *ExpenseInput) Normalize() {
	in.Item = Sanitize(in.Item)
	in.Ref = Sanitize(in.Ref)
	if in.Ref == "" {
		in.Ref = DefaultExpenseRef
	}
	in.Amount = math.Trunc(in.Amount)
}

// BusinessExpenseInput is a company-level cost.
type BusinessExpenseInput struct {
	Item     string  `json:"item" validate:"required"`
	Ref      string  `json:"ref"`
	Amount   float64 `json:"amount" validate:"finite,gt=0"`
	Category string  `json:"category" validate:"omitempty,oneof=fuel tools food other"`
}

// Normalize sanitizes text fields and fills defaults. Amounts keep their
// decimals.
func (in *BusinessExpenseInput) Normalize() {
	in.Item = Sanitize(in.Item)
	in.Ref = Sanitize(in.Ref)
	if in.Ref == "" {
		in.Ref = DefaultBusinessRef
	}
	if in.Category == "" {
		in.Category = DefaultCategory().ID
	}
}

// record is the shape a stored active project must have.
type record struct {
	ID         int64          `json:"id" validate:"gt=0"`
	Name       string         `json:"name" validate:"required"`
	Total      float64        `json:"total" validate:"finite,gt=0"`
	AbonoTotal *float64       `json:"abonoTotal" validate:"omitempty,finite,gte=0"`
	Status     Status         `json:"status" validate:"ne=Finalizado"`
	Expenses   []recordAmount `json:"expenses" validate:"dive"`
}

type recordAmount struct {
	Amount float64 `json:"amount" validate:"finite"`
}

// ValidateRecord checks a complete project received from outside, such as a
// SAVE_CLIENT action: a positive id and total, a name, finite amounts and a
// status other than Finalizado.
func ValidateRecord(c Client) error {
	r := record{
		ID:         c.ID,
		Name:       c.Name,
		Total:      c.Total,
		AbonoTotal: c.AbonoTotal,
		Status:     c.Status,
		Expenses:   make([]recordAmount, len(c.Expenses)),
	}
	for i, e := range c.Expenses {
		r.Expenses[i].Amount = e.Amount
	}
	return Validate(r)
}

// SanitizeRecord strips markup from every free-text field of c.
func SanitizeRecord(c Client) Client {
	c.Name = Sanitize(c.Name)
	c.Desc = Sanitize(c.Desc)
	c.Phone = Sanitize(c.Phone)
	c.Location = Sanitize(c.Location)
	if len(c.Expenses) > 0 {
		expenses := make([]Expense, len(c.Expenses))
		for i, e := range c.Expenses {
			e.Item = Sanitize(e.Item)
			e.Ref = Sanitize(e.Ref)
			expenses[i] = e
		}
		c.Expenses = expenses
	}
	return c
}
