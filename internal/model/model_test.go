package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbonoPrefersStoredAmount(t *testing.T) {
	c := Client{Total: 1000000, AbonoTotal: Float(0), Pct: "50%"}
	assert.Equal(t, 0.0, c.Abono())
}

func TestAbonoFallsBackToPct(t *testing.T) {
	c := Client{Total: 1000000, Pct: "75%"}
	assert.Equal(t, 750000.0, c.Abono())

	c.Pct = "abc"
	assert.Equal(t, 0.0, c.Abono())
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"75%", 75},
		{" 40 %", 40},
		{"100", 100},
		{"", 0},
		{"%", 0},
		{"-5%", -5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePercent(tt.in), tt.in)
	}
}

func TestClientJSONRoundTrip(t *testing.T) {
	in := Client{
		ID:         1718000000000,
		Name:       "Ana Gómez",
		Desc:       "Ventanal",
		Total:      1000000,
		AbonoTotal: Float(500000),
		Pct:        "50%",
		Status:     StatusActivo,
		Expenses:   []Expense{{ID: 1, Item: "Vidrio", Ref: "General", Icon: DefaultExpenseIcon, Amount: 200000}},
		Start:      "01/06/2026",
		End:        OpenEnd,
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Client
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestClientMarshalEmitsEmptyExpenses(t *testing.T) {
	raw, err := json.Marshal(Client{ID: 1, Name: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"expenses":[]`)
}

func TestNewClientInputValidation(t *testing.T) {
	in := NewClientInput{Name: "  ", Total: 0}
	in.Normalize()
	err := Validate(in)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Fields["name"])
	assert.Equal(t, "gt", verr.Fields["total"])
}

func TestNewClientInputDefaults(t *testing.T) {
	in := NewClientInput{Name: "<b>Carlos</b>", Total: 100}
	in.Normalize()
	require.NoError(t, Validate(in))
	assert.Equal(t, "Carlos", in.Name)
	assert.Equal(t, DefaultDesc, in.Desc)
	require.NotNil(t, in.AbonoPercent)
	assert.Equal(t, DefaultAbonoPercent, *in.AbonoPercent)
}

func TestAbonoPercentOutOfRange(t *testing.T) {
	in := NewClientInput{Name: "x", Total: 100, AbonoPercent: Float(120)}
	var verr *ValidationError
	require.ErrorAs(t, Validate(in), &verr)
	assert.Equal(t, "lte", verr.Fields["abonoPercent"])
}

func TestExpenseInputNormalize(t *testing.T) {
	in := ExpenseInput{Item: "Silicona", Amount: 1500.9}
	in.Normalize()
	assert.Equal(t, DefaultExpenseRef, in.Ref)
	assert.Equal(t, 1500.0, in.Amount)
}

func TestBusinessExpenseCategory(t *testing.T) {
	in := BusinessExpenseInput{Item: "Taladro", Amount: 10, Category: "boats"}
	var verr *ValidationError
	require.ErrorAs(t, Validate(in), &verr)
	assert.Equal(t, "oneof", verr.Fields["category"])

	assert.Equal(t, "Herramientas", CategoryByID("tools").Label)
	assert.Equal(t, "other", CategoryByID("nope").ID)
}

func TestSanitizeKeepsAmpersand(t *testing.T) {
	assert.Equal(t, "Pérez & Hijos", Sanitize(" Pérez & Hijos <script>x</script>"))
}

func TestSanitizeStripsEncodedMarkup(t *testing.T) {
	assert.NotContains(t, Sanitize("&lt;script&gt;alert(1)&lt;/script&gt;"), "<")
	assert.Equal(t, "Vidrios", Sanitize("&lt;b&gt;Vidrios&lt;/b&gt;"))
	assert.Equal(t, "O'Neil", Sanitize("O'Neil"))
	assert.Equal(t, "a < b", Sanitize("a < b"))
}

func TestBusinessExpenseDefaultsToOther(t *testing.T) {
	in := BusinessExpenseInput{Item: "Taladro", Amount: 1000.5}
	in.Normalize()
	require.NoError(t, Validate(in))
	assert.Equal(t, "other", in.Category)
	assert.Equal(t, 1000.5, in.Amount)
}

func TestNonFiniteAmountsRejected(t *testing.T) {
	var verr *ValidationError

	in := NewClientInput{Name: "x", Total: math.Inf(1)}
	in.Normalize()
	require.ErrorAs(t, Validate(in), &verr)
	assert.Equal(t, "finite", verr.Fields["total"])

	exp := ExpenseInput{Item: "x", Amount: math.Inf(1)}
	exp.Normalize()
	require.ErrorAs(t, Validate(exp), &verr)
	assert.Equal(t, "finite", verr.Fields["amount"])
}

func TestExpenseInputHugeAmount(t *testing.T) {
	in := ExpenseInput{Item: "x", Amount: 1e20 + 0.5}
	in.Normalize()
	assert.Equal(t, 1e20, in.Amount)
	assert.NoError(t, Validate(in))
}

func TestValidateRecord(t *testing.T) {
	ok := Client{ID: 7, Name: "Ana", Total: 100, Status: StatusActivo, Expenses: []Expense{{Amount: 10}}}
	require.NoError(t, ValidateRecord(ok))

	var verr *ValidationError
	bad := Client{ID: 0, Name: "", Total: -5, Status: StatusFinalizado}
	require.ErrorAs(t, ValidateRecord(bad), &verr)
	assert.Equal(t, "gt", verr.Fields["id"])
	assert.Equal(t, "required", verr.Fields["name"])
	assert.Equal(t, "gt", verr.Fields["total"])
	assert.Equal(t, "ne", verr.Fields["status"])

	inf := ok
	inf.Expenses = []Expense{{Amount: math.Inf(-1)}}
	require.ErrorAs(t, ValidateRecord(inf), &verr)
	assert.Equal(t, "finite", verr.Fields["amount"])
}

func TestSanitizeRecord(t *testing.T) {
	c := SanitizeRecord(Client{Name: "<i>Ana</i>", Expenses: []Expense{{Item: "&lt;b&gt;Vidrio&lt;/b&gt;"}}})
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "Vidrio", c.Expenses[0].Item)
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]float64{
		"750000":       750000,
		"1.500.000":    1500000,
		"2,000,000":    2000000,
		"$ 1.500.000":  1500000,
		"1.500.000,50": 1500000.5,
		"1,500,000.50": 1500000.5,
		"75%":          75,
		"75.5":         75.5,
		"1,5":          1.5,
		"-2.000":       -2000,
	} {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "abc", "Inf", "NaN", "1.2.3,4,5"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}
