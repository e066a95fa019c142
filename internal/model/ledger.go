package model

// BusinessExpense is a company-level cost not tied to any project.
type BusinessExpense struct {
	ID       int64   `json:"id"`
	Item     string  `json:"item"`
	Ref      string  `json:"ref"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Icon     string  `json:"icon"`
	Date     string  `json:"date"`
	User     string  `json:"user"`
}

// Category groups business expenses for display.
type Category struct {
	ID    string
	Label string
	Icon  string
}

// Categories lists the business expense categories in display order.
var Categories = []Category{
	{ID: "fuel", Label: "Gasolina", Icon: "local_gas_station"},
	{ID: "tools", Label: "Herramientas", Icon: "handyman"},
	{ID: "food", Label: "Alimentación", Icon: "restaurant"},
	{ID: "other", Label: "Otros / Varios", Icon: "more_horiz"},
}

// DefaultCategory is "other", used when no category is given.
func DefaultCategory() Category {
	return Categories[len(Categories)-1]
}

// CategoryByID looks up a category, falling back to "other".
func CategoryByID(id string) Category {
	for _, c := range Categories {
		if c.ID == id {
			return c
		}
	}
	return DefaultCategory()
}
