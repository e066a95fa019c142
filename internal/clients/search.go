package clients

import (
	"strings"

	"github.com/theirongolddev/harmony/internal/model"
)

// Search returns the projects whose name or description contains query,
// ignoring case. An empty query returns list unchanged.
func Search(list []model.Client, query string) []model.Client {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	var out []model.Client
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Desc), q) {
			out = append(out, c)
		}
	}
	return out
}
