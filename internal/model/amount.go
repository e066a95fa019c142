package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// grouped matches integers written with thousands separators, such as
// "1.500.000" or "2,000,000".
var grouped = regexp.MustCompile(`^-?\d{1,3}([.,]\d{3})+$`)

var amountNoise = strings.NewReplacer("$", "", " ", "", "\u00a0", "")

// ParseAmount reads a money amount typed by a person or returned by a
// spreadsheet: "$ 1.500.000", "2,000,000", "1.500.000,50", "750000" or
// "75%". A lone separator followed by one or two digits is a decimal mark.
// Non-finite values are rejected.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSuffix(amountNoise.Replace(strings.TrimSpace(raw)), "%")

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case grouped.MatchString(s):
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return v, nil
}
