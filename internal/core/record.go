package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DateLayout is the wire format of expense dates. Lexicographic order on
// this layout equals chronological order, which the aggregation code
// relies on; do not switch it for a locale-dependent format.
const DateLayout = "2006-01-02"

type (
	// Amount is a monetary value as received from the remote store. The
	// store is a spreadsheet, so amounts may arrive as JSON numbers,
	// numeric strings, empty cells or garbage; decoding is total and
	// defaults to zero instead of failing, so one bad row can never take
	// down an aggregate.
	Amount float64

	// ID is an opaque record identifier assigned by the remote store.
	// Older rows carry numeric ids, newer ones strings.
	ID string

	// ExpenseRecord is one expense row as returned by the remote store.
	ExpenseRecord struct {
		ID          ID     `json:"id"`
		ExpenseDate string `json:"expense_date"`
		ExpenseTime string `json:"expense_time,omitempty"`
		Category    string `json:"category"`
		Amount      Amount `json:"amount"`
		Location    string `json:"location,omitempty"`
		Description string `json:"description,omitempty"`

		// Provenance metadata attached at write time, not used in
		// aggregation.
		CreatedBy string `json:"created_by,omitempty"`
		Email     string `json:"email,omitempty"`
		Platform  string `json:"platform,omitempty"`
	}

	// CategoryRecord is one expense category. Grouping in the aggregates
	// is keyed by CategoryName, not ID.
	CategoryRecord struct {
		ID           ID     `json:"id"`
		CategoryName string `json:"category_name"`
		Description  string `json:"description,omitempty"`
		Status       string `json:"status,omitempty"`
	}
)

// CoerceAmount converts an arbitrary decoded JSON value to a float64,
// treating anything non-numeric as 0.
func CoerceAmount(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(CoerceAmount(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

func (a Amount) Value() float64 { return float64(a) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	// Numeric id: keep the literal digits.
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
