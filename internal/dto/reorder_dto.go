package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrReorderNotObject = errors.New("Invalid JSON payload (expected object)")
	ErrReorderNoLines   = errors.New("No reorder lines provided (expected lines/items/cart array)")
	ErrReorderAllBad    = errors.New("All lines were empty/invalid (need product_code + qty>0)")
)

// ReorderShape records which payload form the client sent.
type ReorderShape int

const (
	ReorderSingleLine ReorderShape = iota + 1 // {"product_code":..,"qty":..}
	ReorderLineList                           // {"items":[...]} and friends
)

// lineListKeys are tried in order before falling back to the first array value.
var lineListKeys = []string{"lines", "items", "cart", "products", "rows", "order_items", "reorder_items", "data"}

type ReorderLine struct {
	ProductCode string          `json:"product_code"`
	Qty         decimal.Decimal `json:"qty"`
	Note        string          `json:"note,omitempty"`
}

// ReorderRequest is resolved from the loosely shaped client payload once, in
// UnmarshalJSON. After a successful decode Lines holds only valid lines.
type ReorderRequest struct {
	RequestedBy string
	Shape       ReorderShape
	Lines       []ReorderLine
}

func (r *ReorderRequest) UnmarshalJSON(b []byte) error {
	keys, obj, err := decodeOrderedObject(b)
	if err != nil {
		return ErrReorderNotObject
	}

	r.RequestedBy = firstString(obj, "requested_by", "updated_by", "user")
	if r.RequestedBy == "" {
		r.RequestedBy = "Unknown"
	}

	var raw []json.RawMessage
	if hasAny(obj, "product_code", "productCode", "code") && hasAny(obj, "qty", "quantity", "count") {
		r.Shape = ReorderSingleLine
		raw = []json.RawMessage{b}
	} else {
		r.Shape = ReorderLineList
		raw = findLineList(keys, obj)
	}
	if len(raw) == 0 {
		return ErrReorderNoLines
	}

	r.Lines = r.Lines[:0]
	for _, item := range raw {
		if line, ok := parseReorderLine(item); ok {
			r.Lines = append(r.Lines, line)
		}
	}
	if len(r.Lines) == 0 {
		return ErrReorderAllBad
	}
	return nil
}

func findLineList(keys []string, obj map[string]json.RawMessage) []json.RawMessage {
	for _, k := range lineListKeys {
		if v, ok := obj[k]; ok && truthy(v) {
			return asList(v)
		}
	}
	for _, k := range keys {
		v := bytes.TrimSpace(obj[k])
		if len(v) > 0 && v[0] == '[' {
			return asList(v)
		}
	}
	return nil
}

// asList accepts an array, or a single object which is treated as one line.
func asList(v json.RawMessage) []json.RawMessage {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return nil
	}
	switch v[0] {
	case '[':
		var out []json.RawMessage
		if err := json.Unmarshal(v, &out); err != nil {
			return nil
		}
		return out
	case '{':
		return []json.RawMessage{v}
	}
	return nil
}

func parseReorderLine(raw json.RawMessage) (ReorderLine, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return ReorderLine{}, false
	}
	code := firstString(obj, "product_code", "productCode", "code")
	if code == "" {
		return ReorderLine{}, false
	}
	var qty decimal.Decimal
	for _, k := range []string{"qty", "quantity", "count"} {
		v, ok := obj[k]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			continue
		}
		if err := json.Unmarshal(v, &qty); err != nil {
			qty = decimal.Zero
		}
		break
	}
	if !qty.IsPositive() {
		return ReorderLine{}, false
	}
	return ReorderLine{
		ProductCode: code,
		Qty:         qty,
		Note:        firstString(obj, "note", "reason"),
	}, true
}

// decodeOrderedObject decodes a JSON object keeping its key order.
func decodeOrderedObject(b []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("not an object")
	}
	obj := make(map[string]json.RawMessage)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, seen := obj[key]; !seen {
			keys = append(keys, key)
		}
		obj[key] = v
	}
	return keys, obj, nil
}

func hasAny(obj map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

// firstString returns the first non-blank string (or number) value among keys.
func firstString(obj map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func truthy(v json.RawMessage) bool {
	switch string(bytes.TrimSpace(v)) {
	case "", "null", "false", "0", `""`, "[]", "{}":
		return false
	}
	return true
}

// ReorderLineResponse is a submitted line after product enrichment.
type ReorderLineResponse struct {
	ProductCode string          `json:"product_code"`
	Description string          `json:"description"`
	Barcode     *string         `json:"barcode"`
	Qty         decimal.Decimal `json:"qty"`
	Note        string          `json:"note,omitempty"`
}

type ReorderResponse struct {
	OK     bool                  `json:"ok"`
	Queued bool                  `json:"queued"`
	Lines  []ReorderLineResponse `json:"lines"`
}
