package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// The specifications table stores its nested structures (cutting parts,
// hardware, soles, allowed-option id sets) as JSON columns. Every encode and
// decode goes through the types in this file - nothing else in the codebase
// touches the raw column bytes, so the wire shape stays identical across all
// read and write paths.
//
// Decoding is tolerant: rows written by older schema eras can carry malformed
// or double-encoded JSON. A decode failure degrades to an empty list and a
// warning log entry, never an error - losing one legacy column must not make
// the whole row unreadable.

// decodeColumn normalizes the raw driver value into bytes and unmarshals into
// dst. Handles the double-encoded case (a JSON string containing JSON) that
// old writers produced.
func decodeColumn(name string, value interface{}, dst interface{}) bool {
	if value == nil {
		return false
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		log.Warn().Str("column", name).Msgf("unexpected column type %T", value)
		return false
	}
	if len(raw) == 0 {
		return false
	}
	// Double-encoded legacy rows: the column holds a JSON string whose
	// content is the actual JSON document.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err == nil {
			raw = []byte(inner)
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Str("column", name).Err(err).Msg("malformed legacy JSON, substituting empty value")
		return false
	}
	return true
}

// ── CuttingPartEntry ─────────────────────────────────────────────────────────

// CuttingPartEntry is one leather/fabric piece in a specification.
// On a base row Material is free text and MaterialID is absent; on a variant
// row MaterialID references the materials catalog.
type CuttingPartEntry struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Consumption float64 `json:"consumption"`
	Material    *string `json:"material"`
	MaterialID  *int64  `json:"material_id,omitempty"`
	Notes       string  `json:"notes"`
}

type CuttingPartList []CuttingPartEntry

func (l *CuttingPartList) Scan(value interface{}) error {
	*l = CuttingPartList{}
	decodeColumn("cutting_parts", value, l)
	return nil
}

func (l CuttingPartList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode cutting_parts: %w", err)
	}
	return string(b), nil
}

func (CuttingPartList) GormDataType() string { return "jsonb" }

// ── HardwareEntry ────────────────────────────────────────────────────────────

// HardwareEntry is a purchased component (laces, eyelets, zippers).
// Unit is pcs / pair / set.
type HardwareEntry struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes"`
}

type HardwareList []HardwareEntry

func (l *HardwareList) Scan(value interface{}) error {
	*l = HardwareList{}
	decodeColumn("hardware", value, l)
	return nil
}

func (l HardwareList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode hardware: %w", err)
	}
	return string(b), nil
}

func (HardwareList) GormDataType() string { return "jsonb" }

// ── SoleEntry ────────────────────────────────────────────────────────────────

type SoleEntry struct {
	Material       string  `json:"material"`
	MaterialID     *int64  `json:"material_id"`
	Thickness      float64 `json:"thickness"`
	Color          string  `json:"color"`
	HeelHeight     float64 `json:"heel_height"`
	PlatformHeight float64 `json:"platform_height"`
}

type SoleList []SoleEntry

func (l *SoleList) Scan(value interface{}) error {
	*l = SoleList{}
	decodeColumn("soles", value, l)
	return nil
}

func (l SoleList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode soles: %w", err)
	}
	return string(b), nil
}

func (SoleList) GormDataType() string { return "jsonb" }

// ── OptionIDs ────────────────────────────────────────────────────────────────

// OptionIDs is the JSON-array-of-integer-ids column (perforation_ids,
// lining_ids). A base specification uses it for the allowed-option set; the
// column is NULL on variant rows.
type OptionIDs []int64

func (ids *OptionIDs) Scan(value interface{}) error {
	*ids = OptionIDs{}
	decodeColumn("option_ids", value, ids)
	return nil
}

func (ids OptionIDs) Value() (driver.Value, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode option ids: %w", err)
	}
	return string(b), nil
}

func (OptionIDs) GormDataType() string { return "jsonb" }

// Contains reports whether id is in the set.
func (ids OptionIDs) Contains(id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
