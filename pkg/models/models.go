// Package models holds the typed records built from First Street API
// responses. Records are plain values: they are decoded once and never
// modified afterwards. Fields the API may omit or send as null are pointers
// or slices so that "no data" stays distinguishable from zero.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var null = []byte("null")

// Decode maps one raw API record onto T. An empty or null payload yields the
// zero record; unknown fields are ignored.
func Decode[T any](raw json.RawMessage) (T, error) {
	var rec T

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, null) {
		return rec, nil
	}

	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return rec, fmt.Errorf("decode %T: %w", rec, err)
	}
	return rec, nil
}

// DecodeAll maps raws onto records, preserving order.
func DecodeAll[T any](raws []json.RawMessage) ([]T, error) {
	records := make([]T, 0, len(raws))
	for i, raw := range raws {
		rec, err := Decode[T](raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Scenarios holds a value for the low, mid and high climate scenarios.
type Scenarios struct {
	Low  *float64 `json:"low"`
	Mid  *float64 `json:"mid"`
	High *float64 `json:"high"`
}

func (s Scenarios) csv() []string {
	return []string{formatFloat(s.Low), formatFloat(s.Mid), formatFloat(s.High)}
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
