// Package xlsxrender turns a JSON array of flat records into an Excel
// workbook. Column order follows the order keys first appear in the
// raw JSON text, not Go map iteration order, so the sheet mirrors the
// document the caller sent.
package xlsxrender

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for record validation.
var (
	ErrEmptyRecords     = errors.New("record array is empty")
	ErrRecordShape      = errors.New("input is not a JSON array of objects")
	ErrIncompatibleKeys = errors.New("record keys are incompatible")
)

// ParseRecords decodes the raw JSON and recovers the column order from
// the byte stream. The returned column slice holds every key in first-
// appearance order across all records.
func ParseRecords(raw []byte) ([]map[string]any, []string, error) {
	var records []map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &records); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRecordShape, err)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyRecords
	}

	columns, err := orderedKeys(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRecordShape, err)
	}
	return records, columns, nil
}

// Validate checks that every record shares most of its keys with the
// first one. A record is incompatible when its symmetric difference
// with the first record exceeds half of the first record's key count;
// that threshold tolerates optional fields while rejecting unrelated
// record shapes.
func Validate(records []map[string]any) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}
	first := keySet(records[0])
	for i, rec := range records[1:] {
		cur := keySet(rec)
		diff := 0
		for k := range first {
			if !cur[k] {
				diff++
			}
		}
		for k := range cur {
			if !first[k] {
				diff++
			}
		}
		if float64(diff) > float64(len(first))*0.5 {
			return fmt.Errorf("%w: record %d shares too few keys with record 0", ErrIncompatibleKeys, i+1)
		}
	}
	return nil
}

func keySet(rec map[string]any) map[string]bool {
	set := make(map[string]bool, len(rec))
	for k := range rec {
		set[k] = true
	}
	return set
}

// orderedKeys scans the raw token stream and collects object keys in
// first-appearance order.
func orderedKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New("top-level value is not an array")
	}

	seen := make(map[string]bool)
	var columns []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, errors.New("array element is not an object")
		}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.New("object key is not a string")
			}
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
	}
	return columns, nil
}

// skipValue consumes one JSON value, descending through containers.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		for dec.More() {
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		_, err = dec.Token() // consume closing delimiter
		return err
	}
	return nil
}
