// Package headerproject turns the first scanned row into header names
// and projects subsequent rows into keyed records, the way PapaParse's
// header interpretation layer sits just above its row scanner.
package headerproject

import (
	"fmt"
	"strconv"
)

// ExtraKey is the reserved property name used to carry surplus fields
// when a data row has more fields than the header.
const ExtraKey = "__parsed_extra"

const (
	TypeFieldMismatch = "FieldMismatch"

	CodeTooFewFields  = "TooFewFields"
	CodeTooManyFields = "TooManyFields"
)

// Error mirrors the FieldMismatch family of ParseError.
type Error struct {
	Type     string
	Code     string
	Message  string
	RowIndex int
}

// Dedupe assigns a deterministic, unique name to every header,
// preserving first occurrences and suffixing repeats with the smallest
// _N that is not already taken. It returns the deduplicated names and a
// mapping from the assigned unique name to the original duplicated
// name for every name that had to be renamed.
func Dedupe(headers []string) (names []string, renamed map[string]string) {
	seen := make(map[string]bool, len(headers))
	names = make([]string, len(headers))
	for i, h := range headers {
		if !seen[h] {
			seen[h] = true
			names[i] = h
			continue
		}
		n := 1
		for {
			candidate := h + "_" + strconv.Itoa(n)
			if !seen[candidate] {
				seen[candidate] = true
				names[i] = candidate
				if renamed == nil {
					renamed = make(map[string]string)
				}
				renamed[candidate] = h
				break
			}
			n++
		}
	}
	return names, renamed
}

// Project maps a data row onto the deduplicated header names. When the
// row is shorter than the headers, the record only contains the
// headers that had a corresponding field and a TooFewFields error is
// returned. When the row is longer, the surplus fields are collected
// under ExtraKey and a TooManyFields error is returned. rowIndex is the
// data-row index to stamp on any produced Error.
func Project(headers []string, row []string, rowIndex int) (map[string]any, *Error) {
	record := make(map[string]any, len(headers)+1)
	h := len(headers)
	r := len(row)

	limit := h
	if r < limit {
		limit = r
	}
	for i := 0; i < limit; i++ {
		record[headers[i]] = row[i]
	}

	switch {
	case r < h:
		return record, &Error{
			Type:     TypeFieldMismatch,
			Code:     CodeTooFewFields,
			Message:  fmt.Sprintf("row has %d fields, expected %d", r, h),
			RowIndex: rowIndex,
		}
	case r > h:
		record[ExtraKey] = append([]string{}, row[h:]...)
		return record, &Error{
			Type:     TypeFieldMismatch,
			Code:     CodeTooManyFields,
			Message:  fmt.Sprintf("row has %d fields, expected %d", r, h),
			RowIndex: rowIndex,
		}
	default:
		return record, nil
	}
}
