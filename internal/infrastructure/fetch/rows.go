package fetch

import (
	"encoding/json"
)

// DecodeRows decodes each element on its own so one malformed row does not fail the whole source.
// onSkip is called with the index and error of every row that does not decode.
func DecodeRows[T any](raw []json.RawMessage, onSkip func(index int, err error)) []T {
	rows := make([]T, 0, len(raw))
	for i, item := range raw {
		var row T
		if err := json.Unmarshal(item, &row); err != nil {
			if onSkip != nil {
				onSkip(i, err)
			}
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
