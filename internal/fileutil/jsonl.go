package fileutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONL writes one compact JSON object per record, each on its own line.
func WriteJSONL[T any](w io.Writer, records []T) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for i, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
