package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// JSONFormatter writes data as JSON.
//
// The default is one indented document. With Lines set, each element of a
// slice is written as its own compact line, so a comparison yields one
// line per store; any other value becomes a single line.
type JSONFormatter struct {
	Lines bool
}

// Format writes data to w. HTML characters are not escaped.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !f.Lines {
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return enc.Encode(data)
	}
	for i := range v.Len() {
		if err := enc.Encode(v.Index(i).Interface()); err != nil {
			return fmt.Errorf("encode line %d: %w", i+1, err)
		}
	}
	return nil
}
