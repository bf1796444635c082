package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// TableFormatter formats data as an aligned text table.
//
// A struct renders as FIELD/VALUE rows with nested structs flattened to
// dotted names. A slice of structs renders one row per element. Fields
// tagged `table:"-"` are skipped and `table:"wide"` fields only appear
// when Wide is set.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format formats data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	table, err := toTable(data, f.Wide)
	if err != nil {
		// Anything else falls back to JSON.
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}

	return table.RenderWithOptions(w, f.NoHeaders)
}

func toTable(data any, wide bool) (*Table, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return &Table{}, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceToTable(v, wide)
	case reflect.Map:
		return mapToTable(v), nil
	case reflect.Struct:
		t := &Table{Headers: []string{"FIELD", "VALUE"}}
		appendStructRows(t, "", v, wide)
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", v.Kind())
	}
}

// fieldName prefers the json tag over the Go field name.
func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// visible reports whether a field is rendered at the given width.
func visible(f reflect.StructField, wide bool) bool {
	if !f.IsExported() {
		return false
	}
	tag := f.Tag.Get("table")
	if tag == "-" {
		return false
	}
	return wide || !strings.Contains(tag, "wide")
}

func sliceToTable(v reflect.Value, wide bool) (*Table, error) {
	if v.Len() == 0 {
		return &Table{}, nil
	}

	first := indirect(v.Index(0))
	if first.Kind() != reflect.Struct {
		t := &Table{Headers: []string{"VALUE"}}
		for i := 0; i < v.Len(); i++ {
			t.AddRow(formatValue(v.Index(i)))
		}
		return t, nil
	}

	st := first.Type()
	var idx []int
	t := &Table{}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !visible(f, wide) {
			continue
		}
		t.Headers = append(t.Headers, strings.ToUpper(toSnakeCase(fieldName(f))))
		idx = append(idx, i)
	}

	for i := 0; i < v.Len(); i++ {
		elem := indirect(v.Index(i))
		row := make([]string, 0, len(idx))
		for _, j := range idx {
			if !elem.IsValid() {
				row = append(row, "")
				continue
			}
			row = append(row, formatValue(elem.Field(j)))
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func mapToTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"KEY", "VALUE"}}
	iter := v.MapRange()
	for iter.Next() {
		t.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
	}
	return t
}

// appendStructRows adds one row per field of v, descending into nested
// structs so that Stats.Entries renders as "stats.entries".
func appendStructRows(t *Table, prefix string, v reflect.Value, wide bool) {
	st := v.Type()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !visible(f, wide) {
			continue
		}

		name := prefix + fieldName(f)
		fv := indirect(v.Field(i))
		if fv.IsValid() && fv.Kind() == reflect.Struct && fv.Type() != timeType {
			appendStructRows(t, name+".", fv, wide)
			continue
		}
		t.AddRow(name, formatValue(v.Field(i)))
	}
}

// indirect unwraps interfaces and pointers; nil yields the zero Value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// formatValue formats a reflect.Value for display.
func formatValue(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}

	switch v.Type() {
	case timeType:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	case durationType:
		return time.Duration(v.Int()).Round(time.Microsecond).String()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.String:
		if s := v.String(); s != "" {
			return s
		}
		return "-"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// toSnakeCase converts CamelCase to Camel_Case; callers upper-case it.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without the header row.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
