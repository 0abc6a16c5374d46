// Package export writes compiled settings in formats consumed by devices and
// slicers.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brunoga/layerstack/document"
)

// DefaultArrayDelimiter joins array values in INI output.
const DefaultArrayDelimiter = ","

type options struct {
	delimiter string
}

// Option configures INI.
type Option func(*options)

// WithArrayDelimiter sets the separator used for array values.
func WithArrayDelimiter(delim string) Option {
	return func(o *options) {
		o.delimiter = delim
	}
}

// INI writes data as "[section]" headers followed by "field = value" lines.
// Sections and fields are written in sorted order, so the output is
// deterministic.
func INI(w io.Writer, data document.Sections, opts ...Option) error {
	o := options{delimiter: DefaultArrayDelimiter}
	for _, opt := range opts {
		opt(&o)
	}

	bw := bufio.NewWriter(w)
	for i, section := range data.SectionNames() {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "[%s]\n", section)
		for _, field := range data.FieldNames(section) {
			value, err := formatValue(data[section][field], o.delimiter)
			if err != nil {
				return fmt.Errorf("export %s/%s: %w", section, field, err)
			}
			fmt.Fprintf(bw, "%s = %s\n", field, value)
		}
	}
	return bw.Flush()
}

func formatValue(v any, delimiter string) (string, error) {
	if elems, ok := v.([]any); ok {
		parts := make([]string, len(elems))
		for i, e := range elems {
			s, err := formatScalar(e)
			if err != nil {
				return "", fmt.Errorf("element %d: %w", i, err)
			}
			parts[i] = s
		}
		return strings.Join(parts, delimiter), nil
	}
	return formatScalar(v)
}

func formatScalar(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}
