// Package output serializes product records to the JSON document consumed by
// the catalog site and delivers it to one or more sinks.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"volumegen/internal/domain"
)

// volumeKey is the output field holding the computed volume.
const volumeKey = "volume"

// Encode renders records as an indented JSON array. Non-ASCII text is written
// verbatim and HTML characters are not escaped.
func Encode(records []domain.ProductRecord, projection domain.Projection) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i := range records {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		obj, err := encodeRecord(&records[i], projection)
		if err != nil {
			return nil, fmt.Errorf("encoding record %d: %w", i, err)
		}
		if err := indentInto(&buf, obj); err != nil {
			return nil, fmt.Errorf("indenting record %d: %w", i, err)
		}
	}
	if len(records) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

// encodeRecord writes one object with keys in a stable, meaningful order.
func encodeRecord(rec *domain.ProductRecord, projection domain.Projection) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	n := 0
	write := func(key string, value interface{}) error {
		if n > 0 {
			buf.WriteString(",")
		}
		n++
		if err := writeValue(&buf, key); err != nil {
			return err
		}
		buf.WriteString(":")
		return writeValue(&buf, value)
	}

	switch projection {
	case domain.ProjectionFull:
		for _, f := range rec.Fields {
			if f.Name == volumeKey {
				continue
			}
			if err := write(f.Name, f.Value); err != nil {
				return nil, err
			}
		}
	default:
		if err := write("name", rec.Name); err != nil {
			return nil, err
		}
	}
	if err := write(volumeKey, rec.Volume); err != nil {
		return nil, err
	}

	buf.WriteString("}")
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func indentInto(dst *bytes.Buffer, obj []byte) error {
	var tmp bytes.Buffer
	if err := json.Indent(&tmp, obj, "  ", "  "); err != nil {
		return err
	}
	dst.Write(tmp.Bytes())
	return nil
}
