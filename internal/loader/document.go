package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// readJSON accepts an array of objects keyed by sheet column names.
func readJSON(r io.Reader) ([]map[string]string, error) {
	var items []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}
	return documentRecords(items)
}

// readYAML accepts a sequence of mappings keyed by sheet column names.
func readYAML(r io.Reader) ([]map[string]string, error) {
	var items []map[string]any
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrMissingColumn)
		}
		return nil, err
	}
	return documentRecords(items)
}

func documentRecords(items []map[string]any) ([]map[string]string, error) {
	records := make([]map[string]string, 0, len(items))
	seen := make(map[string]bool)

	for _, item := range items {
		rec := make(map[string]string, len(item))
		for k, v := range item {
			col := canonicalColumn(k)
			rec[col] = scalarString(v)
			seen[col] = true
		}
		records = append(records, rec)
	}

	if len(items) > 0 {
		if err := requireColumns(seen); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
