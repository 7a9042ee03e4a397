package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/delaneyj/flatsignals/flat"
	"github.com/jedib0t/go-pretty/v6/table"
)

// readDocument decodes JSON from name, or stdin when name is empty or "-".
func readDocument(name string) (any, error) {
	var r io.Reader = os.Stdin
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", displayName(name), err)
	}
	return doc, nil
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "stdin"
	}
	return name
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, m flat.Map) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"path", "value", "type"})
	for _, k := range m.Keys() {
		v := m[k]
		tbl.AppendRow(table.Row{k, v, leafType(v)})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%016x", m.Fingerprint()), "xxhash64"})
	tbl.Render()
}

func leafType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
