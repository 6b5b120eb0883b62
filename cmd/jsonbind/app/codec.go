// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
	"github.com/stacklok/jsonbind/pkg/validation"
)

// decodeDocument parses data in the given format and returns the node at
// root. An empty root selects the whole document.
func decodeDocument(data []byte, format, root string) (jsonvalue.Value, error) {
	if root != "" {
		if err := validation.ValidateKeyPath(root); err != nil {
			return jsonvalue.Value{}, fmt.Errorf("invalid root: %w", err)
		}
	}

	var (
		doc jsonvalue.Value
		err error
	)
	switch format {
	case FormatJSON, "":
		// gjson paths are a superset of dotted key paths, so the subtree is
		// decoded without materializing the rest of the document.
		v, ok, derr := jsonvalue.DecodePath(data, root)
		if derr != nil {
			return jsonvalue.Value{}, derr
		}
		if !ok {
			return jsonvalue.Value{}, fmt.Errorf("root %q not found in document", root)
		}
		return v, nil
	case FormatHuJSON:
		doc, err = jsonvalue.DecodeHuJSON(data)
	case FormatYAML:
		doc, err = jsonvalue.DecodeYAML(data)
	case FormatTOML:
		doc, err = jsonvalue.DecodeTOML(data)
	default:
		return jsonvalue.Value{}, fmt.Errorf("unsupported format %q (valid formats: %s, %s, %s, %s)",
			format, FormatJSON, FormatHuJSON, FormatYAML, FormatTOML)
	}
	if err != nil {
		return jsonvalue.Value{}, err
	}

	node, ok := keys.Resolve(doc, keys.String(root))
	if !ok {
		return jsonvalue.Value{}, fmt.Errorf("root %q not found in document", root)
	}
	return node, nil
}

// writeDocument writes v to w as indented JSON, YAML or a table.
func writeDocument(w io.Writer, v jsonvalue.Value, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON, "":
		data, err = v.EncodeIndent("", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(v)
	case FormatTable:
		return writeTable(w, v)
	default:
		return fmt.Errorf("unsupported output format %q (valid formats: %s, %s, %s)",
			format, FormatJSON, FormatYAML, FormatTable)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeTable renders one row per object with a column per leaf key path.
// Arrays are rendered as compact JSON in a single cell.
func writeTable(w io.Writer, v jsonvalue.Value) error {
	rows, ok := v.AsArray()
	if !ok {
		rows = []jsonvalue.Value{v}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No objects found.")
		return err
	}

	cells := make([]map[string]string, 0, len(rows))
	var headers []string
	for _, row := range rows {
		flat := make(map[string]string)
		flatten(flat, "", row)
		for path := range flat {
			if !slices.Contains(headers, path) {
				headers = append(headers, path)
			}
		}
		cells = append(cells, flat)
	}
	slices.Sort(headers)

	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)
	for _, flat := range cells {
		row := make([]string, 0, len(headers))
		for _, h := range headers {
			row = append(row, flat[h])
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func flatten(dst map[string]string, prefix string, v jsonvalue.Value) {
	switch v.Kind() {
	case jsonvalue.KindObject:
		fields, _ := v.AsObject()
		for k, f := range fields {
			flatten(dst, jsonvalue.JoinPath(prefix, k), f)
		}
	case jsonvalue.KindString:
		dst[prefix], _ = v.AsString()
	case jsonvalue.KindNull:
		dst[prefix] = ""
	default:
		dst[prefix] = v.String()
	}
}

// parseKeys turns key paths into a key set using lookup. No paths means
// every key.
func parseKeys[K keys.Key](paths []string, lookup func(string) (K, bool)) (keys.Provider[K], error) {
	if len(paths) == 0 {
		return nil, nil
	}
	ks := make([]K, 0, len(paths))
	for _, p := range paths {
		if err := validation.ValidateKeyPath(p); err != nil {
			return nil, err
		}
		k, ok := lookup(p)
		if !ok {
			return nil, fmt.Errorf("unknown key %q", p)
		}
		ks = append(ks, k)
	}
	return keys.NewSet(ks...), nil
}
