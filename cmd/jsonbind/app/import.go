// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/jsonbind/pkg/directory"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
	"github.com/stacklok/jsonbind/pkg/logger"
	"github.com/stacklok/jsonbind/pkg/mapper"
)

type importOptions struct {
	kind   string
	format string
	root   string
	keys   []string
	echo   bool
}

func newImportCmd(root *rootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Map JSON documents into the store",
		Long: `Map JSON, HuJSON, YAML or TOML documents into the configured store.

An object at --root is mapped as a single entity; an array is mapped as a
collection sharing one transaction. Entities are matched against stored
objects by primary key and updated in place, or created when absent.
Related objects (founder, employees, employer) are mapped recursively.

Files are decoded concurrently and mapped in the order given, each in its
own transaction. The document is read from stdin when no file is given.`,
		Example: `  jsonbind import companies.json --root result.items
  jsonbind import --kind employee --keys uuid,name staff.yaml --format yaml
  jsonbind import a.json b.toml --format toml --root companies`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", KindCompany,
		fmt.Sprintf("Entity kind of the documents (%s or %s)", KindCompany, KindEmployee))
	cmd.Flags().StringVar(&opts.format, "format", FormatJSON,
		fmt.Sprintf("Input format (%s, %s, %s or %s)", FormatJSON, FormatHuJSON, FormatYAML, FormatTOML))
	cmd.Flags().StringVar(&opts.root, "root", "", "Path of the node to map, empty for the whole document")
	cmd.Flags().StringSliceVar(&opts.keys, "keys", nil, "Restrict mapping to these key paths")
	cmd.Flags().BoolVar(&opts.echo, "echo", false, "Print the mapped objects as JSON")

	return cmd
}

func runImport(cmd *cobra.Command, root *rootOptions, opts *importOptions, names []string) error {
	ctx := cmd.Context()

	docs, err := decodeInputs(ctx, cmd, names, opts.format, opts.root)
	if err != nil {
		return err
	}

	b, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			logger.Warnf("Failed to close %s store: %v", b.Type, cerr)
		}
	}()

	mp := mapper.New(mapper.WithLogger(logger.Get()))

	var (
		mapped []jsonvalue.Value
		total  int
	)
	for i, doc := range docs {
		var (
			out   jsonvalue.Value
			count int
		)
		switch opts.kind {
		case KindCompany:
			out, count, err = importObjects(ctx, mp, doc, b.Registry.Companies, opts.keys, directory.CompanyKeyFor,
				directory.CompanyFields(), []directory.CompanyKey{directory.CompanyFounder(), directory.CompanyEmployees()})
		case KindEmployee:
			out, count, err = importObjects(ctx, mp, doc, b.Registry.Employees, opts.keys, directory.EmployeeKeyFor,
				directory.EmployeeFields(), []directory.EmployeeKey{directory.EmployeeEmployer()})
		default:
			return fmt.Errorf("unknown kind %q (valid kinds: %s, %s)", opts.kind, KindCompany, KindEmployee)
		}
		if err != nil {
			return fmt.Errorf("failed to import %s document %s: %w", opts.kind, inputName(names, i), err)
		}
		elems, _ := out.AsArray()
		mapped = append(mapped, elems...)
		total += count
	}

	logger.Debugf("Imported %d %s object(s) into %s", total, opts.kind, b.Tag)
	if opts.echo {
		return writeDocument(cmd.OutOrStdout(), jsonvalue.Array(mapped...), FormatJSON)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s object(s) into %s store\n", total, opts.kind, b.Type)
	return err
}

// decodeInputs reads and decodes every named input concurrently, keeping
// their order. No names reads stdin.
func decodeInputs(ctx context.Context, cmd *cobra.Command, names []string, format, root string) ([]jsonvalue.Value, error) {
	if len(names) == 0 {
		data, err := readInput(cmd, "")
		if err != nil {
			return nil, err
		}
		doc, err := decodeDocument(data, format, root)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return []jsonvalue.Value{doc}, nil
	}

	docs := make([]jsonvalue.Value, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readInput(cmd, name)
			if err != nil {
				return err
			}
			doc, err := decodeDocument(data, format, root)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func inputName(names []string, i int) string {
	if len(names) == 0 {
		return "stdin"
	}
	return names[i]
}

// importObjects maps doc, an object or an array of objects, and returns the
// mapped objects serialized back with the same keys. Without paths the
// mapping is keyed by documentKeys.
func importObjects[T any, K keys.Key](
	ctx context.Context,
	mp *mapper.Mapper,
	doc jsonvalue.Value,
	m mapper.Mapping[T, K],
	paths []string,
	lookup func(string) (K, bool),
	fields, relations []K,
) (jsonvalue.Value, int, error) {
	keyedBy, err := parseKeys(paths, lookup)
	if err != nil {
		return jsonvalue.Value{}, 0, err
	}
	if keyedBy == nil {
		keyedBy = documentKeys(doc, fields, relations)
	}

	var objects []T
	switch doc.Kind() {
	case jsonvalue.KindArray:
		objects, err = mapper.MapCollection(ctx, mp, doc, mapper.Bind(keys.Root{}, m), keyedBy)
	case jsonvalue.KindObject:
		var obj T
		obj, err = mapper.Map(ctx, mp, doc, m, keyedBy)
		objects = []T{obj}
	default:
		return jsonvalue.Value{}, 0, fmt.Errorf("expected an object or an array, found %s", doc.Kind())
	}
	if err != nil {
		return jsonvalue.Value{}, 0, err
	}

	out, err := mapper.CollectionToJSON(ctx, mp, objects, m, keyedBy)
	if err != nil {
		return jsonvalue.Value{}, 0, err
	}
	return out, len(objects), nil
}

// documentKeys allows every field, and each relation present in every object
// of doc. Documents may leave out related objects; a missing field is still
// an error.
func documentKeys[K keys.Key](doc jsonvalue.Value, fields, relations []K) keys.SetKeys[K] {
	objects := []jsonvalue.Value{doc}
	if elems, ok := doc.AsArray(); ok {
		objects = elems
	}

	allowed := slices.Clone(fields)
	for _, rel := range relations {
		missing := slices.ContainsFunc(objects, func(obj jsonvalue.Value) bool {
			_, ok := keys.Resolve(obj, rel)
			return !ok
		})
		if !missing {
			allowed = append(allowed, rel)
		}
	}
	return keys.NewSet(allowed...)
}
