// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/jsonbind/pkg/directory"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
	"github.com/stacklok/jsonbind/pkg/logger"
	"github.com/stacklok/jsonbind/pkg/mapper"
)

type exportOptions struct {
	kind   string
	format string
	uuid   string
	keys   []string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Serialize stored objects to JSON",
		Long: `Serialize stored objects of one kind to JSON, YAML or a table.

With --uuid a single object is written; otherwise every stored object of the
kind is written as an array.`,
		Example: `  jsonbind export --adapter sqlite
  jsonbind export --kind employee --uuid e1 --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", KindCompany,
		fmt.Sprintf("Entity kind to export (%s or %s)", KindCompany, KindEmployee))
	cmd.Flags().StringVar(&opts.format, "format", FormatJSON,
		fmt.Sprintf("Output format (%s, %s or %s)", FormatJSON, FormatYAML, FormatTable))
	cmd.Flags().StringVar(&opts.uuid, "uuid", "", "Export only the object with this UUID")
	cmd.Flags().StringSliceVar(&opts.keys, "keys", nil, "Restrict output to these key paths")

	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions) error {
	ctx := cmd.Context()

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

	var out jsonvalue.Value
	switch opts.kind {
	case KindCompany:
		out, err = exportObjects(ctx, mp, b.Registry.Companies, opts.uuid, opts.keys, directory.CompanyKeyFor)
	case KindEmployee:
		out, err = exportObjects(ctx, mp, b.Registry.Employees, opts.uuid, opts.keys, directory.EmployeeKeyFor)
	default:
		return fmt.Errorf("unknown kind %q (valid kinds: %s, %s)", opts.kind, KindCompany, KindEmployee)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s objects: %w", opts.kind, err)
	}

	return writeDocument(cmd.OutOrStdout(), out, opts.format)
}

// exportObjects serializes the stored object with the given UUID, or every
// stored object when uuid is empty.
func exportObjects[T any, K keys.Key](
	ctx context.Context,
	mp *mapper.Mapper,
	m mapper.Mapping[T, K],
	uuid string,
	paths []string,
	lookup func(string) (K, bool),
) (jsonvalue.Value, error) {
	keyedBy, err := parseKeys(paths, lookup)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	filter := map[string]any{}
	if uuid != "" {
		filter["UUID"] = uuid
	}
	objects, err := m.Adapter().Fetch(ctx, filter)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	if uuid == "" {
		return mapper.CollectionToJSON(ctx, mp, objects, m, keyedBy)
	}
	if len(objects) == 0 {
		return jsonvalue.Value{}, fmt.Errorf("no object with UUID %q", uuid)
	}
	return mapper.ToJSON(ctx, mp, objects[0], m, keyedBy)
}
