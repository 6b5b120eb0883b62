// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/jsonbind/pkg/directory"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
	"github.com/stacklok/jsonbind/pkg/mapper"
)

func TestToJSON_RoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	doc := companyDoc("c1", employeeJSON("f1"), employeesJSON("e1", "e2"))
	c, err := mapper.Map(ctx, f.mp, doc, f.reg.Companies, nil)
	require.NoError(t, err)

	out, err := mapper.ToJSON(ctx, f.mp, c, f.reg.Companies, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(doc.Interface(), out.Interface()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	// Writing JSON never saves.
	assert.Equal(t, 1, f.companies.Count())
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		company *directory.Company
		allowed keys.Provider[directory.CompanyKey]
		want    string
	}{
		{
			name:    "allowlist",
			company: &directory.Company{UUID: "c1", Name: "Acme"},
			allowed: keys.NewSet(directory.CompanyName, directory.CompanyUUID),
			want:    `{"name": "Acme", "data": {"uuid": "c1"}}`,
		},
		{
			name:    "nil founder and employees",
			company: &directory.Company{UUID: "c1"},
			allowed: keys.NewSet(directory.CompanyFounder(), directory.CompanyEmployees()),
			want:    `{"founder": null, "employees": []}`,
		},
		{
			name: "nested allowlist",
			company: &directory.Company{
				Employees: []*directory.Employee{{UUID: "e1", Name: "Ada", Salary: 3}},
			},
			allowed: keys.NewSet(directory.CompanyEmployees(directory.EmployeeName, directory.EmployeeSalary)),
			want:    `{"employees": [{"name": "Ada", "data": {"salary": 3}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			out, err := mapper.ToJSON(context.Background(), f.mp, tt.company, f.reg.Companies, tt.allowed)
			require.NoError(t, err)
			if diff := cmp.Diff(jsonvalue.MustParse(tt.want).Interface(), out.Interface()); diff != "" {
				t.Errorf("ToJSON mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollectionToJSON(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	companies := []*directory.Company{{UUID: "c1", Name: "A"}, {UUID: "c2", Name: "B"}}
	out, err := mapper.CollectionToJSON(context.Background(), f.mp, companies, f.reg.Companies,
		keys.NewSet(directory.CompanyName))
	require.NoError(t, err)

	want := jsonvalue.MustParse(`[{"name": "A"}, {"name": "B"}]`)
	assert.True(t, want.Equal(out), "got %s", out)
	assert.Equal(t, 1, f.companyStore.Stats().Commits)
}

func TestToJSON_EmployeeEmployer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	e := &directory.Employee{UUID: "e1", Employer: &directory.Company{UUID: "c1", Name: "Acme"}}
	allowed := keys.NewSet(directory.EmployeeUUID, directory.EmployeeEmployer(directory.CompanyName))

	out, err := mapper.ToJSON(context.Background(), f.mp, e, f.reg.Employees, allowed)
	require.NoError(t, err)
	assert.True(t, jsonvalue.MustParse(`{"uuid": "e1", "company": {"name": "Acme"}}`).Equal(out), "got %s", out)
}
