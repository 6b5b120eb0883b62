// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
)

func TestKeyPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  keys.Key
		want string
	}{
		{CompanyUUID, "data.uuid"},
		{CompanyName, "name"},
		{CompanyFoundingDate, "data.founding_date"},
		{CompanyPendingLawsuits, "data.lawsuits.pending"},
		{CompanyFounder(), "founder"},
		{CompanyEmployees(EmployeeName), "employees"},
		{EmployeeUUID, "uuid"},
		{EmployeeJoinDate, "joinDate"},
		{EmployeeSalary, "data.salary"},
		{EmployeeIsEmployeeOfMonth, "data.is_employee_of_month"},
		{EmployeePercentYearlyRaise, "data.percent_yearly_raise"},
		{EmployeeEmployer(), "company"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.key.KeyPath())
		})
	}
}

func TestNestedKeys(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CompanyName.NestedKeys())
	assert.Nil(t, CompanyEmployees().NestedKeys())
	assert.Nil(t, EmployeeSalary.NestedKeys())

	nested := CompanyEmployees(EmployeeName).NestedKeys()
	require.NotNil(t, nested)
	assert.True(t, nested.ContainsKey(EmployeeName))
	assert.False(t, nested.ContainsKey(EmployeeSalary))
	assert.False(t, nested.ContainsKey(CompanyName))

	employer := EmployeeEmployer(CompanyName).NestedKeys()
	require.NotNil(t, employer)
	assert.True(t, employer.ContainsKey(CompanyName))
}

func TestDate(t *testing.T) {
	t.Parallel()

	got, err := Date.FromJSON(jsonvalue.String("1987-10-05"))
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(1987, 10, 5, 0, 0, 0, 0, time.UTC)))

	out, err := Date.ToJSON(got)
	require.NoError(t, err)
	assert.True(t, out.Equal(jsonvalue.String("1987-10-05")))

	_, err = Date.FromJSON(jsonvalue.Number(1))
	assert.Error(t, err)
	_, err = Date.FromJSON(jsonvalue.String("10/05/1987"))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Company{UUID: "a", Name: "x"}).Equal(&Company{UUID: "a", Name: "y"}))
	assert.False(t, (&Company{UUID: "a"}).Equal(&Company{UUID: "b"}))
	assert.False(t, (&Company{UUID: "a"}).Equal(nil))
	assert.True(t, (&Employee{UUID: "e"}).Equal(&Employee{UUID: "e"}))
	assert.False(t, (*Employee)(nil).Equal(&Employee{UUID: "e"}))
}

func TestKeyFor(t *testing.T) {
	t.Parallel()

	k, ok := CompanyKeyFor("data.lawsuits.pending")
	require.True(t, ok)
	assert.Equal(t, CompanyPendingLawsuits, k)

	k, ok = CompanyKeyFor("employees")
	require.True(t, ok)
	assert.Nil(t, k.NestedKeys())

	_, ok = CompanyKeyFor("nope")
	assert.False(t, ok)

	e, ok := EmployeeKeyFor("company")
	require.True(t, ok)
	assert.Equal(t, "company", e.KeyPath())

	_, ok = EmployeeKeyFor("data.uuid")
	assert.False(t, ok)
}
