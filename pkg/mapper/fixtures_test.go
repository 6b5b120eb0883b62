// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stacklok/jsonbind/pkg/adapter/memory"
	"github.com/stacklok/jsonbind/pkg/directory"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/mapper"
)

type fixture struct {
	companyStore  *memory.Store
	employeeStore *memory.Store
	companies     *memory.Adapter[*directory.Company]
	employees     *memory.Adapter[*directory.Employee]
	reg           *directory.Registry
	mp            *mapper.Mapper
}

// newFixture keeps companies and employees in one store.
func newFixture(t *testing.T, opts ...directory.RegistryOption) *fixture {
	t.Helper()
	store := memory.NewStore()
	return newFixtureWithStores(t, store, store, opts...)
}

func newFixtureWithStores(t *testing.T, companyStore, employeeStore *memory.Store, opts ...directory.RegistryOption) *fixture {
	t.Helper()
	companies := memory.NewAdapter[*directory.Company](companyStore, "companies",
		memory.WithPrimaryKeys[*directory.Company]("UUID"))
	employees := memory.NewAdapter[*directory.Employee](employeeStore, "employees",
		memory.WithPrimaryKeys[*directory.Employee]("UUID"))
	return &fixture{
		companyStore:  companyStore,
		employeeStore: employeeStore,
		companies:     companies,
		employees:     employees,
		reg:           directory.NewRegistry(companies, employees, opts...),
		mp:            mapper.New(),
	}
}

func employeeJSON(uuid string) string {
	return fmt.Sprintf(`{
		"uuid": %q,
		"name": "Employee %s",
		"joinDate": "2020-01-02T03:04:05Z",
		"data": {"salary": 1000, "is_employee_of_month": false, "percent_yearly_raise": 0.5}
	}`, uuid, uuid)
}

func employeesJSON(uuids ...string) string {
	elems := make([]string, 0, len(uuids))
	for _, id := range uuids {
		elems = append(elems, employeeJSON(id))
	}
	return "[" + strings.Join(elems, ",") + "]"
}

// companyJSON takes the raw JSON of the founder and of the employees.
func companyJSON(uuid, founder, employees string) string {
	return fmt.Sprintf(`{
		"name": "Company %s",
		"data": {"uuid": %q, "founding_date": "1987-10-05", "lawsuits": {"pending": 2}},
		"founder": %s,
		"employees": %s
	}`, uuid, uuid, founder, employees)
}

func companyDoc(uuid, founder, employees string) jsonvalue.Value {
	return jsonvalue.MustParse(companyJSON(uuid, founder, employees))
}

func uuids(list []*directory.Employee) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.UUID)
	}
	return out
}
