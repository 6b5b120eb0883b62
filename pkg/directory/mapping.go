// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"fmt"
	"time"

	"github.com/stacklok/jsonbind/pkg/adapter"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/mapper"
)

// DateLayout is the layout of founding dates.
const DateLayout = time.DateOnly

// Date maps calendar dates written as "2006-01-02".
var Date mapper.Transform[time.Time] = mapper.TransformFunc[time.Time]{
	Decode: func(v jsonvalue.Value) (time.Time, error) {
		s, ok := v.AsString()
		if !ok {
			return time.Time{}, fmt.Errorf("expected a date string, found %s", v.Kind())
		}
		return time.Parse(DateLayout, s)
	},
	Encode: func(t time.Time) (jsonvalue.Value, error) {
		return jsonvalue.String(t.Format(DateLayout)), nil
	},
}

// CompanyMapping maps companies.
type CompanyMapping struct {
	adapter   adapter.Adapter[*Company]
	employees mapper.Mapping[*Employee, EmployeeKey]
	policy    mapper.UpdatePolicy[*Employee]
}

// Adapter returns the company adapter.
func (m *CompanyMapping) Adapter() adapter.Adapter[*Company] { return m.adapter }

// PrimaryKeys identifies companies by data.uuid.
func (*CompanyMapping) PrimaryKeys() []mapper.PrimaryKey {
	return []mapper.PrimaryKey{{Property: "UUID", Key: CompanyUUID}}
}

// Map lists the company fields. Founder and employees are mapped without
// their employer, which is set to the company instead.
func (m *CompanyMapping) Map(c *Company, p *mapper.Payload[CompanyKey]) error {
	mapper.Field(p, &c.UUID, CompanyUUID)
	mapper.Field(p, &c.Name, CompanyName)
	mapper.Transformed(p, &c.FoundingDate, CompanyFoundingDate, Date)
	mapper.Field(p, &c.PendingLawsuits, CompanyPendingLawsuits)
	mapper.Object(p, &c.Founder, mapper.Bind(CompanyFounder(EmployeeFields()...), m.employees))
	mapper.Collection(p, &c.Employees, mapper.BindCollection(CompanyEmployees(EmployeeFields()...), m.employees, m.policy))

	if p.Direction() == mapper.DirectionFromJSON && p.Err() == nil {
		for _, e := range c.Employees {
			e.Employer = c
		}
	}
	return nil
}

// EmployeeMapping maps employees.
type EmployeeMapping struct {
	adapter   adapter.Adapter[*Employee]
	companies mapper.Mapping[*Company, CompanyKey]
}

// Adapter returns the employee adapter.
func (m *EmployeeMapping) Adapter() adapter.Adapter[*Employee] { return m.adapter }

// PrimaryKeys identifies employees by uuid.
func (*EmployeeMapping) PrimaryKeys() []mapper.PrimaryKey {
	return []mapper.PrimaryKey{{Property: "UUID", Key: EmployeeUUID}}
}

// Map lists the employee fields. The employer is mapped without its
// founder and employees.
func (m *EmployeeMapping) Map(e *Employee, p *mapper.Payload[EmployeeKey]) error {
	mapper.Field(p, &e.UUID, EmployeeUUID)
	mapper.Field(p, &e.Name, EmployeeName)
	mapper.Field(p, &e.JoinDate, EmployeeJoinDate)
	mapper.Field(p, &e.Salary, EmployeeSalary)
	mapper.Field(p, &e.IsEmployeeOfMonth, EmployeeIsEmployeeOfMonth)
	mapper.Field(p, &e.PercentYearlyRaise, EmployeePercentYearlyRaise)
	mapper.Object(p, &e.Employer, mapper.Bind(EmployeeEmployer(CompanyFields()...), m.companies))
	return nil
}

// Registry holds the mappings of the directory, wired to their adapters.
type Registry struct {
	Companies mapper.Mapping[*Company, CompanyKey]
	Employees mapper.Mapping[*Employee, EmployeeKey]
}

type registryOptions struct {
	employeesPolicy mapper.UpdatePolicy[*Employee]
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

// WithEmployeesPolicy sets how a company's employee list is updated.
func WithEmployeesPolicy(policy mapper.UpdatePolicy[*Employee]) RegistryOption {
	return func(o *registryOptions) {
		o.employeesPolicy = policy
	}
}

// NewRegistry wires the directory mappings to their adapters. By default a
// company's employee list is replaced and dropped employees are deleted.
func NewRegistry(companies adapter.Adapter[*Company], employees adapter.Adapter[*Employee], opts ...RegistryOption) *Registry {
	o := registryOptions{
		employeesPolicy: mapper.ReplacePolicy(mapper.DeleteAll[*Employee], true, true),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cm := &CompanyMapping{adapter: companies, policy: o.employeesPolicy}
	em := &EmployeeMapping{adapter: employees, companies: cm}
	cm.employees = em
	return &Registry{Companies: cm, Employees: em}
}
