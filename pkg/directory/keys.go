// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"github.com/stacklok/jsonbind/pkg/keys"
)

type companyField int

const (
	companyUUID companyField = iota
	companyName
	companyFoundingDate
	companyPendingLawsuits
	companyFounder
	companyEmployees
)

// CompanyKey addresses a field of a company document. Relational keys carry
// the keys to map on the related employees.
type CompanyKey struct {
	field  companyField
	nested []EmployeeKey
}

// Company keys.
var (
	CompanyUUID            = CompanyKey{field: companyUUID}
	CompanyName            = CompanyKey{field: companyName}
	CompanyFoundingDate    = CompanyKey{field: companyFoundingDate}
	CompanyPendingLawsuits = CompanyKey{field: companyPendingLawsuits}
)

// CompanyFounder addresses the founder, mapped with nested keys.
func CompanyFounder(nested ...EmployeeKey) CompanyKey {
	return CompanyKey{field: companyFounder, nested: nested}
}

// CompanyEmployees addresses the employees, mapped with nested keys.
func CompanyEmployees(nested ...EmployeeKey) CompanyKey {
	return CompanyKey{field: companyEmployees, nested: nested}
}

// KeyPath returns the JSON path of the field.
func (k CompanyKey) KeyPath() string {
	switch k.field {
	case companyUUID:
		return "data.uuid"
	case companyName:
		return "name"
	case companyFoundingDate:
		return "data.founding_date"
	case companyPendingLawsuits:
		return "data.lawsuits.pending"
	case companyFounder:
		return "founder"
	case companyEmployees:
		return "employees"
	}
	return ""
}

// NestedKeys returns the employee keys of relational keys.
func (k CompanyKey) NestedKeys() keys.Erased {
	switch k.field {
	case companyFounder, companyEmployees:
		return keys.Nested(k.nested...)
	default:
		return nil
	}
}

// String returns the key path.
func (k CompanyKey) String() string { return k.KeyPath() }

// CompanyFields returns the keys of the company's own fields.
func CompanyFields() []CompanyKey {
	return []CompanyKey{CompanyUUID, CompanyName, CompanyFoundingDate, CompanyPendingLawsuits}
}

type employeeField int

const (
	employeeUUID employeeField = iota
	employeeName
	employeeJoinDate
	employeeSalary
	employeeIsEmployeeOfMonth
	employeePercentYearlyRaise
	employeeEmployer
)

// EmployeeKey addresses a field of an employee document.
type EmployeeKey struct {
	field  employeeField
	nested []CompanyKey
}

// Employee keys.
var (
	EmployeeUUID               = EmployeeKey{field: employeeUUID}
	EmployeeName               = EmployeeKey{field: employeeName}
	EmployeeJoinDate           = EmployeeKey{field: employeeJoinDate}
	EmployeeSalary             = EmployeeKey{field: employeeSalary}
	EmployeeIsEmployeeOfMonth  = EmployeeKey{field: employeeIsEmployeeOfMonth}
	EmployeePercentYearlyRaise = EmployeeKey{field: employeePercentYearlyRaise}
)

// EmployeeEmployer addresses the employing company, mapped with nested keys.
func EmployeeEmployer(nested ...CompanyKey) EmployeeKey {
	return EmployeeKey{field: employeeEmployer, nested: nested}
}

// KeyPath returns the JSON path of the field.
func (k EmployeeKey) KeyPath() string {
	switch k.field {
	case employeeUUID:
		return "uuid"
	case employeeName:
		return "name"
	case employeeJoinDate:
		return "joinDate"
	case employeeSalary:
		return "data.salary"
	case employeeIsEmployeeOfMonth:
		return "data.is_employee_of_month"
	case employeePercentYearlyRaise:
		return "data.percent_yearly_raise"
	case employeeEmployer:
		return "company"
	}
	return ""
}

// NestedKeys returns the company keys of the employer key.
func (k EmployeeKey) NestedKeys() keys.Erased {
	if k.field != employeeEmployer {
		return nil
	}
	return keys.Nested(k.nested...)
}

// String returns the key path.
func (k EmployeeKey) String() string { return k.KeyPath() }

// EmployeeFields returns the keys of the employee's own fields.
func EmployeeFields() []EmployeeKey {
	return []EmployeeKey{
		EmployeeUUID,
		EmployeeName,
		EmployeeJoinDate,
		EmployeeSalary,
		EmployeeIsEmployeeOfMonth,
		EmployeePercentYearlyRaise,
	}
}

// CompanyKeyFor returns the company key with the given path. Relational
// keys come back without nested keys.
func CompanyKeyFor(path string) (CompanyKey, bool) {
	for _, k := range append(CompanyFields(), CompanyFounder(), CompanyEmployees()) {
		if k.KeyPath() == path {
			return k, true
		}
	}
	return CompanyKey{}, false
}

// EmployeeKeyFor returns the employee key with the given path. The employer
// key comes back without nested keys.
func EmployeeKeyFor(path string) (EmployeeKey, bool) {
	for _, k := range append(EmployeeFields(), EmployeeEmployer()) {
		if k.KeyPath() == path {
			return k, true
		}
	}
	return EmployeeKey{}, false
}
