// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package directory is a company directory built on the mapper: companies,
// their founders and their employees, mapped from a JSON API shape where
// company metadata lives under "data".
package directory

import (
	"time"
)

// Company is an employer.
type Company struct {
	UUID            string      `json:"uuid"`
	Name            string      `json:"name"`
	FoundingDate    time.Time   `json:"founding_date"`
	PendingLawsuits int         `json:"pending_lawsuits"`
	Founder         *Employee   `json:"founder,omitempty"`
	Employees       []*Employee `json:"employees,omitempty"`
}

// Equal compares companies by UUID.
func (c *Company) Equal(other *Company) bool {
	return c != nil && other != nil && c.UUID == other.UUID
}

// Employee works for a Company.
type Employee struct {
	UUID               string    `json:"uuid"`
	Name               string    `json:"name"`
	JoinDate           time.Time `json:"join_date"`
	Salary             int       `json:"salary"`
	IsEmployeeOfMonth  bool      `json:"is_employee_of_month"`
	PercentYearlyRaise float64   `json:"percent_yearly_raise"`
	Employer           *Company  `json:"-"`
}

// Equal compares employees by UUID.
func (e *Employee) Equal(other *Employee) bool {
	return e != nil && other != nil && e.UUID == other.UUID
}
