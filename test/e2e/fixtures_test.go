// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package e2e_test

import (
	"fmt"
	"strings"
)

func employeeJSON(uuid, name string) string {
	return fmt.Sprintf(`{
		"uuid": %q,
		"name": %q,
		"joinDate": "2020-01-02T03:04:05Z",
		"data": {"salary": 1000, "is_employee_of_month": false, "percent_yearly_raise": 0.5}
	}`, uuid, name)
}

func companyJSON(uuid, name string, employees ...string) string {
	elems := make([]string, 0, len(employees))
	for _, id := range employees {
		elems = append(elems, employeeJSON(id, "Employee "+id))
	}
	return fmt.Sprintf(`{
		"name": %q,
		"data": {"uuid": %q, "founding_date": "1987-10-05", "lawsuits": {"pending": 0}},
		"founder": null,
		"employees": [%s]
	}`, name, uuid, strings.Join(elems, ","))
}
