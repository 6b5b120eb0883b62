// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package mapper maps JSON documents onto Go objects and back.
//
// A Mapping describes one object type: the adapter that persists it, the
// primary keys that identify it in JSON, and a Map procedure that lists the
// object's fields with the field functions of this package:
//
//	func (m *EmployeeMapping) Map(e *Employee, p *mapper.Payload[EmployeeKey]) error {
//		mapper.Field(p, &e.UUID, EmployeeUUID)
//		mapper.Field(p, &e.Name, EmployeeName)
//		mapper.Object(p, &e.Employer, mapper.Bind(EmployeeEmployer(CompanyFields()...), m.companies))
//		return nil
//	}
//
// The same procedure runs in both directions. Reading JSON, each field
// function pulls the value at its key path into the field; writing JSON, it
// encodes the field at that path. The first failing field records its error
// on the payload and turns every later field function into a no-op.
//
// Each object, including every related object reached through Object and
// Collection, is mapped inside an adapter transaction, and is looked up by
// primary key inside it. Only the outermost mapping of an adapter tag opens
// and closes it, so a whole object graph commits or rolls back together.
// Nested mappings join only a transaction opened by an ancestor of the same
// tag; a transaction held by another pass is waited for in MappingWillBegin.
//
// A Mapper keeps no state of its own. Adapters are driven from the calling
// goroutine and must serialize concurrent mapping passes themselves.
package mapper
