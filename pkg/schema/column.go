// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package schema

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// ModuleId uniquely identifies a module (i.e. namespace) within a schema.
type ModuleId = uint

// ColumnId uniquely identifies a column within a schema.
type ColumnId = uint

// ColumnKind distinguishes fixed columns (whose values are determined during
// elaboration) from witness columns (whose values are supplied later, by
// whatever generates the execution trace).
type ColumnKind uint8

const (
	// Fixed columns are defined by a total function over the row domain.
	Fixed ColumnKind = iota
	// Witness columns carry no value during elaboration.
	Witness
)

func (p ColumnKind) String() string {
	switch p {
	case Fixed:
		return "fixed"
	case Witness:
		return "witness"
	default:
		return "unknown"
	}
}

// RowFunction computes the value of a fixed column at a given row.  It must be
// total over the row domain [0,n) of the enclosing module.
type RowFunction func(uint) (fr.Element, error)

// Module describes a namespace of the elaborated specification, most notably
// its row-domain size (which is always a power of two).
type Module struct {
	// Name of this module.
	Name string
	// Number of rows in this module's trace (a power of two).
	Degree uint
}

// Column describes a single column of the elaborated specification.  A source
// declaration with array arity k gives rise to k columns sharing a name
// prefix, distinguished by their index.
type Column struct {
	// Enclosing module.
	Module ModuleId
	// Name of this column.  For members of an array declaration, this
	// includes the index suffix (e.g. "x_2").
	Name string
	// Index within the declaring array (zero for scalar declarations).
	Index uint
	// Kind of this column (fixed or witness).
	Kind ColumnKind
	// Defining function for fixed columns; nil for witness columns.
	RowFunction RowFunction
}

// QualifiedName returns the fully qualified name of a column within a given
// schema, for example "fib.x_2".
func (p *Column) QualifiedName(schema *Schema) string {
	module := schema.Module(p.Module)
	//
	if module.Name == "" {
		return p.Name
	}
	//
	return fmt.Sprintf("%s.%s", module.Name, p.Name)
}
