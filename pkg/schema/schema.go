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
	"golang.org/x/sync/errgroup"
)

// Schema is the output of elaboration: a flat table of modules and columns,
// plus the list of constraints which must hold over them.  A schema is the
// complete contract handed to a proving backend; it never contains partial
// results (elaboration either succeeds entirely, or yields no schema at all).
type Schema struct {
	// Modules (i.e. namespaces) of this schema.
	modules []Module
	// Columns of this schema, across all modules.
	columns []Column
	// Constraints of this schema, in order of declaration.
	constraints []Constraint
	// Public values of this schema.
	publics []PublicValue
}

// EmptySchema constructs a fresh schema onto which new modules, columns and
// constraints can be added.
func EmptySchema() *Schema {
	return &Schema{}
}

// AddModule appends a new module with a given name and degree, returning its
// identifier.
func (p *Schema) AddModule(name string, degree uint) ModuleId {
	mid := uint(len(p.modules))
	p.modules = append(p.modules, Module{name, degree})
	//
	return mid
}

// AddColumn appends a new column, returning its identifier.
func (p *Schema) AddColumn(column Column) ColumnId {
	cid := uint(len(p.columns))
	p.columns = append(p.columns, column)
	//
	return cid
}

// AddConstraint appends a constraint to the identity list.
func (p *Schema) AddConstraint(constraint Constraint) {
	p.constraints = append(p.constraints, constraint)
}

// AddPublicValue appends a public value declaration.
func (p *Schema) AddPublicValue(public PublicValue) {
	p.publics = append(p.publics, public)
}

// Module returns the module with a given identifier.
func (p *Schema) Module(mid ModuleId) *Module {
	return &p.modules[mid]
}

// Modules returns all modules of this schema, in declaration order.
func (p *Schema) Modules() []Module {
	return p.modules
}

// Column returns the column with a given identifier.
func (p *Schema) Column(cid ColumnId) *Column {
	return &p.columns[cid]
}

// Columns returns all columns of this schema, in declaration order.
func (p *Schema) Columns() []Column {
	return p.columns
}

// Constraints returns the identity list of this schema, in declaration order.
func (p *Schema) Constraints() []Constraint {
	return p.constraints
}

// PublicValues returns the public value declarations of this schema.
func (p *Schema) PublicValues() []PublicValue {
	return p.publics
}

// QualifiedName returns the fully qualified name of a given column.
func (p *Schema) QualifiedName(cid ColumnId) string {
	return p.columns[cid].QualifiedName(p)
}

// MaterialiseFixed evaluates the defining function of every fixed column over
// the full row domain of its module.  Columns are materialised in parallel,
// which is safe because evaluation is referentially transparent.  When
// multiple columns fail, the error reported is always that of the first
// failing column in declaration order.  The resulting map is keyed by column
// identifier; witness columns do not appear in it.
func (p *Schema) MaterialiseFixed() (map[ColumnId][]fr.Element, error) {
	var (
		group  errgroup.Group
		values = make(map[ColumnId][]fr.Element)
		errors = make([]error, len(p.columns))
	)
	//
	for i := range p.columns {
		cid := uint(i)
		column := &p.columns[i]
		//
		if column.Kind != Fixed {
			continue
		}
		//
		degree := p.modules[column.Module].Degree
		data := make([]fr.Element, degree)
		values[cid] = data
		//
		group.Go(func() error {
			for row := uint(0); row < degree; row++ {
				val, err := column.RowFunction(row)
				if err != nil {
					errors[cid] = fmt.Errorf("%s: %w", column.QualifiedName(p), err)
					return nil
				}
				//
				data[row] = val
			}
			//
			return nil
		})
	}
	// Individual goroutines never return an error directly, hence neither
	// does Wait.
	_ = group.Wait()
	// Report first failure in declaration order.
	for _, err := range errors {
		if err != nil {
			return nil, err
		}
	}
	//
	return values, nil
}
