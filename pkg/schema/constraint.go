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

	"github.com/consensys/go-pil/pkg/util"
)

// Constraint is implemented by every record which can appear in the identity
// list of a schema.
type Constraint interface {
	fmt.Stringer
	// Handle returns a unique, human-readable identifier for this constraint,
	// used when reporting failures back to the user.
	Handle() string
}

// ============================================================================
// Polynomial Identity
// ============================================================================

// PolynomialIdentity asserts that an expression evaluates to zero on every row
// of its module.  When a selector is present, the assertion applies only to
// those rows where the selector evaluates to a non-zero value.
type PolynomialIdentity struct {
	// Unique handle for this identity.
	Name string
	// Enclosing module.
	Module ModuleId
	// Optional selector gating this identity.
	Selector util.Option[Expr]
	// Expression which must vanish.
	Expr Expr
}

// Handle returns a unique identifier for this constraint.
func (p *PolynomialIdentity) Handle() string {
	return p.Name
}

func (p *PolynomialIdentity) String() string {
	if p.Selector.HasValue() {
		return fmt.Sprintf("%s => %s = 0", p.Selector.Unwrap(), p.Expr)
	}
	//
	return fmt.Sprintf("%s = 0", p.Expr)
}

// ============================================================================
// Lookup
// ============================================================================

// LookupVector encapsulates all expressions on one side of a lookup or
// permutation constraint, along with an optional selector which filters the
// rows on which the side is active.
type LookupVector struct {
	// Optional selector for this vector.
	Selector util.Option[Expr]
	// Terms making up this vector.
	Terms []Expr
}

// UnfilteredVector constructs a vector which has no selector.
func UnfilteredVector(terms ...Expr) LookupVector {
	return LookupVector{util.None[Expr](), terms}
}

// FilteredVector constructs a vector which has a selector.
func FilteredVector(selector Expr, terms ...Expr) LookupVector {
	return LookupVector{util.Some(selector), terms}
}

// Arity returns the number of terms in this vector.
func (p *LookupVector) Arity() uint {
	return uint(len(p.Terms))
}

func (p *LookupVector) String() string {
	var body string
	//
	for i, term := range p.Terms {
		if i != 0 {
			body = fmt.Sprintf("%s, %s", body, term)
		} else {
			body = term.String()
		}
	}
	//
	if p.Selector.HasValue() {
		return fmt.Sprintf("%s {%s}", p.Selector.Unwrap(), body)
	}
	//
	return fmt.Sprintf("{%s}", body)
}

// LookupConstraint asserts that, on every row, the tuple of source values
// appears amongst the tuples of target values taken across all rows (set
// containment, not row-wise equality).
type LookupConstraint struct {
	// Unique handle for this constraint.
	Name string
	// Enclosing module.
	Module ModuleId
	// Source (left) side of the lookup.
	Source LookupVector
	// Target (right) side of the lookup.
	Target LookupVector
}

// Handle returns a unique identifier for this constraint.
func (p *LookupConstraint) Handle() string {
	return p.Name
}

func (p *LookupConstraint) String() string {
	return fmt.Sprintf("%s in %s", &p.Source, &p.Target)
}

// ============================================================================
// Permutation
// ============================================================================

// PermutationConstraint asserts that the multiset of source tuples equals the
// multiset of target tuples (i.e. one side is a permutation of the other).
type PermutationConstraint struct {
	// Unique handle for this constraint.
	Name string
	// Enclosing module.
	Module ModuleId
	// Source (left) side of the permutation.
	Source LookupVector
	// Target (right) side of the permutation.
	Target LookupVector
}

// Handle returns a unique identifier for this constraint.
func (p *PermutationConstraint) Handle() string {
	return p.Name
}

func (p *PermutationConstraint) String() string {
	return fmt.Sprintf("%s is %s", &p.Source, &p.Target)
}

// ============================================================================
// Connect
// ============================================================================

// ConnectConstraint asserts a copy constraint between the source and target
// tuples: the backend must wire the cells of the source columns to the
// corresponding cells of the target columns.  Neither side carries a
// selector.
type ConnectConstraint struct {
	// Unique handle for this constraint.
	Name string
	// Enclosing module.
	Module ModuleId
	// Source (left) tuple of the connection.
	Source []Expr
	// Target (right) tuple of the connection.
	Target []Expr
}

// Handle returns a unique identifier for this constraint.
func (p *ConnectConstraint) Handle() string {
	return p.Name
}

func (p *ConnectConstraint) String() string {
	return fmt.Sprintf("%s connect %s", tupleString(p.Source), tupleString(p.Target))
}

func tupleString(terms []Expr) string {
	var body string
	//
	for i, term := range terms {
		if i != 0 {
			body = fmt.Sprintf("%s, %s", body, term)
		} else {
			body = term.String()
		}
	}
	//
	return fmt.Sprintf("{%s}", body)
}

// ============================================================================
// Public Value
// ============================================================================

// PublicValue declares a named public input as the value of a given column at
// a given (concrete) row.
type PublicValue struct {
	// Name of this public value.
	Name string
	// Column whose value is exposed.
	Column ColumnId
	// Row at which the column is exposed.
	Row uint
}

func (p *PublicValue) String() string {
	return fmt.Sprintf("public %s = c%d[%d]", p.Name, p.Column, p.Row)
}
