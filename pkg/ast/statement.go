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
package ast

import (
	"github.com/consensys/go-pil/pkg/util"
)

// Statement represents a single top-level statement within a namespace.
type Statement interface {
	isStatement()
}

// Circuit is the root of a parsed specification: an ordered sequence of
// namespaces, processed strictly in declaration order.
type Circuit struct {
	Namespaces []Namespace
}

// Namespace groups an ordered list of statements under a name, over a row
// domain of a fixed size.
type Namespace struct {
	// Name of this namespace.
	Name string
	// Number of rows in this namespace's trace; must reduce to a constant
	// power of two before any statement is evaluated.
	Degree Expr
	// Statements of this namespace, in declaration order.
	Statements []Statement
}

// ColumnName declares a single column within a witness or fixed declaration,
// along with an optional array size.
type ColumnName struct {
	// Name of the column.
	Name string
	// Optional array size; when present, the declaration gives rise to that
	// many columns.
	ArraySize util.Option[Expr]
}

// ============================================================================
// Definitions
// ============================================================================

// DefConstant binds a name to an expression within the enclosing namespace.
// The expression is not evaluated until the binding is first referenced; in
// particular, it may be (and often is) a lambda.
type DefConstant struct {
	Name  string
	Value Expr
}

// DefWitness declares one or more witness columns.  Witness columns carry no
// value during elaboration; they evaluate to symbolic column handles.
type DefWitness struct {
	Columns []ColumnName
}

// FixedDefinition gives the defining value of a fixed column, either as a row
// mapping or as an array expression.
type FixedDefinition interface {
	isFixedDefinition()
}

// MappingDefinition defines a fixed column by an expression which, for scalar
// columns, must evaluate to a function over the row index.  For array
// declarations of size k, it must instead evaluate to an array of k such
// functions.
type MappingDefinition struct {
	Body Expr
}

// ArrayDefinition defines a fixed column by an array expression, materialised
// over the full row domain.
type ArrayDefinition struct {
	Values ArrayExpr
}

// ArrayExpr describes the rows of an array-defined fixed column.
type ArrayExpr interface {
	isArrayExpr()
}

// ArrayValues is a plain list of row values.
type ArrayValues struct {
	Items []Expr
}

// ArrayRepeat is a segment of row values repeated as often as needed to fill
// the remaining rows of the domain.
type ArrayRepeat struct {
	Items []Expr
}

// ArrayConcat concatenates two array expressions.
type ArrayConcat struct {
	Left  ArrayExpr
	Right ArrayExpr
}

// DefFixed declares a single fixed column (or array of fixed columns) along
// with its defining value.
type DefFixed struct {
	// Column being declared (name plus optional array size).
	Column ColumnName
	// Defining value of the column.
	Definition FixedDefinition
}

// ============================================================================
// Constraints
// ============================================================================

// DefIdentity asserts that an expression vanishes on every row, optionally
// gated by a selector.
type DefIdentity struct {
	// Optional selector gating this identity.
	Selector util.Option[Expr]
	// Expression which must vanish.
	Expr Expr
}

// SelectedExpressions represents one side of a lookup or permutation
// constraint: an ordered tuple of expressions with an optional selector.
type SelectedExpressions struct {
	// Optional selector for this side.
	Selector util.Option[Expr]
	// Expressions making up this side.
	Exprs []Expr
}

// DefLookup asserts that, on every row, the source tuple appears amongst the
// target tuples taken across all rows.
type DefLookup struct {
	Source SelectedExpressions
	Target SelectedExpressions
}

// DefPermutation asserts that the multiset of source tuples equals the
// multiset of target tuples.
type DefPermutation struct {
	Source SelectedExpressions
	Target SelectedExpressions
}

// DefConnect asserts a copy constraint between two tuples of expressions:
// the source tuple, read across all rows, must be connected to the target
// tuple by the permutation the backend derives from it.  Unlike lookups and
// permutations, neither side carries a selector.
type DefConnect struct {
	Source []Expr
	Target []Expr
}

// DefPublic declares a named public input as the value of a given column at a
// given row, where the row must reduce to a concrete integer.
type DefPublic struct {
	// Name of the public value.
	Name string
	// Column whose value is exposed.
	Column Reference
	// Row at which the column is exposed.
	Row Expr
}

func (p *DefConstant) isStatement()    {}
func (p *DefWitness) isStatement()     {}
func (p *DefFixed) isStatement()       {}
func (p *DefIdentity) isStatement()    {}
func (p *DefLookup) isStatement()      {}
func (p *DefPermutation) isStatement() {}
func (p *DefConnect) isStatement()     {}
func (p *DefPublic) isStatement()      {}

func (p *MappingDefinition) isFixedDefinition() {}
func (p *ArrayDefinition) isFixedDefinition()   {}

func (p *ArrayValues) isArrayExpr() {}
func (p *ArrayRepeat) isArrayExpr() {}
func (p *ArrayConcat) isArrayExpr() {}
