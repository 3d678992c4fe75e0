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
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Expr represents a flat expression over the columns of an elaborated
// specification.  By the time an expression reaches this form, all functions,
// arrays and row shifts have been compiled out: the only remaining leaves are
// field constants and column accesses with a relative row offset.  Expressions
// in this form are handed directly to a proving backend.
type Expr interface {
	fmt.Stringer
	// AsConstant attempts to evaluate this expression as a constant field
	// element.  If this expression accesses any column, then nil is returned.
	AsConstant() *fr.Element
	// Columns returns the identifiers of all columns accessed by this
	// expression (including duplicates).
	Columns() []ColumnId
}

// ============================================================================
// Constant
// ============================================================================

// Constant represents a fixed field element within an expression.
type Constant struct{ Val fr.Element }

// NewConstant constructs a constant expression from a given field element.
func NewConstant(val fr.Element) *Constant {
	return &Constant{val}
}

// AsConstant returns the underlying field element (which always exists).
func (e *Constant) AsConstant() *fr.Element {
	var clone fr.Element
	//
	clone.Set(&e.Val)
	//
	return &clone
}

// Columns returns the columns accessed by this expression (i.e. none).
func (e *Constant) Columns() []ColumnId {
	return nil
}

func (e *Constant) String() string {
	return e.Val.String()
}

// ============================================================================
// Column Access
// ============================================================================

// ColumnAccess represents reading the value of a given column at the current
// row, offset by a given (possibly negative) shift.  A shift of one
// corresponds to the "next row" operator of the source language.
type ColumnAccess struct {
	// Column being accessed.
	Column ColumnId
	// Relative row offset at which the column is accessed.
	Shift int
}

// NewColumnAccess constructs an access of a given column with a given shift.
func NewColumnAccess(column ColumnId, shift int) *ColumnAccess {
	return &ColumnAccess{column, shift}
}

// AsConstant is always nil for a column access, since the value of a column at
// a given row is not known during elaboration.
func (e *ColumnAccess) AsConstant() *fr.Element {
	return nil
}

// Columns returns the columns accessed by this expression.
func (e *ColumnAccess) Columns() []ColumnId {
	return []ColumnId{e.Column}
}

func (e *ColumnAccess) String() string {
	switch {
	case e.Shift == 0:
		return fmt.Sprintf("c%d", e.Column)
	case e.Shift == 1:
		return fmt.Sprintf("c%d'", e.Column)
	default:
		return fmt.Sprintf("shift(c%d, %d)", e.Column, e.Shift)
	}
}

// ============================================================================
// Addition
// ============================================================================

// Add represents the sum over one or more expressions.
type Add struct{ Args []Expr }

// AsConstant attempts to evaluate this sum as a constant field element.
func (e *Add) AsConstant() *fr.Element {
	fn := func(l *fr.Element, r *fr.Element) { l.Add(l, r) }
	return constantOfExprs(e.Args, fn)
}

// Columns returns the columns accessed by this expression.
func (e *Add) Columns() []ColumnId {
	return columnsOfExprs(e.Args)
}

func (e *Add) String() string {
	return naryString("+", e.Args)
}

// ============================================================================
// Subtraction
// ============================================================================

// Sub represents the subtraction of one or more expressions from the first.
type Sub struct{ Args []Expr }

// AsConstant attempts to evaluate this subtraction as a constant field element.
func (e *Sub) AsConstant() *fr.Element {
	fn := func(l *fr.Element, r *fr.Element) { l.Sub(l, r) }
	return constantOfExprs(e.Args, fn)
}

// Columns returns the columns accessed by this expression.
func (e *Sub) Columns() []ColumnId {
	return columnsOfExprs(e.Args)
}

func (e *Sub) String() string {
	return naryString("-", e.Args)
}

// ============================================================================
// Multiplication
// ============================================================================

// Mul represents the product over one or more expressions.
type Mul struct{ Args []Expr }

// AsConstant attempts to evaluate this product as a constant field element.
func (e *Mul) AsConstant() *fr.Element {
	fn := func(l *fr.Element, r *fr.Element) { l.Mul(l, r) }
	return constantOfExprs(e.Args, fn)
}

// Columns returns the columns accessed by this expression.
func (e *Mul) Columns() []ColumnId {
	return columnsOfExprs(e.Args)
}

func (e *Mul) String() string {
	return naryString("*", e.Args)
}

// ============================================================================
// Negation
// ============================================================================

// Neg represents the additive inverse of an expression.
type Neg struct{ Arg Expr }

// AsConstant attempts to evaluate this negation as a constant field element.
func (e *Neg) AsConstant() *fr.Element {
	val := e.Arg.AsConstant()
	//
	if val == nil {
		return nil
	}
	//
	val.Neg(val)
	//
	return val
}

// Columns returns the columns accessed by this expression.
func (e *Neg) Columns() []ColumnId {
	return e.Arg.Columns()
}

func (e *Neg) String() string {
	return fmt.Sprintf("(-%s)", e.Arg)
}

// ============================================================================
// Smart constructors
// ============================================================================

// Sum constructs the sum of zero or more expressions, folding the result into
// a single constant whenever no column is accessed.
func Sum(args ...Expr) Expr {
	if folded := foldConstants(&Add{args}); folded != nil {
		return folded
	}
	//
	return &Add{args}
}

// Difference constructs the subtraction of one or more expressions from the
// first.  Subtracting two structurally equal expressions folds to zero, which
// ensures that identities such as x - x are definitionally zero irrespective
// of the row at which a backend later evaluates them.
func Difference(args ...Expr) Expr {
	if len(args) == 2 && Equal(args[0], args[1]) {
		return &Constant{}
	} else if folded := foldConstants(&Sub{args}); folded != nil {
		return folded
	}
	//
	return &Sub{args}
}

// Product constructs the product of zero or more expressions, folding the
// result into a single constant whenever no column is accessed.
func Product(args ...Expr) Expr {
	if folded := foldConstants(&Mul{args}); folded != nil {
		return folded
	}
	//
	return &Mul{args}
}

// Negate constructs the additive inverse of an expression, folding constants.
func Negate(arg Expr) Expr {
	if folded := foldConstants(&Neg{arg}); folded != nil {
		return folded
	}
	//
	return &Neg{arg}
}

// Equal determines whether two expressions are structurally identical.
func Equal(l Expr, r Expr) bool {
	switch l := l.(type) {
	case *Constant:
		r, ok := r.(*Constant)
		return ok && l.Val.Equal(&r.Val)
	case *ColumnAccess:
		r, ok := r.(*ColumnAccess)
		return ok && l.Column == r.Column && l.Shift == r.Shift
	case *Add:
		r, ok := r.(*Add)
		return ok && equalExprs(l.Args, r.Args)
	case *Sub:
		r, ok := r.(*Sub)
		return ok && equalExprs(l.Args, r.Args)
	case *Mul:
		r, ok := r.(*Mul)
		return ok && equalExprs(l.Args, r.Args)
	case *Neg:
		r, ok := r.(*Neg)
		return ok && Equal(l.Arg, r.Arg)
	default:
		panic(fmt.Sprintf("unknown expression %v", l))
	}
}

// ============================================================================
// Helpers
// ============================================================================

func equalExprs(l []Expr, r []Expr) bool {
	if len(l) != len(r) {
		return false
	}
	//
	for i := range l {
		if !Equal(l[i], r[i]) {
			return false
		}
	}
	//
	return true
}

func foldConstants(e Expr) Expr {
	if val := e.AsConstant(); val != nil {
		return &Constant{*val}
	}
	//
	return nil
}

func constantOfExprs(args []Expr, fn func(*fr.Element, *fr.Element)) *fr.Element {
	var acc *fr.Element
	//
	for _, arg := range args {
		val := arg.AsConstant()
		//
		if val == nil {
			return nil
		} else if acc == nil {
			acc = val
		} else {
			fn(acc, val)
		}
	}
	//
	return acc
}

func columnsOfExprs(args []Expr) []ColumnId {
	var cols []ColumnId
	//
	for _, arg := range args {
		cols = append(cols, arg.Columns()...)
	}
	//
	return cols
}

func naryString(op string, args []Expr) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, arg := range args {
		if i != 0 {
			builder.WriteString(" ")
			builder.WriteString(op)
			builder.WriteString(" ")
		}
		//
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
