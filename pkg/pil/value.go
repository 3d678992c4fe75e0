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
package pil

import (
	"math"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/go-pil/pkg/ast"
	"github.com/consensys/go-pil/pkg/schema"
)

// Value represents anything the identity language can produce during
// elaboration.  Values fall into two tiers: concrete values (integers, field
// elements, arrays, closures) which are fully computed, and symbolic values
// (column handles, expanded terms) which stand for per-row quantities that
// cannot be known until a witness exists.
type Value interface {
	isValue()
}

// Int is an exact, arbitrary-precision integer.  Integers are the currency of
// compile-time computation: array lengths, recursion bounds and row indices
// are all integers.
type Int struct {
	Val *big.Int
}

// Field is an element of the target proving field.
type Field struct {
	Val fr.Element
}

// Array is a fixed-length sequence of values.
type Array struct {
	Items []Value
}

// Closure is a lambda paired with the environment frame captured at its
// definition site, plus the namespace in which its body's free names resolve.
type Closure struct {
	// Namespace in which the closure was defined.
	Namespace string
	// Parameters of the closure.
	Params []string
	// Body of the closure.
	Body ast.Expr
	// Captured frame (may be nil for top-level definitions).
	Frame *Frame
}

// Native is a built-in function, such as array_new or field_modulus.
type Native struct {
	Def *NativeDefinition
}

// ColumnRef is a symbolic handle on a column, carrying an accumulated row
// shift.  Witness columns always evaluate to a ColumnRef; fixed columns do so
// as well whenever they are referenced inside a constraint.
type ColumnRef struct {
	// Column being referenced.
	Column schema.ColumnId
	// Accumulated row shift.
	Shift int
}

// Term is a symbolic expression over columns, produced whenever arithmetic
// touches a column handle.  Terms are expanded rather than evaluated.
type Term struct {
	Expr schema.Expr
}

// Constraint is a constraint-shaped value produced by an identity, lookup or
// permutation statement, awaiting collection.
type Constraint struct {
	Body schema.Constraint
}

// Unit is produced by statements which define something rather than compute
// something.
type Unit struct{}

func (v *Int) isValue()        {}
func (v *Field) isValue()      {}
func (v *Array) isValue()      {}
func (v *Closure) isValue()    {}
func (v *Native) isValue()     {}
func (v *ColumnRef) isValue()  {}
func (v *Term) isValue()       {}
func (v *Constraint) isValue() {}
func (v *Unit) isValue()       {}

// NewInt constructs an integer value from a signed machine integer.
func NewInt(val int64) *Int {
	return &Int{big.NewInt(val)}
}

// typeName describes the shape of a value for error messages.
func typeName(v Value) string {
	switch v.(type) {
	case *Int:
		return "integer"
	case *Field:
		return "field element"
	case *Array:
		return "array"
	case *Closure, *Native:
		return "function"
	case *ColumnRef:
		return "column"
	case *Term:
		return "symbolic expression"
	case *Constraint:
		return "constraint"
	case *Unit:
		return "unit"
	default:
		return "unknown"
	}
}

// fieldOf reduces an integer into the target field, handling negative values.
func fieldOf(val *big.Int) fr.Element {
	var elem fr.Element
	//
	elem.SetBigInt(val)
	//
	return elem
}

// asExpr converts a value into a flat expression term.  Only integers, field
// elements, column handles and terms have such a form; everything else yields
// an error with the given code.
func asExpr(v Value, code ErrorCode) (schema.Expr, *Error) {
	switch v := v.(type) {
	case *Int:
		return schema.NewConstant(fieldOf(v.Val)), nil
	case *Field:
		return schema.NewConstant(v.Val), nil
	case *ColumnRef:
		return schema.NewColumnAccess(v.Column, v.Shift), nil
	case *Term:
		return v.Expr, nil
	default:
		return nil, errorf(code, "expected a polynomial term, found %s", typeName(v))
	}
}

// symbolic determines whether a value belongs to the symbolic tier.
func symbolic(v Value) bool {
	switch v.(type) {
	case *ColumnRef, *Term:
		return true
	default:
		return false
	}
}

// ============================================================================
// Binary operators
// ============================================================================

// applyBinary applies a binary operator to two values, dispatching on the
// shapes of its operands.  Supported combinations are: integer/integer (full
// operator set), field/field and field/integer (ring operations only), and
// anything involving a column handle or term (ring operations, going
// symbolic).  Every other combination is a type mismatch.
func applyBinary(op ast.BinaryOp, l Value, r Value) (Value, *Error) {
	li, lIsInt := l.(*Int)
	ri, rIsInt := r.(*Int)
	// Exact integer arithmetic
	if lIsInt && rIsInt {
		return applyIntBinary(op, li, ri)
	}
	// Structural comparisons
	if op >= ast.Eq {
		return applyComparison(op, l, r)
	}
	// Everything below is ring arithmetic only.
	if op != ast.Add && op != ast.Sub && op != ast.Mul {
		return nil, errorf(TypeMismatch, "operator %s cannot be applied to %s and %s",
			op, typeName(l), typeName(r))
	}
	// Symbolic expansion
	if symbolic(l) || symbolic(r) {
		return applySymbolicBinary(op, l, r)
	}
	// Field arithmetic (with integer coercion)
	lf, lErr := asFieldElement(l)
	if lErr != nil {
		return nil, lErr
	}
	//
	rf, rErr := asFieldElement(r)
	if rErr != nil {
		return nil, rErr
	}
	//
	var res fr.Element
	//
	switch op {
	case ast.Add:
		res.Add(&lf, &rf)
	case ast.Sub:
		res.Sub(&lf, &rf)
	case ast.Mul:
		res.Mul(&lf, &rf)
	}
	//
	return &Field{res}, nil
}

func asFieldElement(v Value) (fr.Element, *Error) {
	switch v := v.(type) {
	case *Int:
		return fieldOf(v.Val), nil
	case *Field:
		return v.Val, nil
	default:
		var empty fr.Element
		return empty, errorf(TypeMismatch, "expected a field element, found %s", typeName(v))
	}
}

func applySymbolicBinary(op ast.BinaryOp, l Value, r Value) (Value, *Error) {
	le, err := asExpr(l, TypeMismatch)
	if err != nil {
		return nil, err
	}
	//
	re, err := asExpr(r, TypeMismatch)
	if err != nil {
		return nil, err
	}
	//
	switch op {
	case ast.Add:
		return &Term{schema.Sum(le, re)}, nil
	case ast.Sub:
		return &Term{schema.Difference(le, re)}, nil
	default:
		return &Term{schema.Product(le, re)}, nil
	}
}

func applyIntBinary(op ast.BinaryOp, l *Int, r *Int) (Value, *Error) {
	res := new(big.Int)
	//
	switch op {
	case ast.Add:
		res.Add(l.Val, r.Val)
	case ast.Sub:
		res.Sub(l.Val, r.Val)
	case ast.Mul:
		res.Mul(l.Val, r.Val)
	case ast.Div:
		if r.Val.Sign() == 0 {
			return nil, errorf(TypeMismatch, "division by zero")
		}
		//
		res.Quo(l.Val, r.Val)
	case ast.Mod:
		if r.Val.Sign() == 0 {
			return nil, errorf(TypeMismatch, "remainder by zero")
		}
		//
		res.Rem(l.Val, r.Val)
	case ast.Pow:
		if r.Val.Sign() < 0 || !r.Val.IsUint64() || r.Val.Uint64() > math.MaxUint32 {
			return nil, errorf(TypeMismatch, "invalid exponent %s", r.Val)
		}
		//
		res.Exp(l.Val, r.Val, nil)
	case ast.And:
		res.And(l.Val, r.Val)
	case ast.Or:
		res.Or(l.Val, r.Val)
	case ast.Shl, ast.Shr:
		if r.Val.Sign() < 0 || !r.Val.IsUint64() || r.Val.Uint64() > math.MaxUint16 {
			return nil, errorf(TypeMismatch, "invalid shift amount %s", r.Val)
		} else if op == ast.Shl {
			res.Lsh(l.Val, uint(r.Val.Uint64()))
		} else {
			res.Rsh(l.Val, uint(r.Val.Uint64()))
		}
	default:
		return applyComparison(op, l, r)
	}
	//
	return &Int{res}, nil
}

// applyComparison compares two values structurally, yielding the integer one
// when the comparison holds and zero otherwise.  Arrays compare elementwise
// (lexicographically for the ordering operators).
func applyComparison(op ast.BinaryOp, l Value, r Value) (Value, *Error) {
	sign, err := compareValues(l, r)
	if err != nil {
		return nil, err
	}
	//
	var holds bool
	//
	switch op {
	case ast.Eq:
		holds = sign == 0
	case ast.Neq:
		holds = sign != 0
	case ast.Lt:
		holds = sign < 0
	case ast.Leq:
		holds = sign <= 0
	case ast.Gt:
		holds = sign > 0
	case ast.Geq:
		holds = sign >= 0
	default:
		return nil, errorf(TypeMismatch, "operator %s cannot be applied to %s and %s",
			op, typeName(l), typeName(r))
	}
	//
	if holds {
		return NewInt(1), nil
	}
	//
	return NewInt(0), nil
}

func compareValues(l Value, r Value) (int, *Error) {
	switch l := l.(type) {
	case *Int:
		if r, ok := r.(*Int); ok {
			return l.Val.Cmp(r.Val), nil
		}
	case *Field:
		if r, ok := r.(*Field); ok {
			return l.Val.Cmp(&r.Val), nil
		}
	case *Array:
		if r, ok := r.(*Array); ok {
			return compareArrays(l, r)
		}
	}
	//
	return 0, errorf(TypeMismatch, "cannot compare %s with %s", typeName(l), typeName(r))
}

func compareArrays(l *Array, r *Array) (int, *Error) {
	n := min(len(l.Items), len(r.Items))
	//
	for i := 0; i < n; i++ {
		sign, err := compareValues(l.Items[i], r.Items[i])
		//
		if err != nil || sign != 0 {
			return sign, err
		}
	}
	// Shorter array orders first.
	return len(l.Items) - len(r.Items), nil
}

// ============================================================================
// Unary operators
// ============================================================================

// applyUnary applies a unary operator to a value.
func applyUnary(op ast.UnaryOp, v Value) (Value, *Error) {
	if op != ast.Minus {
		return nil, errorf(TypeMismatch, "unknown unary operator %s", op)
	}
	//
	switch v := v.(type) {
	case *Int:
		return &Int{new(big.Int).Neg(v.Val)}, nil
	case *Field:
		var res fr.Element
		//
		res.Neg(&v.Val)
		//
		return &Field{res}, nil
	case *ColumnRef, *Term:
		expr, err := asExpr(v, TypeMismatch)
		if err != nil {
			return nil, err
		}
		//
		return &Term{schema.Negate(expr)}, nil
	default:
		return nil, errorf(TypeMismatch, "operator %s cannot be applied to %s", op, typeName(v))
	}
}
