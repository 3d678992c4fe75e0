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
	"math/big"

	"github.com/consensys/go-pil/pkg/util"
)

// Expr represents an arbitrary expression of the identity language, as
// produced by a parser.  Expressions are pitched well above the level of the
// underlying constraint system: they include lambdas, function application,
// arrays, conditionals and pattern matching, all of which are compiled out
// during elaboration.
type Expr interface {
	isExpr()
}

// UnaryOp identifies a unary operator.
type UnaryOp uint8

// BinaryOp identifies a binary operator.
type BinaryOp uint8

const (
	// Minus is the (unary) additive inverse.
	Minus UnaryOp = iota
)

const (
	// Add is binary addition.
	Add BinaryOp = iota
	// Sub is binary subtraction.
	Sub
	// Mul is binary multiplication.
	Mul
	// Div is (truncated) integer division.
	Div
	// Mod is the (truncated) integer remainder.
	Mod
	// Pow is exponentiation by a non-negative integer.
	Pow
	// And is bitwise conjunction of integers.
	And
	// Or is bitwise disjunction of integers.
	Or
	// Shl is a left shift of an integer.
	Shl
	// Shr is a right shift of an integer.
	Shr
	// Eq compares two integers for equality, yielding 0 or 1.
	Eq
	// Neq compares two integers for disequality, yielding 0 or 1.
	Neq
	// Lt is the strictly-less-than comparison, yielding 0 or 1.
	Lt
	// Leq is the less-than-or-equal comparison, yielding 0 or 1.
	Leq
	// Gt is the strictly-greater-than comparison, yielding 0 or 1.
	Gt
	// Geq is the greater-than-or-equal comparison, yielding 0 or 1.
	Geq
)

func (op UnaryOp) String() string {
	if op == Minus {
		return "-"
	}
	//
	return "?"
}

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Pow:
		return "**"
	case And:
		return "&"
	case Or:
		return "|"
	case Shl:
		return "<<"
	case Shr:
		return ">>"
	case Eq:
		return "=="
	case Neq:
		return "!="
	case Lt:
		return "<"
	case Leq:
		return "<="
	case Gt:
		return ">"
	case Geq:
		return ">="
	default:
		return "?"
	}
}

// ============================================================================
// Leaf expressions
// ============================================================================

// Constant represents an integer literal.
type Constant struct {
	Val *big.Int
}

// Reference represents a (possibly qualified) use of a name.  The name may
// refer to a binding, a column, or a native function; which one is only
// determined during elaboration.  A reference to an array column may carry an
// index expression, which must reduce to a concrete integer.  The Next flag
// marks a next-row access of a column (the "'" operator of the surface
// syntax).
type Reference struct {
	// Optional namespace qualifier; empty for bare references.
	Namespace string
	// Name being referenced.
	Name string
	// Optional index into an array column.
	Index util.Option[Expr]
	// Whether this reference accesses the next row.
	Next bool
}

// ============================================================================
// Compound expressions
// ============================================================================

// UnaryOperation applies a unary operator to an expression.
type UnaryOperation struct {
	Op  UnaryOp
	Arg Expr
}

// BinaryOperation applies a binary operator to two expressions.
type BinaryOperation struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Lambda represents an anonymous function of one or more parameters.
type Lambda struct {
	Params []string
	Body   Expr
}

// FunctionCall applies a callee expression to zero or more arguments.  The
// callee does not have to be a reference; in particular, calling the result of
// another call is how curried functions are applied.
type FunctionCall struct {
	Callee Expr
	Args   []Expr
}

// ArrayLiteral constructs an array from its element expressions.
type ArrayLiteral struct {
	Items []Expr
}

// IndexAccess reads a single element of an array value.  The index must
// reduce to a concrete integer within bounds during elaboration.
type IndexAccess struct {
	Source Expr
	Index  Expr
}

// If selects between two branches based on an integer condition, where zero is
// treated as false and everything else as true.  Conditions must reduce to
// concrete integers during elaboration; this is not a per-row conditional.
type If struct {
	Condition   Expr
	TrueBranch  Expr
	FalseBranch Expr
}

// MatchArm pairs a pattern with the expression it selects.  An empty pattern
// acts as a catch-all.
type MatchArm struct {
	// Pattern to compare against; empty for catch-all arms.
	Pattern util.Option[Expr]
	// Expression evaluated when this arm is selected.
	Body Expr
}

// Match evaluates its scrutinee and selects the first arm whose pattern
// matches it.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
}

// Next shifts a column access one row forward.  Nested applications compose
// additively.
type Next struct {
	Arg Expr
}

func (e *Constant) isExpr()        {}
func (e *Reference) isExpr()       {}
func (e *UnaryOperation) isExpr()  {}
func (e *BinaryOperation) isExpr() {}
func (e *Lambda) isExpr()          {}
func (e *FunctionCall) isExpr()    {}
func (e *ArrayLiteral) isExpr()    {}
func (e *IndexAccess) isExpr()     {}
func (e *If) isExpr()              {}
func (e *Match) isExpr()           {}
func (e *Next) isExpr()            {}
