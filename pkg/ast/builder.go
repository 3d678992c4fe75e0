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

// This file provides free-standing helpers for constructing expressions
// programmatically.  They are used throughout the test suite, and by any
// tooling (e.g. an instruction-set compiler) which generates specifications
// rather than parsing them.

// Number constructs an integer literal from a signed machine integer.
func Number(val int64) Expr {
	return &Constant{big.NewInt(val)}
}

// BigNumber constructs an integer literal from an arbitrary-precision integer.
func BigNumber(val *big.Int) Expr {
	return &Constant{val}
}

// DirectReference constructs an unqualified reference to a given name at the
// current row.
func DirectReference(name string) Expr {
	return &Reference{"", name, util.None[Expr](), false}
}

// QualifiedReference constructs a reference to a name within an explicitly
// given namespace.
func QualifiedReference(namespace string, name string) Expr {
	return &Reference{namespace, name, util.None[Expr](), false}
}

// NextReference constructs an unqualified reference to a given name at the
// next row.
func NextReference(name string) Expr {
	return &Reference{"", name, util.None[Expr](), true}
}

// IndexedReference constructs an unqualified reference to one member of an
// array column.
func IndexedReference(name string, index Expr) Expr {
	return &Reference{"", name, util.Some(index), false}
}

// Sum constructs the left-associated sum of one or more expressions.
func Sum(exprs ...Expr) Expr {
	return reduce(Add, exprs)
}

// Subtract constructs the left-associated subtraction of one or more
// expressions from the first.
func Subtract(exprs ...Expr) Expr {
	return reduce(Sub, exprs)
}

// Product constructs the left-associated product of one or more expressions.
func Product(exprs ...Expr) Expr {
	return reduce(Mul, exprs)
}

// Binary constructs a single binary operation.
func Binary(op BinaryOp, left Expr, right Expr) Expr {
	return &BinaryOperation{op, left, right}
}

// Negate constructs the additive inverse of an expression.
func Negate(arg Expr) Expr {
	return &UnaryOperation{Minus, arg}
}

// Call applies a named function to the given arguments.
func Call(name string, args ...Expr) Expr {
	return &FunctionCall{DirectReference(name), args}
}

// Apply applies an arbitrary callee expression to the given arguments.
func Apply(callee Expr, args ...Expr) Expr {
	return &FunctionCall{callee, args}
}

// Function constructs a lambda with the given parameters and body.
func Function(params []string, body Expr) Expr {
	return &Lambda{params, body}
}

// Array constructs an array literal.
func Array(items ...Expr) Expr {
	return &ArrayLiteral{items}
}

// Index reads a single element of an array value.
func Index(source Expr, index Expr) Expr {
	return &IndexAccess{source, index}
}

// IfElse constructs a compile-time conditional.
func IfElse(condition Expr, trueBranch Expr, falseBranch Expr) Expr {
	return &If{condition, trueBranch, falseBranch}
}

// Shift constructs a next-row shift of an expression.
func Shift(arg Expr) Expr {
	return &Next{arg}
}

// Arm constructs a match arm with a concrete pattern.
func Arm(pattern Expr, body Expr) MatchArm {
	return MatchArm{util.Some(pattern), body}
}

// CatchAll constructs a match arm which matches anything.
func CatchAll(body Expr) MatchArm {
	return MatchArm{util.None[Expr](), body}
}

// MatchOver constructs a match expression over the given arms.
func MatchOver(scrutinee Expr, arms ...MatchArm) Expr {
	return &Match{scrutinee, arms}
}

func reduce(op BinaryOp, exprs []Expr) Expr {
	if len(exprs) == 0 {
		panic("cannot reduce empty expression list")
	}
	//
	acc := exprs[0]
	//
	for _, e := range exprs[1:] {
		acc = &BinaryOperation{op, acc, e}
	}
	//
	return acc
}
