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

import "fmt"

// VisitOrder determines whether a visitor callback fires before or after the
// sub-expressions of a node are traversed.
type VisitOrder uint8

const (
	// PreOrder fires the callback before descending into sub-expressions.
	PreOrder VisitOrder = iota
	// PostOrder fires the callback after all sub-expressions were visited.
	PostOrder
)

// VisitExpr traverses an expression tree, calling a given callback on every
// expression node in the requested order.  The callback returns false to
// abort the traversal early, in which case VisitExpr returns false as well.
func VisitExpr(e Expr, order VisitOrder, fn func(Expr) bool) bool {
	if order == PreOrder && !fn(e) {
		return false
	}
	//
	switch e := e.(type) {
	case *Constant:
		// leaf
	case *Reference:
		if e.Index.HasValue() && !VisitExpr(e.Index.Unwrap(), order, fn) {
			return false
		}
	case *UnaryOperation:
		if !VisitExpr(e.Arg, order, fn) {
			return false
		}
	case *BinaryOperation:
		if !visitExprs(order, fn, e.Left, e.Right) {
			return false
		}
	case *Lambda:
		if !VisitExpr(e.Body, order, fn) {
			return false
		}
	case *FunctionCall:
		if !VisitExpr(e.Callee, order, fn) {
			return false
		}
		//
		if !visitExprs(order, fn, e.Args...) {
			return false
		}
	case *ArrayLiteral:
		if !visitExprs(order, fn, e.Items...) {
			return false
		}
	case *IndexAccess:
		if !visitExprs(order, fn, e.Source, e.Index) {
			return false
		}
	case *If:
		if !visitExprs(order, fn, e.Condition, e.TrueBranch, e.FalseBranch) {
			return false
		}
	case *Match:
		if !VisitExpr(e.Scrutinee, order, fn) {
			return false
		}
		//
		for _, arm := range e.Arms {
			if arm.Pattern.HasValue() && !VisitExpr(arm.Pattern.Unwrap(), order, fn) {
				return false
			}
			//
			if !VisitExpr(arm.Body, order, fn) {
				return false
			}
		}
	case *Next:
		if !VisitExpr(e.Arg, order, fn) {
			return false
		}
	default:
		panic(fmt.Sprintf("unknown expression %v", e))
	}
	//
	if order == PostOrder {
		return fn(e)
	}
	//
	return true
}

// VisitStatement traverses every expression contained within a statement,
// calling a given callback on each node in the requested order.  As with
// VisitExpr, the callback returns false to abort the traversal.
func VisitStatement(s Statement, order VisitOrder, fn func(Expr) bool) bool {
	switch s := s.(type) {
	case *DefConstant:
		return VisitExpr(s.Value, order, fn)
	case *DefWitness:
		for _, c := range s.Columns {
			if c.ArraySize.HasValue() && !VisitExpr(c.ArraySize.Unwrap(), order, fn) {
				return false
			}
		}
	case *DefFixed:
		if s.Column.ArraySize.HasValue() && !VisitExpr(s.Column.ArraySize.Unwrap(), order, fn) {
			return false
		}
		//
		return visitFixedDefinition(s.Definition, order, fn)
	case *DefIdentity:
		if s.Selector.HasValue() && !VisitExpr(s.Selector.Unwrap(), order, fn) {
			return false
		}
		//
		return VisitExpr(s.Expr, order, fn)
	case *DefLookup:
		return visitSelected(s.Source, order, fn) && visitSelected(s.Target, order, fn)
	case *DefPermutation:
		return visitSelected(s.Source, order, fn) && visitSelected(s.Target, order, fn)
	case *DefConnect:
		return visitExprs(order, fn, s.Source...) && visitExprs(order, fn, s.Target...)
	case *DefPublic:
		return VisitExpr(s.Row, order, fn)
	default:
		panic(fmt.Sprintf("unknown statement %v", s))
	}
	//
	return true
}

func visitFixedDefinition(def FixedDefinition, order VisitOrder, fn func(Expr) bool) bool {
	switch def := def.(type) {
	case *MappingDefinition:
		return VisitExpr(def.Body, order, fn)
	case *ArrayDefinition:
		return visitArrayExpr(def.Values, order, fn)
	default:
		panic(fmt.Sprintf("unknown fixed definition %v", def))
	}
}

func visitArrayExpr(e ArrayExpr, order VisitOrder, fn func(Expr) bool) bool {
	switch e := e.(type) {
	case *ArrayValues:
		return visitExprs(order, fn, e.Items...)
	case *ArrayRepeat:
		return visitExprs(order, fn, e.Items...)
	case *ArrayConcat:
		return visitArrayExpr(e.Left, order, fn) && visitArrayExpr(e.Right, order, fn)
	default:
		panic(fmt.Sprintf("unknown array expression %v", e))
	}
}

func visitSelected(sel SelectedExpressions, order VisitOrder, fn func(Expr) bool) bool {
	if sel.Selector.HasValue() && !VisitExpr(sel.Selector.Unwrap(), order, fn) {
		return false
	}
	//
	return visitExprs(order, fn, sel.Exprs...)
}

func visitExprs(order VisitOrder, fn func(Expr) bool, exprs ...Expr) bool {
	for _, e := range exprs {
		if e != nil && !VisitExpr(e, order, fn) {
			return false
		}
	}
	//
	return true
}
