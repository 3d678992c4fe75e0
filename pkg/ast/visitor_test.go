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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/consensys/go-pil/pkg/util"
)

func countNodes(e Expr, order VisitOrder) int {
	count := 0
	//
	VisitExpr(e, order, func(Expr) bool {
		count++
		return true
	})
	//
	return count
}

func TestVisitExprCountsAllNodes(t *testing.T) {
	// (x + 1) * f(y, [2, 3][0])
	e := Product(
		Sum(DirectReference("x"), Number(1)),
		Call("f", DirectReference("y"),
			Index(Array(Number(2), Number(3)), Number(0))))
	// 12 nodes: mul, add, x, 1, call, f, y, index, array, 2, 3, 0
	assert.Equal(t, 12, countNodes(e, PreOrder))
	assert.Equal(t, 12, countNodes(e, PostOrder))
}

func TestVisitExprOrder(t *testing.T) {
	e := Sum(Number(1), Number(2))
	//
	var pre, post []Expr
	//
	VisitExpr(e, PreOrder, func(node Expr) bool {
		pre = append(pre, node)
		return true
	})
	VisitExpr(e, PostOrder, func(node Expr) bool {
		post = append(post, node)
		return true
	})
	// The root comes first pre-order, last post-order.
	assert.Equal(t, e, pre[0])
	assert.Equal(t, e, post[len(post)-1])
}

func TestVisitExprAborts(t *testing.T) {
	e := Sum(Number(1), Sum(Number(2), Number(3)))
	//
	count := 0
	aborted := !VisitExpr(e, PreOrder, func(node Expr) bool {
		count++
		// Stop at the first leaf.
		_, isConstant := node.(*Constant)
		return !isConstant
	})
	//
	assert.True(t, aborted)
	assert.Equal(t, 2, count)
}

func TestVisitExprMatchArms(t *testing.T) {
	e := MatchOver(DirectReference("x"),
		Arm(Number(0), Number(10)),
		CatchAll(Number(20)))
	// match, x, 0, 10, 20
	assert.Equal(t, 5, countNodes(e, PreOrder))
}

func TestVisitStatementFixed(t *testing.T) {
	s := &DefFixed{
		Column: ColumnName{Name: "f", ArraySize: util.Some(Number(2))},
		Definition: &ArrayDefinition{Values: &ArrayConcat{
			Left:  &ArrayValues{Items: []Expr{Number(1)}},
			Right: &ArrayRepeat{Items: []Expr{Number(0)}},
		}},
	}
	//
	count := 0
	VisitStatement(s, PreOrder, func(Expr) bool {
		count++
		return true
	})
	// array size, both segment values
	assert.Equal(t, 3, count)
}

func TestVisitStatementLookup(t *testing.T) {
	s := &DefLookup{
		Source: SelectedExpressions{
			Selector: util.Some(DirectReference("sel")),
			Exprs:    []Expr{DirectReference("a")},
		},
		Target: SelectedExpressions{
			Selector: util.None[Expr](),
			Exprs:    []Expr{DirectReference("b")},
		},
	}
	//
	var names []string
	VisitStatement(s, PreOrder, func(e Expr) bool {
		if ref, ok := e.(*Reference); ok {
			names = append(names, ref.Name)
		}
		return true
	})
	//
	assert.Equal(t, []string{"sel", "a", "b"}, names)
}

func TestVisitStatementConnect(t *testing.T) {
	s := &DefConnect{
		Source: []Expr{DirectReference("a"), DirectReference("b")},
		Target: []Expr{DirectReference("c"), DirectReference("d")},
	}
	//
	var names []string
	VisitStatement(s, PreOrder, func(e Expr) bool {
		if ref, ok := e.(*Reference); ok {
			names = append(names, ref.Name)
		}
		return true
	})
	//
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}
