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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/go-pil/pkg/ast"
)

// These tests exercise combinators written in the identity language itself,
// the way a standard library for it would define them.

// sumDef is the bounded summation combinator:
//
//	sum = fun n, f -> if n == 0 then 0 else f(n) + sum(n - 1, f)
func sumDef() ast.Expr {
	return ast.Function([]string{"n", "f"},
		ast.IfElse(ast.Binary(ast.Eq, ast.DirectReference("n"), ast.Number(0)),
			ast.Number(0),
			ast.Sum(
				ast.Apply(ast.DirectReference("f"), ast.DirectReference("n")),
				ast.Call("sum",
					ast.Subtract(ast.DirectReference("n"), ast.Number(1)),
					ast.DirectReference("f")))))
}

// padDef is the zero-padded accessor combinator: out-of-range reads yield
// zero rather than an error.
//
//	pad = fun arr, n -> fun i -> if (i < 0) | (i >= n) then 0 else arr[i]
func padDef() ast.Expr {
	outside := ast.Binary(ast.Or,
		ast.Binary(ast.Lt, ast.DirectReference("i"), ast.Number(0)),
		ast.Binary(ast.Geq, ast.DirectReference("i"), ast.DirectReference("n")))
	//
	return ast.Function([]string{"arr", "n"},
		ast.Function([]string{"i"},
			ast.IfElse(outside,
				ast.Number(0),
				ast.Index(ast.DirectReference("arr"), ast.DirectReference("i")))))
}

func combinatorEnv(t *testing.T) *Environment {
	return testEnv(t, map[string]ast.Expr{
		"sum": sumDef(),
		"pad": padDef(),
	})
}

func TestCombinatorSum(t *testing.T) {
	env := combinatorEnv(t)
	// sum(n, f) sums f over 1..n.
	succ := ast.Function([]string{"i"}, ast.Sum(ast.DirectReference("i"), ast.Number(1)))
	ident := ast.Function([]string{"i"}, ast.DirectReference("i"))
	// 1 + 2 + 3
	assertInt(t, 6, eval(t, env, ast.Call("sum", ast.Number(3), ident)))
	// 2 + 3 + 4
	assertInt(t, 9, eval(t, env, ast.Call("sum", ast.Number(3), succ)))
	// Empty sums never invoke the summand.
	bad := ast.Function([]string{"i"}, ast.Binary(ast.Div, ast.Number(1), ast.Number(0)))
	assertInt(t, 0, eval(t, env, ast.Call("sum", ast.Number(0), bad)))
}

func TestCombinatorZeroPaddedAccessor(t *testing.T) {
	env := combinatorEnv(t)
	//
	at := func(i int64) ast.Expr {
		return ast.Apply(
			ast.Call("pad",
				ast.Array(ast.Number(10), ast.Number(20), ast.Number(30)),
				ast.Number(3)),
			ast.Number(i))
	}
	//
	assertInt(t, 10, eval(t, env, at(0)))
	assertInt(t, 20, eval(t, env, at(1)))
	assertInt(t, 30, eval(t, env, at(2)))
	// Out-of-range reads are zero, not errors.
	assertInt(t, 0, eval(t, env, at(-1)))
	assertInt(t, 0, eval(t, env, at(5)))
}

func TestCombinatorShiftThroughPadding(t *testing.T) {
	env := combinatorEnv(t)
	// shifted(k) = fun i -> padded(i - k); a shift of two moves the contents
	// two indices forward and zero-fills the gap.
	padded := ast.Call("pad",
		ast.Array(ast.Number(10), ast.Number(20), ast.Number(30)), ast.Number(3))
	shifted := func(i int64, k int64) ast.Expr {
		return ast.Apply(padded, ast.Subtract(ast.Number(i), ast.Number(k)))
	}
	//
	expected := []int64{0, 0, 10, 20, 30, 0}
	//
	for i, val := range expected {
		assertInt(t, val, eval(t, env, shifted(int64(i), 2)))
	}
}

func TestCombinatorSelectorPartition(t *testing.T) {
	env := combinatorEnv(t)
	// family = array_new(p, fun j -> fun i -> (i % p) == j)
	period := int64(4)
	family := eval(t, env, ast.Call("array_new", ast.Number(period),
		ast.Function([]string{"j"}, ast.Function([]string{"i"},
			ast.Binary(ast.Eq,
				ast.Binary(ast.Mod, ast.DirectReference("i"), ast.Number(period)),
				ast.DirectReference("j"))))))
	//
	members, ok := family.(*Array)
	require.True(t, ok)
	require.Len(t, members.Items, int(period))
	// On every row, exactly one member of the family is active.
	ev := newEvaluator(env, DefaultConfig)
	//
	for row := int64(0); row < 2*period; row++ {
		active := 0
		//
		for _, member := range members.Items {
			value, err := ev.applyValue(member, []Value{NewInt(row)})
			require.Nil(t, err)
			//
			val, ok := value.(*Int)
			require.True(t, ok)
			//
			if val.Val.Sign() != 0 {
				active++
			}
		}
		//
		require.Equal(t, 1, active, "row %d", row)
	}
}

func TestCombinatorConvolution(t *testing.T) {
	// conv(a, b)(n) = sum over i of a(i) * b(n - i), with out-of-range reads
	// of either sequence contributing zero through the padding rule.
	env := testEnv(t, map[string]ast.Expr{
		"sum": sumDef(),
		"pad": padDef(),
		"conv": ast.Function([]string{"a", "b"},
			ast.Function([]string{"j"},
				// sum(j + 1, fun k -> a(k - 1) * b(j - (k - 1))) walks
				// i = k - 1 over 0..j.
				ast.Call("sum", ast.Sum(ast.DirectReference("j"), ast.Number(1)),
					ast.Function([]string{"k"},
						ast.Product(
							ast.Apply(ast.DirectReference("a"),
								ast.Subtract(ast.DirectReference("k"), ast.Number(1))),
							ast.Apply(ast.DirectReference("b"),
								ast.Subtract(ast.DirectReference("j"),
									ast.Subtract(ast.DirectReference("k"), ast.Number(1))))))))),
	})
	// a = [1, 2, 3], b = [4, 5, 6], both zero-padded.
	a := ast.Call("pad", ast.Array(ast.Number(1), ast.Number(2), ast.Number(3)), ast.Number(3))
	b := ast.Call("pad", ast.Array(ast.Number(4), ast.Number(5), ast.Number(6)), ast.Number(3))
	//
	at := func(n int64) ast.Expr {
		return ast.Apply(ast.Call("conv", a, b), ast.Number(n))
	}
	// Hand-computed: (1,2,3) * (4,5,6) = (4, 13, 28, 27, 18).
	for n, expected := range []int64{4, 13, 28, 27, 18} {
		assertInt(t, expected, eval(t, env, at(int64(n))))
	}
	// Far past both sequences, everything is zero.
	assertInt(t, 0, eval(t, env, at(10)))
}
