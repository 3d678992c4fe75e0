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
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/go-pil/pkg/ast"
	"github.com/consensys/go-pil/pkg/schema"
)

// testEnv constructs an environment with a single namespace "m" containing
// the given definitions, plus one scalar witness column "w".
func testEnv(t *testing.T, defs map[string]ast.Expr) *Environment {
	env := NewEnvironment()
	sc := schema.EmptySchema()
	//
	require.Nil(t, env.DeclareNamespace("m", sc.AddModule("m", 4)))
	//
	registry := NewRegistry(sc, env)
	_, err := registry.Declare("m", "w", schema.Witness, 1, false)
	require.Nil(t, err)
	//
	for name, body := range defs {
		require.Nil(t, env.Define("m", name, &DefinitionBinding{namespace: "m", body: body}))
	}
	//
	return env
}

func eval(t *testing.T, env *Environment, expr ast.Expr) Value {
	value, err := newEvaluator(env, DefaultConfig).evalIn("m", expr, nil)
	require.Nil(t, err)
	//
	return value
}

func evalErr(t *testing.T, env *Environment, expr ast.Expr) *Error {
	_, err := newEvaluator(env, DefaultConfig).evalIn("m", expr, nil)
	require.NotNil(t, err)
	//
	return err
}

func assertInt(t *testing.T, expected int64, actual Value) {
	val, ok := actual.(*Int)
	require.True(t, ok, "expected integer, found %s", typeName(actual))
	assert.Equal(t, expected, val.Val.Int64())
}

func TestEvalArithmetic(t *testing.T) {
	env := testEnv(t, nil)
	// 1 + 2 * 3
	assertInt(t, 7, eval(t, env, ast.Sum(ast.Number(1), ast.Product(ast.Number(2), ast.Number(3)))))
	// 10 / 3, 10 % 3
	assertInt(t, 3, eval(t, env, ast.Binary(ast.Div, ast.Number(10), ast.Number(3))))
	assertInt(t, 1, eval(t, env, ast.Binary(ast.Mod, ast.Number(10), ast.Number(3))))
	// 2 ** 10
	assertInt(t, 1024, eval(t, env, ast.Binary(ast.Pow, ast.Number(2), ast.Number(10))))
	// 1 << 4, 255 >> 4
	assertInt(t, 16, eval(t, env, ast.Binary(ast.Shl, ast.Number(1), ast.Number(4))))
	assertInt(t, 15, eval(t, env, ast.Binary(ast.Shr, ast.Number(255), ast.Number(4))))
	// comparisons yield 0 or 1
	assertInt(t, 1, eval(t, env, ast.Binary(ast.Lt, ast.Number(1), ast.Number(2))))
	assertInt(t, 0, eval(t, env, ast.Binary(ast.Eq, ast.Number(1), ast.Number(2))))
	// negation
	assertInt(t, -5, eval(t, env, ast.Negate(ast.Number(5))))
}

func TestEvalDivisionByZero(t *testing.T) {
	env := testEnv(t, nil)
	//
	err := evalErr(t, env, ast.Binary(ast.Div, ast.Number(1), ast.Number(0)))
	assert.Equal(t, TypeMismatch, err.Code)
}

func TestEvalRecursiveFunction(t *testing.T) {
	// sum = fun n -> if n == 0 then 0 else n + sum(n - 1)
	sum := ast.Function([]string{"n"},
		ast.IfElse(ast.Binary(ast.Eq, ast.DirectReference("n"), ast.Number(0)),
			ast.Number(0),
			ast.Sum(ast.DirectReference("n"),
				ast.Call("sum", ast.Subtract(ast.DirectReference("n"), ast.Number(1))))))
	//
	env := testEnv(t, map[string]ast.Expr{"sum": sum})
	//
	assertInt(t, 6, eval(t, env, ast.Call("sum", ast.Number(3))))
	assertInt(t, 5050, eval(t, env, ast.Call("sum", ast.Number(100))))
}

func TestEvalRecursionLimit(t *testing.T) {
	// loop = fun n -> loop(n + 1)
	loop := ast.Function([]string{"n"},
		ast.Call("loop", ast.Sum(ast.DirectReference("n"), ast.Number(1))))
	//
	env := testEnv(t, map[string]ast.Expr{"loop": loop})
	//
	config := Config{MaxSteps: 1 << 16, MaxDepth: 1 << 8}
	_, err := newEvaluator(env, config).evalIn("m", ast.Call("loop", ast.Number(0)), nil)
	//
	require.NotNil(t, err)
	assert.Equal(t, RecursionLimitExceeded, err.Code)
}

func TestEvalPartialApplication(t *testing.T) {
	env := testEnv(t, nil)
	add := ast.Function([]string{"x", "y"}, ast.Sum(ast.DirectReference("x"), ast.DirectReference("y")))
	// (add 1) applied to 2
	partial := eval(t, env, ast.Apply(add, ast.Number(1)))
	_, ok := partial.(*Closure)
	require.True(t, ok, "expected closure, found %s", typeName(partial))
	//
	assertInt(t, 3, eval(t, env, ast.Apply(ast.Apply(add, ast.Number(1)), ast.Number(2))))
}

func TestEvalOverApplication(t *testing.T) {
	env := testEnv(t, nil)
	// fun x -> fun y -> x + y, applied to both arguments at once
	curried := ast.Function([]string{"x"},
		ast.Function([]string{"y"}, ast.Sum(ast.DirectReference("x"), ast.DirectReference("y"))))
	//
	assertInt(t, 3, eval(t, env, ast.Apply(curried, ast.Number(1), ast.Number(2))))
}

func TestEvalArityMismatch(t *testing.T) {
	env := testEnv(t, nil)
	//
	err := evalErr(t, env, ast.Call("len", ast.Number(1), ast.Number(2)))
	assert.Equal(t, ArityMismatch, err.Code)
}

func TestEvalArrayNew(t *testing.T) {
	env := testEnv(t, nil)
	squares := ast.Call("array_new", ast.Number(4),
		ast.Function([]string{"i"}, ast.Product(ast.DirectReference("i"), ast.DirectReference("i"))))
	//
	value := eval(t, env, squares)
	arr, ok := value.(*Array)
	require.True(t, ok)
	require.Len(t, arr.Items, 4)
	//
	for i, expected := range []int64{0, 1, 4, 9} {
		assertInt(t, expected, arr.Items[i])
	}
	// Length queries compose with construction.
	assertInt(t, 4, eval(t, env, ast.Call("len", squares)))
}

func TestEvalArrayNewEmpty(t *testing.T) {
	env := testEnv(t, nil)
	// The generator is never invoked, so an error inside it cannot surface.
	value := eval(t, env, ast.Call("array_new", ast.Number(0),
		ast.Function([]string{"i"}, ast.Binary(ast.Div, ast.Number(1), ast.Number(0)))))
	//
	arr, ok := value.(*Array)
	require.True(t, ok)
	assert.Empty(t, arr.Items)
}

func TestEvalArrayNewSymbolicLength(t *testing.T) {
	env := testEnv(t, nil)
	//
	err := evalErr(t, env, ast.Call("array_new", ast.DirectReference("w"),
		ast.Function([]string{"i"}, ast.DirectReference("i"))))
	assert.Equal(t, NonConstantLength, err.Code)
}

func TestEvalFieldModulus(t *testing.T) {
	env := testEnv(t, nil)
	//
	value := eval(t, env, ast.Call("field_modulus"))
	val, ok := value.(*Int)
	require.True(t, ok)
	assert.Equal(t, 0, val.Val.Cmp(fr.Modulus()))
}

func TestEvalIndexAccess(t *testing.T) {
	env := testEnv(t, nil)
	arr := ast.Array(ast.Number(10), ast.Number(20), ast.Number(30))
	//
	assertInt(t, 20, eval(t, env, ast.Index(arr, ast.Number(1))))
	//
	err := evalErr(t, env, ast.Index(arr, ast.Number(3)))
	assert.Equal(t, TypeMismatch, err.Code)
	//
	err = evalErr(t, env, ast.Index(arr, ast.DirectReference("w")))
	assert.Equal(t, NonConstantLength, err.Code)
}

func TestEvalMatch(t *testing.T) {
	env := testEnv(t, nil)
	//
	classify := func(scrutinee ast.Expr) ast.Expr {
		return ast.MatchOver(scrutinee,
			ast.Arm(ast.Number(0), ast.Number(100)),
			ast.Arm(ast.Number(1), ast.Number(200)),
			ast.CatchAll(ast.Number(300)))
	}
	//
	assertInt(t, 100, eval(t, env, classify(ast.Number(0))))
	assertInt(t, 200, eval(t, env, classify(ast.Number(1))))
	assertInt(t, 300, eval(t, env, classify(ast.Number(7))))
}

func TestEvalNonExhaustiveMatch(t *testing.T) {
	env := testEnv(t, nil)
	//
	err := evalErr(t, env, ast.MatchOver(ast.Number(2),
		ast.Arm(ast.Number(0), ast.Number(100)),
		ast.Arm(ast.Number(1), ast.Number(200))))
	assert.Equal(t, NonExhaustiveMatch, err.Code)
}

func TestEvalWitnessIsSymbolic(t *testing.T) {
	env := testEnv(t, nil)
	//
	value := eval(t, env, ast.DirectReference("w"))
	col, ok := value.(*ColumnRef)
	require.True(t, ok, "expected column, found %s", typeName(value))
	assert.Equal(t, 0, col.Shift)
	// Arithmetic over a column expands symbolically.
	value = eval(t, env, ast.Sum(ast.DirectReference("w"), ast.Number(1)))
	_, ok = value.(*Term)
	assert.True(t, ok, "expected symbolic expression, found %s", typeName(value))
}

func TestEvalNextShift(t *testing.T) {
	env := testEnv(t, nil)
	// Nested shifts compose additively.
	value := eval(t, env, ast.Shift(ast.Shift(ast.DirectReference("w"))))
	col, ok := value.(*ColumnRef)
	require.True(t, ok)
	assert.Equal(t, 2, col.Shift)
	// The surface "'" marker behaves identically.
	value = eval(t, env, ast.NextReference("w"))
	col, ok = value.(*ColumnRef)
	require.True(t, ok)
	assert.Equal(t, 1, col.Shift)
	// Shifting a constant is meaningless.
	err := evalErr(t, env, ast.Shift(ast.Number(1)))
	assert.Equal(t, TypeMismatch, err.Code)
}

func TestEvalConditionMustBeConstant(t *testing.T) {
	env := testEnv(t, nil)
	//
	err := evalErr(t, env, ast.IfElse(ast.DirectReference("w"), ast.Number(1), ast.Number(2)))
	assert.Equal(t, TypeMismatch, err.Code)
}

func TestEvalUnresolvedReference(t *testing.T) {
	env := testEnv(t, nil)
	//
	err := evalErr(t, env, ast.DirectReference("nonexistent"))
	assert.Equal(t, UnresolvedReference, err.Code)
	// Natives cannot be reached through a qualifier.
	err = evalErr(t, env, ast.QualifiedReference("m", "len"))
	assert.Equal(t, UnresolvedReference, err.Code)
}

func TestEvalLazyDefinition(t *testing.T) {
	// A definition whose body cannot evaluate is harmless until referenced.
	env := testEnv(t, map[string]ast.Expr{
		"bad":  ast.Binary(ast.Div, ast.Number(1), ast.Number(0)),
		"good": ast.Number(42),
	})
	//
	assertInt(t, 42, eval(t, env, ast.DirectReference("good")))
	//
	err := evalErr(t, env, ast.DirectReference("bad"))
	assert.Equal(t, TypeMismatch, err.Code)
}

func TestEvalNativesRegistered(t *testing.T) {
	for _, name := range []string{"field_modulus", "len", "array_new"} {
		assert.NotNil(t, lookupNative(name), name)
	}
	//
	assert.Nil(t, lookupNative("bogus"))
}

func TestEvalCyclicDefinition(t *testing.T) {
	// x = x + 1 can never resolve; it must fail, not hang.
	env := testEnv(t, map[string]ast.Expr{
		"x": ast.Sum(ast.DirectReference("x"), ast.Number(1)),
	})
	//
	err := evalErr(t, env, ast.DirectReference("x"))
	assert.Equal(t, RecursionLimitExceeded, err.Code)
	// The failure is memoised like any other resolution result.
	err = evalErr(t, env, ast.DirectReference("x"))
	assert.Equal(t, RecursionLimitExceeded, err.Code)
}

func TestEvalMutuallyCyclicDefinitions(t *testing.T) {
	env := testEnv(t, map[string]ast.Expr{
		"a": ast.DirectReference("b"),
		"b": ast.DirectReference("a"),
	})
	//
	err := evalErr(t, env, ast.DirectReference("a"))
	assert.Equal(t, RecursionLimitExceeded, err.Code)
}

func TestEvalIndexOnScalarDefinition(t *testing.T) {
	env := testEnv(t, map[string]ast.Expr{"c": ast.Number(7)})
	// Indexing a non-array is an error, never a silent no-op.
	err := evalErr(t, env, ast.IndexedReference("c", ast.Number(2)))
	assert.Equal(t, TypeMismatch, err.Code)
	// Whereas an array-valued definition indexes normally.
	env = testEnv(t, map[string]ast.Expr{"arr": ast.Array(ast.Number(1), ast.Number(2))})
	assertInt(t, 2, eval(t, env, ast.IndexedReference("arr", ast.Number(1))))
}

func TestEvalIndexOnScalarColumn(t *testing.T) {
	env := testEnv(t, nil)
	//
	err := evalErr(t, env, ast.IndexedReference("w", ast.Number(5)))
	assert.Equal(t, TypeMismatch, err.Code)
}

func TestEvalIntegerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	//
	env := testEnv(t, nil)
	properties := gopter.NewProperties(parameters)
	//
	properties.Property("a + b evaluates exactly", prop.ForAll(
		func(a int64, b int64) bool {
			value := eval(t, env, ast.Sum(ast.Number(a), ast.Number(b)))
			expected := new(big.Int).Add(big.NewInt(a), big.NewInt(b))
			//
			val, ok := value.(*Int)
			return ok && val.Val.Cmp(expected) == 0
		},
		gen.Int64(), gen.Int64(),
	))
	//
	properties.Property("a < b agrees with machine comparison", prop.ForAll(
		func(a int64, b int64) bool {
			value := eval(t, env, ast.Binary(ast.Lt, ast.Number(a), ast.Number(b)))
			val, ok := value.(*Int)
			//
			return ok && (val.Val.Sign() != 0) == (a < b)
		},
		gen.Int64(), gen.Int64(),
	))
	//
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRowFunctionShiftProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	//
	env := testEnv(t, nil)
	// f(i) = 3 * i + 1, g(k) = fun i -> f(i + k)
	f := ast.Function([]string{"i"},
		ast.Sum(ast.Product(ast.Number(3), ast.DirectReference("i")), ast.Number(1)))
	shifted := func(k uint8) Value {
		return eval(t, env, ast.Function([]string{"i"},
			ast.Apply(f, ast.Sum(ast.DirectReference("i"), ast.Number(int64(k))))))
	}
	//
	properties := gopter.NewProperties(parameters)
	properties.Property("shifted row function agrees with direct evaluation", prop.ForAll(
		func(row uint8, k uint8) bool {
			direct := rowFunction(env, DefaultConfig, eval(t, env, f))
			moved := rowFunction(env, DefaultConfig, shifted(k))
			//
			lhs, err1 := moved(uint(row))
			rhs, err2 := direct(uint(row) + uint(k))
			//
			return err1 == nil && err2 == nil && lhs.Equal(&rhs)
		},
		gen.UInt8(), gen.UInt8(),
	))
	//
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
