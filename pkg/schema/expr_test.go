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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constOf(val int64) Expr {
	var elem fr.Element
	elem.SetInt64(val)
	//
	return NewConstant(elem)
}

func TestSumFoldsConstants(t *testing.T) {
	e := Sum(constOf(1), constOf(2), constOf(3))
	//
	val := e.AsConstant()
	require.NotNil(t, val)
	assert.Equal(t, "6", val.String())
	// Folding produced a single constant node.
	_, ok := e.(*Constant)
	assert.True(t, ok)
}

func TestSumRetainsColumns(t *testing.T) {
	e := Sum(NewColumnAccess(0, 0), constOf(1))
	//
	assert.Nil(t, e.AsConstant())
	assert.Equal(t, []ColumnId{0}, e.Columns())
}

func TestDifferenceOfEqualTermsIsZero(t *testing.T) {
	lhs := Product(NewColumnAccess(2, 1), constOf(3))
	rhs := Product(NewColumnAccess(2, 1), constOf(3))
	//
	e := Difference(lhs, rhs)
	//
	val := e.AsConstant()
	require.NotNil(t, val)
	assert.True(t, val.IsZero())
}

func TestDifferenceOfDistinctShifts(t *testing.T) {
	// The same column at different shifts must not fold.
	e := Difference(NewColumnAccess(0, 1), NewColumnAccess(0, 0))
	//
	assert.Nil(t, e.AsConstant())
	assert.Len(t, e.Columns(), 2)
}

func TestNegateFoldsConstants(t *testing.T) {
	e := Negate(constOf(5))
	//
	val := e.AsConstant()
	require.NotNil(t, val)
	//
	var expected fr.Element
	expected.SetInt64(-5)
	assert.True(t, val.Equal(&expected))
}

func TestExprString(t *testing.T) {
	assert.Equal(t, "c0", NewColumnAccess(0, 0).String())
	assert.Equal(t, "c1'", NewColumnAccess(1, 1).String())
	assert.Equal(t, "shift(c2, -1)", NewColumnAccess(2, -1).String())
	//
	e := Sum(NewColumnAccess(0, 0), Product(constOf(2), NewColumnAccess(1, 0)))
	assert.Equal(t, "(c0 + (2 * c1))", e.String())
}

func TestEqualIsStructural(t *testing.T) {
	a := Sum(NewColumnAccess(0, 0), constOf(1))
	b := Sum(NewColumnAccess(0, 0), constOf(1))
	c := Sum(constOf(1), NewColumnAccess(0, 0))
	//
	assert.True(t, Equal(a, b))
	// Structural equality is not commutative equality.
	assert.False(t, Equal(a, c))
}

func TestConstantFoldingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	//
	properties := gopter.NewProperties(parameters)
	//
	properties.Property("folded sum agrees with field addition", prop.ForAll(
		func(a int64, b int64) bool {
			var x, y fr.Element
			x.SetInt64(a)
			y.SetInt64(b)
			//
			folded := Sum(NewConstant(x), NewConstant(y)).AsConstant()
			//
			var expected fr.Element
			expected.Add(&x, &y)
			//
			return folded != nil && folded.Equal(&expected)
		},
		gen.Int64(), gen.Int64(),
	))
	//
	properties.Property("x - x folds to zero for any shift", prop.ForAll(
		func(column uint16, shift int8) bool {
			access := NewColumnAccess(ColumnId(column), int(shift))
			val := Difference(access, access).AsConstant()
			//
			return val != nil && val.IsZero()
		},
		gen.UInt16(), gen.Int8(),
	))
	//
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
