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
	"errors"
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(fn func(uint) int64) RowFunction {
	return func(row uint) (fr.Element, error) {
		var elem fr.Element
		elem.SetInt64(fn(row))
		//
		return elem, nil
	}
}

func failingRows(msg string) RowFunction {
	return func(uint) (fr.Element, error) {
		return fr.Element{}, errors.New(msg)
	}
}

func TestMaterialiseFixed(t *testing.T) {
	sc := EmptySchema()
	mid := sc.AddModule("m", 8)
	//
	fixed := sc.AddColumn(Column{Module: mid, Name: "ramp", Kind: Fixed,
		RowFunction: rowsOf(func(row uint) int64 { return int64(row) })})
	witness := sc.AddColumn(Column{Module: mid, Name: "w", Kind: Witness})
	//
	values, err := sc.MaterialiseFixed()
	require.NoError(t, err)
	// Witness columns are never materialised.
	assert.NotContains(t, values, witness)
	//
	data := values[fixed]
	require.Len(t, data, 8)
	//
	for row := uint(0); row < 8; row++ {
		var expected fr.Element
		expected.SetInt64(int64(row))
		assert.True(t, data[row].Equal(&expected))
	}
}

func TestMaterialiseFixedFirstErrorWins(t *testing.T) {
	sc := EmptySchema()
	mid := sc.AddModule("m", 4)
	//
	sc.AddColumn(Column{Module: mid, Name: "good", Kind: Fixed,
		RowFunction: rowsOf(func(uint) int64 { return 1 })})
	sc.AddColumn(Column{Module: mid, Name: "bad1", Kind: Fixed, RowFunction: failingRows("first")})
	sc.AddColumn(Column{Module: mid, Name: "bad2", Kind: Fixed, RowFunction: failingRows("second")})
	// However the goroutines interleave, the error reported is always that of
	// the first failing column in declaration order.
	for i := 0; i < 8; i++ {
		_, err := sc.MaterialiseFixed()
		require.Error(t, err)
		assert.Equal(t, fmt.Sprintf("m.bad1: %s", "first"), err.Error())
	}
}

func TestQualifiedName(t *testing.T) {
	sc := EmptySchema()
	a := sc.AddModule("a", 4)
	b := sc.AddModule("b", 4)
	//
	x := sc.AddColumn(Column{Module: a, Name: "x", Kind: Witness})
	y := sc.AddColumn(Column{Module: b, Name: "y", Kind: Fixed})
	//
	assert.Equal(t, "a.x", sc.QualifiedName(x))
	assert.Equal(t, "b.y", sc.QualifiedName(y))
}
