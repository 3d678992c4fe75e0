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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// NativeDefinition describes a built-in function of the identity language.
// Natives cover the handful of operations which cannot be expressed within
// the language itself, most notably the array-construction combinator (the
// language has no loop construct) and the field-modulus query.
type NativeDefinition struct {
	// Name under which this native is invoked.
	name string
	// Number of arguments this native requires.
	arity uint
	// Responsible for doing whatever the function does.
	apply func(*evaluator, []Value) (Value, *Error)
}

// Name returns the name of the native being defined.
func (p *NativeDefinition) Name() string {
	return p.name
}

// NATIVES lists every built-in function of the identity language.  The table
// is populated during package initialisation: the natives close over the
// evaluator, whose method set reaches back into this table via lookupNative,
// so a static initialiser would be cyclic.
var NATIVES []NativeDefinition

func init() {
	NATIVES = []NativeDefinition{
		{"field_modulus", 0, nativeFieldModulus},
		{"len", 1, nativeLen},
		{"array_new", 2, nativeArrayNew},
	}
}

// lookupNative finds the native with a given name, if one exists.
func lookupNative(name string) *NativeDefinition {
	for i := range NATIVES {
		if NATIVES[i].name == name {
			return &NATIVES[i]
		}
	}
	//
	return nil
}

// nativeFieldModulus returns the modulus of the target proving field, as an
// exact integer.
func nativeFieldModulus(ev *evaluator, args []Value) (Value, *Error) {
	return &Int{fr.Modulus()}, nil
}

// nativeLen returns the length of an array.
func nativeLen(ev *evaluator, args []Value) (Value, *Error) {
	arr, ok := args[0].(*Array)
	//
	if !ok {
		return nil, errorf(TypeMismatch, "len expects an array, found %s", typeName(args[0]))
	}
	//
	return &Int{big.NewInt(int64(len(arr.Items)))}, nil
}

// nativeArrayNew builds an array of a given length by applying a generator to
// every index 0 .. length-1 in turn.  The length must reduce to a concrete,
// non-negative integer; in particular it can never depend on a witness
// column.  A zero length yields an empty array without ever invoking the
// generator.
func nativeArrayNew(ev *evaluator, args []Value) (Value, *Error) {
	length, err := asBound(args[0])
	if err != nil {
		return nil, err
	}
	//
	items := make([]Value, length)
	//
	for i := uint(0); i < length; i++ {
		item, err := ev.applyValue(args[1], []Value{NewInt(int64(i))})
		if err != nil {
			return nil, err
		}
		//
		items[i] = item
	}
	//
	return &Array{items}, nil
}

// asBound checks that a value is a concrete, non-negative integer small
// enough to be used as an array length or iteration bound.
func asBound(v Value) (uint, *Error) {
	val, ok := v.(*Int)
	//
	if !ok {
		return 0, errorf(NonConstantLength, "bound must be a constant integer, found %s", typeName(v))
	} else if val.Val.Sign() < 0 || !val.Val.IsUint64() {
		return 0, errorf(NonConstantLength, "invalid bound %s", val.Val)
	}
	//
	return uint(val.Val.Uint64()), nil
}
