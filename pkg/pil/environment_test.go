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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/go-pil/pkg/ast"
)

func TestFrameShadowing(t *testing.T) {
	var root *Frame
	//
	outer := root.Bind([]string{"x", "y"}, []Value{NewInt(1), NewInt(2)})
	inner := outer.Bind([]string{"x"}, []Value{NewInt(3)})
	// Innermost binding wins.
	value, ok := inner.Lookup("x")
	require.True(t, ok)
	assertInt(t, 3, value)
	// Outer bindings remain visible.
	value, ok = inner.Lookup("y")
	require.True(t, ok)
	assertInt(t, 2, value)
	// The outer frame is untouched.
	value, ok = outer.Lookup("x")
	require.True(t, ok)
	assertInt(t, 1, value)
	//
	_, ok = inner.Lookup("z")
	assert.False(t, ok)
}

func TestFrameNilLookup(t *testing.T) {
	var root *Frame
	//
	_, ok := root.Lookup("x")
	assert.False(t, ok)
}

func TestEnvironmentResolution(t *testing.T) {
	env := NewEnvironment()
	require.Nil(t, env.DeclareNamespace("a", 0))
	require.Nil(t, env.DeclareNamespace("b", 1))
	//
	require.Nil(t, env.Define("a", "k", &DefinitionBinding{namespace: "a", body: ast.Number(1)}))
	// Local resolution.
	_, err := env.Resolve("a", "", "k")
	assert.Nil(t, err)
	// Qualified resolution from another namespace.
	_, err = env.Resolve("b", "a", "k")
	assert.Nil(t, err)
	// Unqualified names never leak across namespaces.
	_, err = env.Resolve("b", "", "k")
	require.NotNil(t, err)
	assert.Equal(t, UnresolvedReference, err.Code)
	// Unregistered namespaces have no scope at all.
	_, err = env.Resolve("a", "c", "k")
	require.NotNil(t, err)
	assert.Equal(t, UnresolvedReference, err.Code)
}

func TestEnvironmentDuplicates(t *testing.T) {
	env := NewEnvironment()
	require.Nil(t, env.DeclareNamespace("a", 0))
	//
	err := env.DeclareNamespace("a", 1)
	require.NotNil(t, err)
	assert.Equal(t, DuplicateDefinition, err.Code)
	//
	require.Nil(t, env.Define("a", "k", &DefinitionBinding{namespace: "a", body: ast.Number(1)}))
	//
	err = env.Define("a", "k", &DefinitionBinding{namespace: "a", body: ast.Number(2)})
	require.NotNil(t, err)
	assert.Equal(t, DuplicateDefinition, err.Code)
}

func TestDefinitionForcedAtMostOnce(t *testing.T) {
	env := testEnv(t, map[string]ast.Expr{"k": ast.Number(7)})
	//
	binding, err := env.Resolve("m", "", "k")
	require.Nil(t, err)
	//
	def, ok := binding.(*DefinitionBinding)
	require.True(t, ok)
	//
	ev := newEvaluator(env, DefaultConfig)
	//
	first, ferr := def.force(ev)
	require.Nil(t, ferr)
	second, serr := def.force(ev)
	require.Nil(t, serr)
	// Resolution is memoised, so both uses observe the same value.
	assert.Same(t, first, second)
}
