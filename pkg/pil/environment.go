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
	"sync"

	"github.com/consensys/go-pil/pkg/ast"
	"github.com/consensys/go-pil/pkg/schema"
)

// Frame is one link of a persistent, structurally shared chain of local
// scopes.  A new frame is created for every closure application; closures
// snapshot the frame current at their definition site.  Frames are never
// mutated after construction, which is what makes snapshotting them safe.
type Frame struct {
	// Enclosing frame (nil at the outermost level).
	parent *Frame
	// Names bound by this frame.
	names []string
	// Values bound by this frame, parallel to names.
	values []Value
}

// Bind extends a frame (which may be nil) with a new set of bindings,
// returning the extended frame.
func (p *Frame) Bind(names []string, values []Value) *Frame {
	return &Frame{p, names, values}
}

// Lookup searches this frame and its ancestors for a given name, innermost
// binding first.
func (p *Frame) Lookup(name string) (Value, bool) {
	for frame := p; frame != nil; frame = frame.parent {
		for i := len(frame.names) - 1; i >= 0; i-- {
			if frame.names[i] == name {
				return frame.values[i], true
			}
		}
	}
	//
	return nil, false
}

// ============================================================================
// Bindings
// ============================================================================

// Binding is anything a namespace-level name can resolve to: a lazily
// evaluated definition, or a declared column.
type Binding interface {
	isBinding()
}

// DefinitionBinding is a named definition whose body is evaluated on first
// use, and at most once.  Purity makes the memoisation unobservable.
type DefinitionBinding struct {
	// Namespace in which the definition was declared.
	namespace string
	// Name under which the definition was declared.
	name string
	// Unevaluated body of the definition.
	body ast.Expr
	// Guards one-shot resolution.
	once sync.Once
	// Resolved value (valid once resolved).
	value Value
	// Resolution failure (if any).
	err *Error
}

// ColumnBinding records the columns allocated for a declared column name.  A
// declaration with array arity k owns k column identifiers.
type ColumnBinding struct {
	// Kind of the declared columns.
	kind schema.ColumnKind
	// Allocated column identifiers, in index order.
	columns []schema.ColumnId
	// Whether this name was declared with an array arity.
	array bool
}

func (p *DefinitionBinding) isBinding() {}
func (p *ColumnBinding) isBinding()    {}

// force resolves this definition using a given evaluator, at most once.  Each
// evaluator tracks the definitions it is currently resolving, so a definition
// whose body resolves back to itself (directly or through other definitions)
// is reported as an error rather than re-entering the resolution and hanging.
// The Once still guards cross-evaluator races during parallel materialisation.
func (p *DefinitionBinding) force(ev *evaluator) (Value, *Error) {
	if ev.forcing[p] {
		return nil, errorf(RecursionLimitExceeded, "cyclic definition of %s", p.name)
	}
	//
	p.once.Do(func() {
		ev.forcing[p] = true
		p.value, p.err = ev.evalIn(p.namespace, p.body, nil)
		delete(ev.forcing, p)
	})
	//
	return p.value, p.err
}

// ============================================================================
// Environment
// ============================================================================

// scope holds the symbol table of a single namespace.
type scope struct {
	// Module identifier allocated to this namespace.
	module schema.ModuleId
	// Symbols declared in this namespace.  Definitions and columns share a
	// single table, so a name can never be both.
	bindings map[string]Binding
}

// Environment maps names to bindings, namespace by namespace.  Namespaces are
// registered strictly in declaration order; a name in a namespace not yet
// registered can never be resolved, which is precisely the no-forward-
// reference rule.
type Environment struct {
	// Scopes of all namespaces registered so far.
	scopes map[string]*scope
}

// NewEnvironment constructs an empty environment.
func NewEnvironment() *Environment {
	return &Environment{make(map[string]*scope)}
}

// DeclareNamespace registers a new namespace with a given module identifier.
// Registering the same namespace twice is an error.
func (p *Environment) DeclareNamespace(name string, module schema.ModuleId) *Error {
	if _, ok := p.scopes[name]; ok {
		return errorf(DuplicateDefinition, "namespace %s already declared", name)
	}
	//
	p.scopes[name] = &scope{module, make(map[string]Binding)}
	//
	return nil
}

// Module returns the module identifier of a given (registered) namespace.
func (p *Environment) Module(namespace string) schema.ModuleId {
	return p.scopes[namespace].module
}

// Define registers a binding for a given name in a given namespace.  The name
// must not already be bound in that namespace, whether as a definition or as
// a column.
func (p *Environment) Define(namespace string, name string, binding Binding) *Error {
	scope := p.scopes[namespace]
	//
	if _, ok := scope.bindings[name]; ok {
		return errorf(DuplicateDefinition, "symbol %s already declared in namespace %s", name, namespace)
	}
	//
	scope.bindings[name] = binding
	//
	return nil
}

// Resolve searches for a given name, in the local namespace when no qualifier
// is given, or in the explicitly named namespace otherwise.  Names in
// namespaces which have not been registered yet cannot be resolved, since
// their scopes do not exist.
func (p *Environment) Resolve(local string, qualifier string, name string) (Binding, *Error) {
	target := local
	//
	if qualifier != "" {
		target = qualifier
	}
	//
	if scope, ok := p.scopes[target]; ok {
		if binding, ok := scope.bindings[name]; ok {
			return binding, nil
		}
	}
	//
	if qualifier != "" {
		return nil, errorf(UnresolvedReference, "symbol %s::%s not found", qualifier, name)
	}
	//
	return nil, errorf(UnresolvedReference, "symbol %s not found in namespace %s", name, local)
}
