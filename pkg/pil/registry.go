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
	"fmt"

	"github.com/consensys/go-pil/pkg/ast"
	"github.com/consensys/go-pil/pkg/schema"
)

// Registry records every declared column and allocates its identifiers within
// the output schema.  A declaration with array arity k expands into k
// independent columns sharing a name prefix (e.g. "x" of arity 3 gives
// "x_0", "x_1", "x_2").
type Registry struct {
	// Schema into which columns are allocated.
	schema *schema.Schema
	// Environment in which column names are bound.
	env *Environment
}

// NewRegistry constructs a registry allocating into a given schema.
func NewRegistry(schema *schema.Schema, env *Environment) *Registry {
	return &Registry{schema, env}
}

// Declare allocates arity columns for a given name, binding the name in its
// namespace.  Redeclaration under an existing name (column or otherwise) is
// an error.  The array flag distinguishes a declaration of arity one from a
// scalar declaration, since "x[1]" and "x" behave differently on reference.
func (p *Registry) Declare(namespace string, name string, kind schema.ColumnKind,
	arity uint, array bool) ([]schema.ColumnId, *Error) {
	//
	module := p.env.Module(namespace)
	columns := make([]schema.ColumnId, arity)
	//
	for i := uint(0); i < arity; i++ {
		ith := name
		//
		if array {
			ith = fmt.Sprintf("%s_%d", name, i)
		}
		//
		columns[i] = p.schema.AddColumn(schema.Column{
			Module: module,
			Name:   ith,
			Index:  i,
			Kind:   kind,
		})
	}
	//
	if err := p.env.Define(namespace, name, &ColumnBinding{kind, columns, array}); err != nil {
		return nil, err
	}
	//
	return columns, nil
}

// CheckFixedDefinition rejects a fixed-column definition which references any
// witness column.  A fixed column must be a total, computable function over
// the row domain; a witness column carries no computable value, so such a
// definition could never be materialised.
func (p *Registry) CheckFixedDefinition(namespace string, def ast.FixedDefinition) *Error {
	seen := make(map[*DefinitionBinding]bool)
	//
	switch def := def.(type) {
	case *ast.MappingDefinition:
		return p.scanWitness(namespace, def.Body, nil, seen)
	case *ast.ArrayDefinition:
		return p.scanArrayWitness(namespace, def.Values, seen)
	default:
		panic(fmt.Sprintf("unknown fixed definition %v", def))
	}
}

func (p *Registry) scanArrayWitness(namespace string, values ast.ArrayExpr,
	seen map[*DefinitionBinding]bool) *Error {
	//
	switch values := values.(type) {
	case *ast.ArrayValues:
		return p.scanAllWitness(namespace, values.Items, seen)
	case *ast.ArrayRepeat:
		return p.scanAllWitness(namespace, values.Items, seen)
	case *ast.ArrayConcat:
		if err := p.scanArrayWitness(namespace, values.Left, seen); err != nil {
			return err
		}
		//
		return p.scanArrayWitness(namespace, values.Right, seen)
	default:
		panic(fmt.Sprintf("unknown array expression %v", values))
	}
}

func (p *Registry) scanAllWitness(namespace string, exprs []ast.Expr,
	seen map[*DefinitionBinding]bool) *Error {
	//
	for _, e := range exprs {
		if err := p.scanWitness(namespace, e, nil, seen); err != nil {
			return err
		}
	}
	//
	return nil
}

// scanWitness walks an expression looking for references which resolve to
// witness columns, tracking lambda parameters so that shadowed names are not
// misreported.  References to definitions are chased into their bodies, so a
// witness column hiding behind an alias is still found; the seen set keeps
// the chase finite on cyclic definitions.  Unresolved names are ignored here;
// they fail later, with a better error, when the definition is evaluated.
func (p *Registry) scanWitness(namespace string, expr ast.Expr, bound []string,
	seen map[*DefinitionBinding]bool) *Error {
	//
	switch e := expr.(type) {
	case *ast.Reference:
		if e.Namespace == "" {
			for _, name := range bound {
				if name == e.Name {
					return nil
				}
			}
		}
		//
		if binding, err := p.env.Resolve(namespace, e.Namespace, e.Name); err == nil {
			switch binding := binding.(type) {
			case *ColumnBinding:
				if binding.kind == schema.Witness {
					return errorf(TypeMismatch, "fixed column definition references witness column %s", e.Name)
				}
			case *DefinitionBinding:
				if !seen[binding] {
					seen[binding] = true
					//
					if err := p.scanWitness(binding.namespace, binding.body, nil, seen); err != nil {
						return err
					}
				}
			}
		}
		//
		if e.Index.HasValue() {
			return p.scanWitness(namespace, e.Index.Unwrap(), bound, seen)
		}
	case *ast.Lambda:
		return p.scanWitness(namespace, e.Body, append(bound, e.Params...), seen)
	case *ast.Constant:
		// leaf
	case *ast.UnaryOperation:
		return p.scanWitness(namespace, e.Arg, bound, seen)
	case *ast.BinaryOperation:
		if err := p.scanWitness(namespace, e.Left, bound, seen); err != nil {
			return err
		}
		//
		return p.scanWitness(namespace, e.Right, bound, seen)
	case *ast.FunctionCall:
		if err := p.scanWitness(namespace, e.Callee, bound, seen); err != nil {
			return err
		}
		//
		for _, arg := range e.Args {
			if err := p.scanWitness(namespace, arg, bound, seen); err != nil {
				return err
			}
		}
	case *ast.ArrayLiteral:
		for _, item := range e.Items {
			if err := p.scanWitness(namespace, item, bound, seen); err != nil {
				return err
			}
		}
	case *ast.IndexAccess:
		if err := p.scanWitness(namespace, e.Source, bound, seen); err != nil {
			return err
		}
		//
		return p.scanWitness(namespace, e.Index, bound, seen)
	case *ast.If:
		if err := p.scanWitness(namespace, e.Condition, bound, seen); err != nil {
			return err
		}
		//
		if err := p.scanWitness(namespace, e.TrueBranch, bound, seen); err != nil {
			return err
		}
		//
		return p.scanWitness(namespace, e.FalseBranch, bound, seen)
	case *ast.Match:
		if err := p.scanWitness(namespace, e.Scrutinee, bound, seen); err != nil {
			return err
		}
		//
		for _, arm := range e.Arms {
			if arm.Pattern.HasValue() {
				if err := p.scanWitness(namespace, arm.Pattern.Unwrap(), bound, seen); err != nil {
					return err
				}
			}
			//
			if err := p.scanWitness(namespace, arm.Body, bound, seen); err != nil {
				return err
			}
		}
	case *ast.Next:
		return p.scanWitness(namespace, e.Arg, bound, seen)
	default:
		panic(fmt.Sprintf("unknown expression %v", expr))
	}
	//
	return nil
}
