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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/go-pil/pkg/ast"
	"github.com/consensys/go-pil/pkg/schema"
)

// Config bounds the resources an evaluation may consume.  User-defined
// recursion carries no static termination guarantee, so runaway recursion is
// converted into a reported error rather than resource exhaustion.
type Config struct {
	// MaxSteps bounds the total number of expression reductions across a
	// single evaluation.
	MaxSteps uint64
	// MaxDepth bounds the depth of nested closure applications.
	MaxDepth uint
}

// DefaultConfig provides sensible limits: deep enough for recursion bounds in
// the tens of thousands, while still failing fast on runaway recursion.
var DefaultConfig = Config{MaxSteps: 1 << 26, MaxDepth: 1 << 16}

// evaluator reduces expressions to values.  This is the only place where true
// computation happens during elaboration; everything touching a witness
// column is expanded into symbolic terms instead (see value.go).
type evaluator struct {
	// Environment for resolving namespace-level names.
	env *Environment
	// Resource limits.
	config Config
	// Number of reductions performed so far.
	steps uint64
	// Current closure application depth.
	depth uint
	// Definitions currently being resolved, for cycle detection.
	forcing map[*DefinitionBinding]bool
}

func newEvaluator(env *Environment, config Config) *evaluator {
	return &evaluator{env: env, config: config, forcing: make(map[*DefinitionBinding]bool)}
}

// evalIn evaluates an expression whose free names resolve in a given
// namespace, under a given local frame.
func (p *evaluator) evalIn(namespace string, expr ast.Expr, frame *Frame) (Value, *Error) {
	if p.steps++; p.steps > p.config.MaxSteps {
		return nil, errorf(RecursionLimitExceeded, "evaluation exceeded %d steps", p.config.MaxSteps)
	}
	//
	switch e := expr.(type) {
	case *ast.Constant:
		return &Int{e.Val}, nil
	case *ast.Reference:
		return p.evalReference(namespace, e, frame)
	case *ast.UnaryOperation:
		arg, err := p.evalIn(namespace, e.Arg, frame)
		if err != nil {
			return nil, err
		}
		//
		return applyUnary(e.Op, arg)
	case *ast.BinaryOperation:
		return p.evalBinary(namespace, e, frame)
	case *ast.Lambda:
		return &Closure{namespace, e.Params, e.Body, frame}, nil
	case *ast.FunctionCall:
		return p.evalCall(namespace, e, frame)
	case *ast.ArrayLiteral:
		items, err := p.evalAll(namespace, e.Items, frame)
		if err != nil {
			return nil, err
		}
		//
		return &Array{items}, nil
	case *ast.IndexAccess:
		return p.evalIndex(namespace, e, frame)
	case *ast.If:
		return p.evalIf(namespace, e, frame)
	case *ast.Match:
		return p.evalMatch(namespace, e, frame)
	case *ast.Next:
		return p.evalNext(namespace, e, frame)
	default:
		panic(fmt.Sprintf("unknown expression %v", expr))
	}
}

// evalAll evaluates a list of expressions eagerly, left to right.
func (p *evaluator) evalAll(namespace string, exprs []ast.Expr, frame *Frame) ([]Value, *Error) {
	values := make([]Value, len(exprs))
	//
	for i, e := range exprs {
		val, err := p.evalIn(namespace, e, frame)
		if err != nil {
			return nil, err
		}
		//
		values[i] = val
	}
	//
	return values, nil
}

func (p *evaluator) evalBinary(namespace string, e *ast.BinaryOperation, frame *Frame) (Value, *Error) {
	left, err := p.evalIn(namespace, e.Left, frame)
	if err != nil {
		return nil, err
	}
	//
	right, err := p.evalIn(namespace, e.Right, frame)
	if err != nil {
		return nil, err
	}
	//
	return applyBinary(e.Op, left, right)
}

func (p *evaluator) evalCall(namespace string, e *ast.FunctionCall, frame *Frame) (Value, *Error) {
	callee, err := p.evalIn(namespace, e.Callee, frame)
	if err != nil {
		return nil, err
	}
	//
	args, err := p.evalAll(namespace, e.Args, frame)
	if err != nil {
		return nil, err
	}
	//
	return p.applyValue(callee, args)
}

// applyValue applies a function value to already-evaluated arguments.
// Closures support both partial application (fewer arguments than parameters
// yields a new closure) and over-application (surplus arguments are applied
// to the result, which must itself be a function).
func (p *evaluator) applyValue(callee Value, args []Value) (Value, *Error) {
	switch fn := callee.(type) {
	case *Native:
		if uint(len(args)) != fn.Def.arity {
			return nil, errorf(ArityMismatch, "%s expects %d argument(s), found %d",
				fn.Def.name, fn.Def.arity, len(args))
		}
		//
		return fn.Def.apply(p, args)
	case *Closure:
		return p.applyClosure(fn, args)
	default:
		return nil, errorf(TypeMismatch, "cannot apply %s as a function", typeName(callee))
	}
}

func (p *evaluator) applyClosure(fn *Closure, args []Value) (Value, *Error) {
	if p.depth++; p.depth > p.config.MaxDepth {
		return nil, errorf(RecursionLimitExceeded, "call depth exceeded %d", p.config.MaxDepth)
	}
	// Restore depth on the way out.
	defer func() { p.depth-- }()
	//
	arity := len(fn.Params)
	// Partial application
	if len(args) < arity {
		frame := fn.Frame.Bind(fn.Params[:len(args)], args)
		return &Closure{fn.Namespace, fn.Params[len(args):], fn.Body, frame}, nil
	}
	// Full application
	frame := fn.Frame.Bind(fn.Params, args[:arity])
	//
	result, err := p.evalIn(fn.Namespace, fn.Body, frame)
	if err != nil || len(args) == arity {
		return result, err
	}
	// Over-application: apply the surplus to the result.
	return p.applyValue(result, args[arity:])
}

func (p *evaluator) evalIndex(namespace string, e *ast.IndexAccess, frame *Frame) (Value, *Error) {
	source, err := p.evalIn(namespace, e.Source, frame)
	if err != nil {
		return nil, err
	}
	//
	index, err := p.evalIn(namespace, e.Index, frame)
	if err != nil {
		return nil, err
	}
	//
	return indexArray(source, index)
}

func indexArray(source Value, index Value) (Value, *Error) {
	arr, ok := source.(*Array)
	//
	if !ok {
		return nil, errorf(TypeMismatch, "cannot index %s", typeName(source))
	}
	//
	idx, ok := index.(*Int)
	//
	if !ok {
		return nil, errorf(NonConstantLength, "array index must be a constant integer, found %s",
			typeName(index))
	} else if !idx.Val.IsInt64() || idx.Val.Int64() < 0 || idx.Val.Int64() >= int64(len(arr.Items)) {
		return nil, errorf(TypeMismatch, "index %s out of bounds for array of length %d",
			idx.Val, len(arr.Items))
	}
	//
	return arr.Items[idx.Val.Int64()], nil
}

func (p *evaluator) evalIf(namespace string, e *ast.If, frame *Frame) (Value, *Error) {
	cond, err := p.evalIn(namespace, e.Condition, frame)
	if err != nil {
		return nil, err
	}
	// Conditions are compile-time only: anything symbolic cannot decide a
	// branch during elaboration.
	val, ok := cond.(*Int)
	//
	if !ok {
		return nil, errorf(TypeMismatch, "condition must be a constant integer, found %s",
			typeName(cond))
	}
	//
	if val.Val.Sign() != 0 {
		return p.evalIn(namespace, e.TrueBranch, frame)
	}
	//
	return p.evalIn(namespace, e.FalseBranch, frame)
}

func (p *evaluator) evalMatch(namespace string, e *ast.Match, frame *Frame) (Value, *Error) {
	scrutinee, err := p.evalIn(namespace, e.Scrutinee, frame)
	if err != nil {
		return nil, err
	}
	//
	for _, arm := range e.Arms {
		// Catch-all arm
		if arm.Pattern.IsEmpty() {
			return p.evalIn(namespace, arm.Body, frame)
		}
		//
		pattern, err := p.evalIn(namespace, arm.Pattern.Unwrap(), frame)
		if err != nil {
			return nil, err
		}
		//
		matched, err := matchEquals(scrutinee, pattern)
		if err != nil {
			return nil, err
		}
		//
		if matched {
			return p.evalIn(namespace, arm.Body, frame)
		}
	}
	//
	return nil, errorf(NonExhaustiveMatch, "no arm matches %s", typeName(scrutinee))
}

// matchEquals determines whether a scrutinee equals a pattern, coercing
// integer patterns into the field when the scrutinee is a field element.
func matchEquals(scrutinee Value, pattern Value) (bool, *Error) {
	if s, ok := scrutinee.(*Field); ok {
		if c, ok := pattern.(*Int); ok {
			elem := fieldOf(c.Val)
			return s.Val.Equal(&elem), nil
		}
	}
	//
	sign, err := compareValues(scrutinee, pattern)
	if err != nil {
		return false, err
	}
	//
	return sign == 0, nil
}

func (p *evaluator) evalNext(namespace string, e *ast.Next, frame *Frame) (Value, *Error) {
	arg, err := p.evalIn(namespace, e.Arg, frame)
	if err != nil {
		return nil, err
	}
	//
	return shiftColumn(arg)
}

// shiftColumn moves a column handle one row forward.  Shifting anything other
// than a column handle is meaningless (offsets attach to columns, not to
// arbitrary terms).
func shiftColumn(v Value) (Value, *Error) {
	col, ok := v.(*ColumnRef)
	//
	if !ok {
		return nil, errorf(TypeMismatch, "row shift applies to columns, found %s", typeName(v))
	}
	//
	return &ColumnRef{col.Column, col.Shift + 1}, nil
}

// ============================================================================
// Reference resolution
// ============================================================================

func (p *evaluator) evalReference(namespace string, e *ast.Reference, frame *Frame) (Value, *Error) {
	value, consumed, err := p.resolveReference(namespace, e, frame)
	if err != nil {
		return nil, err
	}
	// Apply array index (unless already consumed by column resolution).
	// Indexing anything which is not an array is an error, never a no-op.
	if e.Index.HasValue() && !consumed {
		index, err := p.evalIn(namespace, e.Index.Unwrap(), frame)
		if err != nil {
			return nil, err
		}
		//
		if value, err = indexArray(value, index); err != nil {
			return nil, err
		}
	}
	// Apply next-row marker.
	if e.Next {
		return shiftColumn(value)
	}
	//
	return value, nil
}

// resolveReference resolves a reference to a value.  The boolean result
// indicates whether the reference's array index was consumed during column
// resolution (it remains to be applied by the caller otherwise).
func (p *evaluator) resolveReference(namespace string, e *ast.Reference, frame *Frame) (Value, bool, *Error) {
	// Local parameters shadow everything, but can never be qualified.
	if e.Namespace == "" {
		if value, ok := frame.Lookup(e.Name); ok {
			return value, false, nil
		}
	}
	//
	binding, err := p.env.Resolve(namespace, e.Namespace, e.Name)
	//
	if err != nil {
		// Fall back on built-in functions.
		if e.Namespace == "" {
			if native := lookupNative(e.Name); native != nil {
				return &Native{native}, false, nil
			}
		}
		//
		return nil, false, err
	}
	//
	switch binding := binding.(type) {
	case *DefinitionBinding:
		value, err := binding.force(p)
		return value, false, err
	case *ColumnBinding:
		return p.resolveColumn(namespace, e, binding, frame)
	default:
		panic(fmt.Sprintf("unknown binding %v", binding))
	}
}

// resolveColumn turns a column binding into a value.  Scalar columns resolve
// to a handle at shift zero.  Array columns resolve to a single handle when
// an index is supplied, and to the full array of handles otherwise (which
// allows e.g. len() or a lookup side to range over them).
func (p *evaluator) resolveColumn(namespace string, e *ast.Reference,
	binding *ColumnBinding, frame *Frame) (Value, bool, *Error) {
	//
	if !binding.array {
		return &ColumnRef{binding.columns[0], 0}, false, nil
	}
	//
	if e.Index.HasValue() {
		index, err := p.evalIn(namespace, e.Index.Unwrap(), frame)
		if err != nil {
			return nil, false, err
		}
		//
		idx, ok := index.(*Int)
		//
		if !ok {
			return nil, false, errorf(NonConstantLength, "column index must be a constant integer, found %s",
				typeName(index))
		} else if !idx.Val.IsInt64() || idx.Val.Int64() < 0 || idx.Val.Int64() >= int64(len(binding.columns)) {
			return nil, false, errorf(UnresolvedReference, "column %s[%s] does not exist", e.Name, idx.Val)
		}
		//
		return &ColumnRef{binding.columns[idx.Val.Int64()], 0}, true, nil
	}
	//
	items := make([]Value, len(binding.columns))
	//
	for i, cid := range binding.columns {
		items[i] = &ColumnRef{cid, 0}
	}
	//
	return &Array{items}, false, nil
}

// ============================================================================
// Fixed column materialisation
// ============================================================================

// rowFunction wraps a function value as the defining function of a fixed
// column.  Every invocation uses a fresh evaluator so that materialisation of
// distinct rows (and distinct columns) can proceed in parallel; the
// environment itself is safe for concurrent use once elaboration has
// finished.
func rowFunction(env *Environment, config Config, fn Value) schema.RowFunction {
	return func(row uint) (fr.Element, error) {
		ev := newEvaluator(env, config)
		//
		value, err := ev.applyValue(fn, []Value{NewInt(int64(row))})
		if err != nil {
			return fr.Element{}, err
		}
		//
		elem, err := asFieldElement(value)
		if err != nil {
			return fr.Element{}, err
		}
		//
		return elem, nil
	}
}
