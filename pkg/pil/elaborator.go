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
	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-pil/pkg/ast"
	"github.com/consensys/go-pil/pkg/schema"
	"github.com/consensys/go-pil/pkg/util"
)

// Elaborate reduces a parsed specification to a flat schema: a table of
// concrete column declarations, plus a list of polynomial identities and
// lookup constraints with all functions, arrays and row shifts compiled out.
// Elaboration either succeeds entirely or fails with the first error in
// declaration order; a backend never sees a partial constraint set.
func Elaborate(circuit *ast.Circuit) (*schema.Schema, error) {
	return ElaborateWith(DefaultConfig, circuit)
}

// ElaborateWith behaves as Elaborate, with explicit resource limits.
func ElaborateWith(config Config, circuit *ast.Circuit) (*schema.Schema, error) {
	e := newElaborator(config)
	//
	for i := range circuit.Namespaces {
		if err := e.elaborateNamespace(&circuit.Namespaces[i]); err != nil {
			return nil, err
		}
	}
	//
	return e.schema, nil
}

// elaborator packages up everything needed to reduce a circuit to a schema.
type elaborator struct {
	// Environment mapping names to bindings.
	env *Environment
	// Registry allocating declared columns.
	registry *Registry
	// Schema being constructed.
	schema *schema.Schema
	// Collector receiving statement values.
	collector collector
	// Resource limits for evaluation.
	config Config
}

func newElaborator(config Config) *elaborator {
	sc := schema.EmptySchema()
	env := NewEnvironment()
	//
	return &elaborator{
		env:       env,
		registry:  NewRegistry(sc, env),
		schema:    sc,
		collector: collector{sc},
		config:    config,
	}
}

func (p *elaborator) elaborateNamespace(namespace *ast.Namespace) *Error {
	// The degree is evaluated before the namespace scope exists, so it can
	// only reference earlier namespaces (via qualification) and literals.
	degree, err := p.evalDegree(namespace)
	if err != nil {
		return err.at(namespace.Name, -1)
	}
	//
	log.Debugf("elaborating namespace %s (degree %d)", namespace.Name, degree)
	//
	mid := p.schema.AddModule(namespace.Name, degree)
	//
	if err := p.env.DeclareNamespace(namespace.Name, mid); err != nil {
		return err.at(namespace.Name, -1)
	}
	//
	for i, statement := range namespace.Statements {
		value, err := p.elaborateStatement(namespace, mid, i, statement)
		//
		if err == nil {
			err = p.collector.collect(value)
		}
		//
		if err != nil {
			return err.at(namespace.Name, i)
		}
	}
	//
	return nil
}

// evalDegree reduces a namespace's degree expression to a concrete power of
// two.  The degree fixes the row domain for every statement that follows.
func (p *elaborator) evalDegree(namespace *ast.Namespace) (uint, *Error) {
	ev := newEvaluator(p.env, p.config)
	//
	value, err := ev.evalIn(namespace.Name, namespace.Degree, nil)
	if err != nil {
		return 0, err
	}
	//
	degree, err := asBound(value)
	if err != nil {
		return 0, err
	}
	//
	if degree == 0 || degree&(degree-1) != 0 {
		return 0, errorf(TypeMismatch, "degree %d is not a power of two", degree)
	}
	//
	return degree, nil
}

// elaborateStatement forces a single top-level statement to a value.
// Declarations produce Unit; assertions produce constraint-shaped values.
func (p *elaborator) elaborateStatement(namespace *ast.Namespace, mid schema.ModuleId,
	index int, statement ast.Statement) (Value, *Error) {
	//
	switch s := statement.(type) {
	case *ast.DefConstant:
		binding := &DefinitionBinding{namespace: namespace.Name, name: s.Name, body: s.Value}
		//
		if err := p.env.Define(namespace.Name, s.Name, binding); err != nil {
			return nil, err
		}
		//
		return &Unit{}, nil
	case *ast.DefWitness:
		return p.elaborateWitness(namespace.Name, s)
	case *ast.DefFixed:
		return p.elaborateFixed(namespace, s)
	case *ast.DefIdentity:
		return p.elaborateIdentity(namespace.Name, mid, index, s)
	case *ast.DefLookup:
		return p.elaborateLookup(namespace.Name, mid, index, s)
	case *ast.DefPermutation:
		return p.elaboratePermutation(namespace.Name, mid, index, s)
	case *ast.DefConnect:
		return p.elaborateConnect(namespace.Name, mid, index, s)
	case *ast.DefPublic:
		return p.elaboratePublic(namespace, s)
	default:
		panic(fmt.Sprintf("unknown statement %v", statement))
	}
}

// ============================================================================
// Column declarations
// ============================================================================

// evalArity reduces an optional array size to a concrete arity.
func (p *elaborator) evalArity(namespace string, size util.Option[ast.Expr]) (uint, bool, *Error) {
	if size.IsEmpty() {
		return 1, false, nil
	}
	//
	ev := newEvaluator(p.env, p.config)
	//
	value, err := ev.evalIn(namespace, size.Unwrap(), nil)
	if err != nil {
		return 0, false, err
	}
	//
	arity, err := asBound(value)
	if err != nil {
		return 0, false, err
	}
	//
	return arity, true, nil
}

func (p *elaborator) elaborateWitness(namespace string, s *ast.DefWitness) (Value, *Error) {
	for _, column := range s.Columns {
		arity, array, err := p.evalArity(namespace, column.ArraySize)
		if err != nil {
			return nil, err
		}
		//
		if _, err := p.registry.Declare(namespace, column.Name, schema.Witness, arity, array); err != nil {
			return nil, err
		}
	}
	//
	return &Unit{}, nil
}

func (p *elaborator) elaborateFixed(namespace *ast.Namespace, s *ast.DefFixed) (Value, *Error) {
	arity, array, err := p.evalArity(namespace.Name, s.Column.ArraySize)
	if err != nil {
		return nil, err
	}
	// A fixed definition must be computable over the row domain, which rules
	// out any reference to a witness column.
	if err := p.registry.CheckFixedDefinition(namespace.Name, s.Definition); err != nil {
		return nil, err
	}
	//
	columns, err := p.registry.Declare(namespace.Name, s.Column.Name, schema.Fixed, arity, array)
	if err != nil {
		return nil, err
	}
	//
	degree := p.schema.Module(p.env.Module(namespace.Name)).Degree
	//
	switch def := s.Definition.(type) {
	case *ast.MappingDefinition:
		return p.attachMappings(namespace.Name, columns, array, def)
	case *ast.ArrayDefinition:
		if array {
			return nil, errorf(TypeMismatch,
				"array-valued fixed column %s requires a mapping definition", s.Column.Name)
		}
		//
		values, err := p.expandArrayDefinition(namespace.Name, def.Values, degree)
		if err != nil {
			return nil, err
		}
		//
		p.schema.Column(columns[0]).RowFunction = tableFunction(values)
		//
		return &Unit{}, nil
	default:
		panic(fmt.Sprintf("unknown fixed definition %v", def))
	}
}

// attachMappings evaluates a mapping definition and installs the resulting
// row function(s).  For a scalar column the definition must evaluate to a
// single function over the row index; for an array declaration of size k, to
// an array of k such functions.
func (p *elaborator) attachMappings(namespace string, columns []schema.ColumnId,
	array bool, def *ast.MappingDefinition) (Value, *Error) {
	//
	ev := newEvaluator(p.env, p.config)
	//
	value, err := ev.evalIn(namespace, def.Body, nil)
	if err != nil {
		return nil, err
	}
	//
	var mappings []Value
	//
	if !array {
		mappings = []Value{value}
	} else if arr, ok := value.(*Array); ok && len(arr.Items) == len(columns) {
		mappings = arr.Items
	} else if ok {
		return nil, errorf(ArityMismatch, "expected %d row functions, found %d",
			len(columns), len(arr.Items))
	} else {
		return nil, errorf(TypeMismatch, "expected an array of row functions, found %s",
			typeName(value))
	}
	//
	for i, mapping := range mappings {
		switch mapping.(type) {
		case *Closure, *Native:
			p.schema.Column(columns[i]).RowFunction = rowFunction(p.env, p.config, mapping)
		default:
			return nil, errorf(TypeMismatch, "fixed column definition must be a function, found %s",
				typeName(mapping))
		}
	}
	//
	return &Unit{}, nil
}

// expandArrayDefinition materialises an array expression over a full row
// domain.  Plain segments contribute their values directly; a repeated
// segment is stretched to fill whatever the plain segments leave uncovered.
func (p *elaborator) expandArrayDefinition(namespace string, values ast.ArrayExpr,
	degree uint) ([]fr.Element, *Error) {
	//
	segments, err := p.flattenArrayExpr(namespace, values)
	if err != nil {
		return nil, err
	}
	//
	var (
		fixed    uint
		repeated = -1
	)
	//
	for i, segment := range segments {
		if !segment.repeat {
			fixed += uint(len(segment.values))
		} else if repeated >= 0 {
			return nil, errorf(TypeMismatch, "multiple repeated segments in array definition")
		} else if len(segment.values) == 0 {
			return nil, errorf(TypeMismatch, "empty repeated segment in array definition")
		} else {
			repeated = i
		}
	}
	//
	if fixed > degree {
		return nil, errorf(TypeMismatch, "array definition has %d rows, domain has %d", fixed, degree)
	} else if repeated < 0 && fixed != degree {
		return nil, errorf(TypeMismatch, "array definition has %d rows, domain has %d", fixed, degree)
	}
	//
	rows := make([]fr.Element, 0, degree)
	//
	for i, segment := range segments {
		if i != repeated {
			rows = append(rows, segment.values...)
			continue
		}
		// Stretch the repeated segment across the uncovered rows.
		count := degree - fixed
		//
		if count%uint(len(segment.values)) != 0 {
			return nil, errorf(TypeMismatch,
				"repeated segment of %d rows cannot fill %d rows", len(segment.values), count)
		}
		//
		for j := uint(0); j < count; j++ {
			rows = append(rows, segment.values[j%uint(len(segment.values))])
		}
	}
	//
	return rows, nil
}

// segment is a run of materialised rows, possibly marked for repetition.
type segment struct {
	values []fr.Element
	repeat bool
}

func (p *elaborator) flattenArrayExpr(namespace string, values ast.ArrayExpr) ([]segment, *Error) {
	switch values := values.(type) {
	case *ast.ArrayValues:
		seg, err := p.evalSegment(namespace, values.Items)
		if err != nil {
			return nil, err
		}
		//
		return []segment{{seg, false}}, nil
	case *ast.ArrayRepeat:
		seg, err := p.evalSegment(namespace, values.Items)
		if err != nil {
			return nil, err
		}
		//
		return []segment{{seg, true}}, nil
	case *ast.ArrayConcat:
		left, err := p.flattenArrayExpr(namespace, values.Left)
		if err != nil {
			return nil, err
		}
		//
		right, err := p.flattenArrayExpr(namespace, values.Right)
		if err != nil {
			return nil, err
		}
		//
		return append(left, right...), nil
	default:
		panic(fmt.Sprintf("unknown array expression %v", values))
	}
}

func (p *elaborator) evalSegment(namespace string, items []ast.Expr) ([]fr.Element, *Error) {
	ev := newEvaluator(p.env, p.config)
	rows := make([]fr.Element, len(items))
	//
	for i, item := range items {
		value, err := ev.evalIn(namespace, item, nil)
		if err != nil {
			return nil, err
		}
		//
		if rows[i], err = asFieldElement(value); err != nil {
			return nil, err
		}
	}
	//
	return rows, nil
}

func tableFunction(rows []fr.Element) schema.RowFunction {
	return func(row uint) (fr.Element, error) {
		return rows[row], nil
	}
}

// ============================================================================
// Constraints
// ============================================================================

func (p *elaborator) elaborateIdentity(namespace string, mid schema.ModuleId,
	index int, s *ast.DefIdentity) (Value, *Error) {
	//
	ev := newEvaluator(p.env, p.config)
	//
	selector, err := p.evalSelector(ev, namespace, s.Selector)
	if err != nil {
		return nil, err
	}
	//
	value, err := ev.evalIn(namespace, s.Expr, nil)
	if err != nil {
		return nil, err
	}
	// After full evaluation, only column accesses and field constants may
	// remain; a leftover closure or array means the statement was not fully
	// determined.
	expr, err := asExpr(value, UnderSpecified)
	if err != nil {
		return nil, err
	}
	//
	return &Constraint{&schema.PolynomialIdentity{
		Name:     handleOf(namespace, index),
		Module:   mid,
		Selector: selector,
		Expr:     expr,
	}}, nil
}

func (p *elaborator) elaborateLookup(namespace string, mid schema.ModuleId,
	index int, s *ast.DefLookup) (Value, *Error) {
	//
	source, target, err := p.evalBothSides(namespace, s.Source, s.Target)
	if err != nil {
		return nil, err
	}
	//
	if source.Arity() != target.Arity() {
		return nil, errorf(LookupArityMismatch, "lookup sides have %d and %d expressions",
			source.Arity(), target.Arity())
	}
	//
	return &Constraint{&schema.LookupConstraint{
		Name:   handleOf(namespace, index),
		Module: mid,
		Source: source,
		Target: target,
	}}, nil
}

func (p *elaborator) elaboratePermutation(namespace string, mid schema.ModuleId,
	index int, s *ast.DefPermutation) (Value, *Error) {
	//
	source, target, err := p.evalBothSides(namespace, s.Source, s.Target)
	if err != nil {
		return nil, err
	}
	//
	if source.Arity() != target.Arity() {
		return nil, errorf(ArityMismatch, "permutation sides have %d and %d expressions",
			source.Arity(), target.Arity())
	}
	//
	return &Constraint{&schema.PermutationConstraint{
		Name:   handleOf(namespace, index),
		Module: mid,
		Source: source,
		Target: target,
	}}, nil
}

// elaborateConnect reduces a copy constraint.  Both sides elaborate exactly
// like (selector-free) lookup sides, including array expansion, and must end
// up with the same arity.
func (p *elaborator) elaborateConnect(namespace string, mid schema.ModuleId,
	index int, s *ast.DefConnect) (Value, *Error) {
	//
	source, target, err := p.evalBothSides(namespace,
		ast.SelectedExpressions{Exprs: s.Source},
		ast.SelectedExpressions{Exprs: s.Target})
	if err != nil {
		return nil, err
	}
	//
	if source.Arity() != target.Arity() {
		return nil, errorf(ArityMismatch, "connect sides have %d and %d expressions",
			source.Arity(), target.Arity())
	}
	//
	return &Constraint{&schema.ConnectConstraint{
		Name:   handleOf(namespace, index),
		Module: mid,
		Source: source.Terms,
		Target: target.Terms,
	}}, nil
}

func (p *elaborator) evalBothSides(namespace string, source ast.SelectedExpressions,
	target ast.SelectedExpressions) (schema.LookupVector, schema.LookupVector, *Error) {
	//
	var empty schema.LookupVector
	//
	lhs, err := p.evalSelected(namespace, source)
	if err != nil {
		return empty, empty, err
	}
	//
	rhs, err := p.evalSelected(namespace, target)
	if err != nil {
		return empty, empty, err
	}
	//
	return lhs, rhs, nil
}

// evalSelected reduces one side of a lookup or permutation to a vector of
// flat terms.  An array value contributes one term per element, which is how
// a whole array column can appear on a lookup side.
func (p *elaborator) evalSelected(namespace string, side ast.SelectedExpressions) (schema.LookupVector, *Error) {
	var (
		empty schema.LookupVector
		ev    = newEvaluator(p.env, p.config)
	)
	//
	selector, err := p.evalSelector(ev, namespace, side.Selector)
	if err != nil {
		return empty, err
	}
	//
	var terms []schema.Expr
	//
	for _, e := range side.Exprs {
		value, err := ev.evalIn(namespace, e, nil)
		if err != nil {
			return empty, err
		}
		//
		items := []Value{value}
		//
		if arr, ok := value.(*Array); ok {
			items = arr.Items
		}
		//
		for _, item := range items {
			term, err := asExpr(item, UnderSpecified)
			if err != nil {
				return empty, err
			}
			//
			terms = append(terms, term)
		}
	}
	//
	return schema.LookupVector{Selector: selector, Terms: terms}, nil
}

func (p *elaborator) evalSelector(ev *evaluator, namespace string,
	selector util.Option[ast.Expr]) (util.Option[schema.Expr], *Error) {
	//
	if selector.IsEmpty() {
		return util.None[schema.Expr](), nil
	}
	//
	value, err := ev.evalIn(namespace, selector.Unwrap(), nil)
	if err != nil {
		return util.None[schema.Expr](), err
	}
	//
	expr, err := asExpr(value, UnderSpecified)
	if err != nil {
		return util.None[schema.Expr](), err
	}
	//
	return util.Some(expr), nil
}

// ============================================================================
// Public values
// ============================================================================

func (p *elaborator) elaboratePublic(namespace *ast.Namespace, s *ast.DefPublic) (Value, *Error) {
	ev := newEvaluator(p.env, p.config)
	//
	value, err := ev.evalIn(namespace.Name, &s.Column, nil)
	if err != nil {
		return nil, err
	}
	//
	column, ok := value.(*ColumnRef)
	//
	if !ok {
		return nil, errorf(TypeMismatch, "public value %s must expose a column, found %s",
			s.Name, typeName(value))
	} else if column.Shift != 0 {
		return nil, errorf(TypeMismatch, "public value %s cannot expose a shifted column", s.Name)
	}
	//
	rowValue, err := ev.evalIn(namespace.Name, s.Row, nil)
	if err != nil {
		return nil, err
	}
	//
	row, err := asBound(rowValue)
	if err != nil {
		return nil, err
	}
	//
	degree := p.schema.Module(p.env.Module(namespace.Name)).Degree
	//
	if row >= degree {
		return nil, errorf(TypeMismatch, "public value %s exposes row %d outside domain of %d rows",
			s.Name, row, degree)
	}
	//
	p.schema.AddPublicValue(schema.PublicValue{Name: s.Name, Column: column.Column, Row: row})
	//
	return &Unit{}, nil
}

func handleOf(namespace string, index int) string {
	return fmt.Sprintf("%s#%d", namespace, index)
}
