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

// Package binfile decodes circuits from their JSON interchange encoding, as
// produced by front-end tooling.  Every enumeration in the encoding is
// represented as a struct of optional fields, of which exactly one must be
// present.
package binfile

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/go-pil/pkg/ast"
	"github.com/consensys/go-pil/pkg/util"
)

// CircuitFromJson decodes a circuit from the bytes of its JSON encoding.
func CircuitFromJson(data []byte) (*ast.Circuit, error) {
	var circuit jsonCircuit
	//
	if err := json.Unmarshal(data, &circuit); err != nil {
		return nil, err
	}
	//
	return circuit.toAst()
}

type jsonCircuit struct {
	Namespaces []jsonNamespace `json:"namespaces"`
}

type jsonNamespace struct {
	Name       string          `json:"name"`
	Degree     jsonExpr        `json:"degree"`
	Statements []jsonStatement `json:"statements"`
}

// jsonStatement enumerates statement forms.  Exactly one field must be
// non-nil.
type jsonStatement struct {
	Constant    *jsonDefConstant    `json:"constant,omitempty"`
	Witness     *jsonDefWitness     `json:"witness,omitempty"`
	Fixed       *jsonDefFixed       `json:"fixed,omitempty"`
	Identity    *jsonDefIdentity    `json:"identity,omitempty"`
	Lookup      *jsonDefLookup      `json:"lookup,omitempty"`
	Permutation *jsonDefPermutation `json:"permutation,omitempty"`
	Connect     *jsonDefConnect     `json:"connect,omitempty"`
	Public      *jsonDefPublic      `json:"public,omitempty"`
}

type jsonDefConstant struct {
	Name  string   `json:"name"`
	Value jsonExpr `json:"value"`
}

type jsonColumnName struct {
	Name      string    `json:"name"`
	ArraySize *jsonExpr `json:"array_size,omitempty"`
}

type jsonDefWitness struct {
	Columns []jsonColumnName `json:"columns"`
}

type jsonDefFixed struct {
	Column  jsonColumnName `json:"column"`
	Mapping *jsonExpr      `json:"mapping,omitempty"`
	Values  *jsonArrayExpr `json:"values,omitempty"`
}

type jsonDefIdentity struct {
	Selector *jsonExpr `json:"selector,omitempty"`
	Expr     jsonExpr  `json:"expr"`
}

type jsonSelected struct {
	Selector *jsonExpr  `json:"selector,omitempty"`
	Exprs    []jsonExpr `json:"exprs"`
}

type jsonDefLookup struct {
	Source jsonSelected `json:"source"`
	Target jsonSelected `json:"target"`
}

type jsonDefPermutation struct {
	Source jsonSelected `json:"source"`
	Target jsonSelected `json:"target"`
}

type jsonDefConnect struct {
	Source []jsonExpr `json:"source"`
	Target []jsonExpr `json:"target"`
}

type jsonDefPublic struct {
	Name   string   `json:"name"`
	Column jsonExpr `json:"column"`
	Row    jsonExpr `json:"row"`
}

// jsonExpr enumerates expression forms.  Exactly one field must be non-nil.
type jsonExpr struct {
	Const  *string        `json:"const,omitempty"`
	Ref    *jsonReference `json:"ref,omitempty"`
	Unary  *jsonUnary     `json:"unary,omitempty"`
	Binary *jsonBinary    `json:"binary,omitempty"`
	Lambda *jsonLambda    `json:"lambda,omitempty"`
	Call   *jsonCall      `json:"call,omitempty"`
	Array  []jsonExpr     `json:"array,omitempty"`
	Index  *jsonIndex     `json:"index,omitempty"`
	If     *jsonIf        `json:"if,omitempty"`
	Match  *jsonMatch     `json:"match,omitempty"`
	Next   *jsonExpr      `json:"next,omitempty"`
}

type jsonReference struct {
	Namespace string    `json:"namespace,omitempty"`
	Name      string    `json:"name"`
	Index     *jsonExpr `json:"index,omitempty"`
	Next      bool      `json:"next,omitempty"`
}

type jsonUnary struct {
	Op  string   `json:"op"`
	Arg jsonExpr `json:"arg"`
}

type jsonBinary struct {
	Op    string   `json:"op"`
	Left  jsonExpr `json:"left"`
	Right jsonExpr `json:"right"`
}

type jsonLambda struct {
	Params []string `json:"params"`
	Body   jsonExpr `json:"body"`
}

type jsonCall struct {
	Callee jsonExpr   `json:"callee"`
	Args   []jsonExpr `json:"args"`
}

type jsonIndex struct {
	Source jsonExpr `json:"source"`
	Index  jsonExpr `json:"index"`
}

type jsonIf struct {
	Condition jsonExpr `json:"cond"`
	Then      jsonExpr `json:"then"`
	Else      jsonExpr `json:"else"`
}

type jsonMatchArm struct {
	Pattern *jsonExpr `json:"pattern,omitempty"`
	Body    jsonExpr  `json:"body"`
}

type jsonMatch struct {
	Scrutinee jsonExpr       `json:"scrutinee"`
	Arms      []jsonMatchArm `json:"arms"`
}

// jsonArrayExpr enumerates the forms an array-defined fixed column can take.
type jsonArrayExpr struct {
	Values []jsonExpr      `json:"values,omitempty"`
	Repeat []jsonExpr      `json:"repeat,omitempty"`
	Concat []jsonArrayExpr `json:"concat,omitempty"`
}

// ============================================================================
// Translation
// ============================================================================

func (p *jsonCircuit) toAst() (*ast.Circuit, error) {
	circuit := &ast.Circuit{Namespaces: make([]ast.Namespace, len(p.Namespaces))}
	//
	for i, namespace := range p.Namespaces {
		degree, err := namespace.Degree.toAst()
		if err != nil {
			return nil, err
		}
		//
		statements := make([]ast.Statement, len(namespace.Statements))
		//
		for j, statement := range namespace.Statements {
			if statements[j], err = statement.toAst(); err != nil {
				return nil, err
			}
		}
		//
		circuit.Namespaces[i] = ast.Namespace{
			Name:       namespace.Name,
			Degree:     degree,
			Statements: statements,
		}
	}
	//
	return circuit, nil
}

func (p *jsonStatement) toAst() (ast.Statement, error) {
	switch {
	case p.Constant != nil:
		value, err := p.Constant.Value.toAst()
		if err != nil {
			return nil, err
		}
		//
		return &ast.DefConstant{Name: p.Constant.Name, Value: value}, nil
	case p.Witness != nil:
		columns := make([]ast.ColumnName, len(p.Witness.Columns))
		//
		for i, column := range p.Witness.Columns {
			name, err := column.toAst()
			if err != nil {
				return nil, err
			}
			//
			columns[i] = name
		}
		//
		return &ast.DefWitness{Columns: columns}, nil
	case p.Fixed != nil:
		return p.Fixed.toAst()
	case p.Identity != nil:
		selector, err := optionalExpr(p.Identity.Selector)
		if err != nil {
			return nil, err
		}
		//
		expr, err := p.Identity.Expr.toAst()
		if err != nil {
			return nil, err
		}
		//
		return &ast.DefIdentity{Selector: selector, Expr: expr}, nil
	case p.Lookup != nil:
		source, target, err := bothSides(p.Lookup.Source, p.Lookup.Target)
		if err != nil {
			return nil, err
		}
		//
		return &ast.DefLookup{Source: source, Target: target}, nil
	case p.Permutation != nil:
		source, target, err := bothSides(p.Permutation.Source, p.Permutation.Target)
		if err != nil {
			return nil, err
		}
		//
		return &ast.DefPermutation{Source: source, Target: target}, nil
	case p.Connect != nil:
		source, err := exprArray(p.Connect.Source)
		if err != nil {
			return nil, err
		}
		//
		target, err := exprArray(p.Connect.Target)
		if err != nil {
			return nil, err
		}
		//
		return &ast.DefConnect{Source: source, Target: target}, nil
	case p.Public != nil:
		return p.Public.toAst()
	default:
		return nil, fmt.Errorf("statement has no recognised form")
	}
}

func (p *jsonColumnName) toAst() (ast.ColumnName, error) {
	size, err := optionalExpr(p.ArraySize)
	if err != nil {
		return ast.ColumnName{}, err
	}
	//
	return ast.ColumnName{Name: p.Name, ArraySize: size}, nil
}

func (p *jsonDefFixed) toAst() (ast.Statement, error) {
	column, err := p.Column.toAst()
	if err != nil {
		return nil, err
	}
	//
	var definition ast.FixedDefinition
	//
	switch {
	case p.Mapping != nil && p.Values != nil:
		return nil, fmt.Errorf("fixed column %s has both a mapping and values", p.Column.Name)
	case p.Mapping != nil:
		body, err := p.Mapping.toAst()
		if err != nil {
			return nil, err
		}
		//
		definition = &ast.MappingDefinition{Body: body}
	case p.Values != nil:
		values, err := p.Values.toAst()
		if err != nil {
			return nil, err
		}
		//
		definition = &ast.ArrayDefinition{Values: values}
	default:
		return nil, fmt.Errorf("fixed column %s has no definition", p.Column.Name)
	}
	//
	return &ast.DefFixed{Column: column, Definition: definition}, nil
}

func (p *jsonDefPublic) toAst() (ast.Statement, error) {
	column, err := p.Column.toAst()
	if err != nil {
		return nil, err
	}
	//
	ref, ok := column.(*ast.Reference)
	if !ok {
		return nil, fmt.Errorf("public value %s must name a column", p.Name)
	}
	//
	row, err := p.Row.toAst()
	if err != nil {
		return nil, err
	}
	//
	return &ast.DefPublic{Name: p.Name, Column: *ref, Row: row}, nil
}

func bothSides(source jsonSelected, target jsonSelected) (ast.SelectedExpressions, ast.SelectedExpressions, error) {
	var empty ast.SelectedExpressions
	//
	lhs, err := source.toAst()
	if err != nil {
		return empty, empty, err
	}
	//
	rhs, err := target.toAst()
	if err != nil {
		return empty, empty, err
	}
	//
	return lhs, rhs, nil
}

func (p *jsonSelected) toAst() (ast.SelectedExpressions, error) {
	var empty ast.SelectedExpressions
	//
	selector, err := optionalExpr(p.Selector)
	if err != nil {
		return empty, err
	}
	//
	exprs, err := exprArray(p.Exprs)
	if err != nil {
		return empty, err
	}
	//
	return ast.SelectedExpressions{Selector: selector, Exprs: exprs}, nil
}

func (p *jsonExpr) toAst() (ast.Expr, error) {
	switch {
	case p.Const != nil:
		val, ok := new(big.Int).SetString(*p.Const, 10)
		if !ok {
			return nil, fmt.Errorf("malformed integer literal %q", *p.Const)
		}
		//
		return &ast.Constant{Val: val}, nil
	case p.Ref != nil:
		index, err := optionalExpr(p.Ref.Index)
		if err != nil {
			return nil, err
		}
		//
		return &ast.Reference{
			Namespace: p.Ref.Namespace,
			Name:      p.Ref.Name,
			Index:     index,
			Next:      p.Ref.Next,
		}, nil
	case p.Unary != nil:
		arg, err := p.Unary.Arg.toAst()
		if err != nil {
			return nil, err
		}
		//
		op, err := unaryOpOf(p.Unary.Op)
		if err != nil {
			return nil, err
		}
		//
		return &ast.UnaryOperation{Op: op, Arg: arg}, nil
	case p.Binary != nil:
		left, err := p.Binary.Left.toAst()
		if err != nil {
			return nil, err
		}
		//
		right, err := p.Binary.Right.toAst()
		if err != nil {
			return nil, err
		}
		//
		op, err := binaryOpOf(p.Binary.Op)
		if err != nil {
			return nil, err
		}
		//
		return &ast.BinaryOperation{Op: op, Left: left, Right: right}, nil
	case p.Lambda != nil:
		body, err := p.Lambda.Body.toAst()
		if err != nil {
			return nil, err
		}
		//
		return &ast.Lambda{Params: p.Lambda.Params, Body: body}, nil
	case p.Call != nil:
		callee, err := p.Call.Callee.toAst()
		if err != nil {
			return nil, err
		}
		//
		args, err := exprArray(p.Call.Args)
		if err != nil {
			return nil, err
		}
		//
		return &ast.FunctionCall{Callee: callee, Args: args}, nil
	case p.Array != nil:
		items, err := exprArray(p.Array)
		if err != nil {
			return nil, err
		}
		//
		return &ast.ArrayLiteral{Items: items}, nil
	case p.Index != nil:
		source, err := p.Index.Source.toAst()
		if err != nil {
			return nil, err
		}
		//
		index, err := p.Index.Index.toAst()
		if err != nil {
			return nil, err
		}
		//
		return &ast.IndexAccess{Source: source, Index: index}, nil
	case p.If != nil:
		condition, err := p.If.Condition.toAst()
		if err != nil {
			return nil, err
		}
		//
		trueBranch, err := p.If.Then.toAst()
		if err != nil {
			return nil, err
		}
		//
		falseBranch, err := p.If.Else.toAst()
		if err != nil {
			return nil, err
		}
		//
		return &ast.If{Condition: condition, TrueBranch: trueBranch, FalseBranch: falseBranch}, nil
	case p.Match != nil:
		return p.Match.toAst()
	case p.Next != nil:
		arg, err := p.Next.toAst()
		if err != nil {
			return nil, err
		}
		//
		return &ast.Next{Arg: arg}, nil
	default:
		return nil, fmt.Errorf("expression has no recognised form")
	}
}

func (p *jsonMatch) toAst() (ast.Expr, error) {
	scrutinee, err := p.Scrutinee.toAst()
	if err != nil {
		return nil, err
	}
	//
	arms := make([]ast.MatchArm, len(p.Arms))
	//
	for i, arm := range p.Arms {
		pattern, err := optionalExpr(arm.Pattern)
		if err != nil {
			return nil, err
		}
		//
		body, err := arm.Body.toAst()
		if err != nil {
			return nil, err
		}
		//
		arms[i] = ast.MatchArm{Pattern: pattern, Body: body}
	}
	//
	return &ast.Match{Scrutinee: scrutinee, Arms: arms}, nil
}

func (p *jsonArrayExpr) toAst() (ast.ArrayExpr, error) {
	switch {
	case p.Values != nil:
		items, err := exprArray(p.Values)
		if err != nil {
			return nil, err
		}
		//
		return &ast.ArrayValues{Items: items}, nil
	case p.Repeat != nil:
		items, err := exprArray(p.Repeat)
		if err != nil {
			return nil, err
		}
		//
		return &ast.ArrayRepeat{Items: items}, nil
	case p.Concat != nil:
		if len(p.Concat) < 2 {
			return nil, fmt.Errorf("array concatenation requires at least two operands")
		}
		//
		result, err := p.Concat[0].toAst()
		if err != nil {
			return nil, err
		}
		//
		for i := 1; i < len(p.Concat); i++ {
			next, err := p.Concat[i].toAst()
			if err != nil {
				return nil, err
			}
			//
			result = &ast.ArrayConcat{Left: result, Right: next}
		}
		//
		return result, nil
	default:
		return nil, fmt.Errorf("array expression has no recognised form")
	}
}

func optionalExpr(e *jsonExpr) (util.Option[ast.Expr], error) {
	if e == nil {
		return util.None[ast.Expr](), nil
	}
	//
	expr, err := e.toAst()
	if err != nil {
		return util.None[ast.Expr](), err
	}
	//
	return util.Some(expr), nil
}

func exprArray(es []jsonExpr) ([]ast.Expr, error) {
	exprs := make([]ast.Expr, len(es))
	//
	for i := range es {
		expr, err := es[i].toAst()
		if err != nil {
			return nil, err
		}
		//
		exprs[i] = expr
	}
	//
	return exprs, nil
}

var binaryOps = map[string]ast.BinaryOp{
	"+": ast.Add, "-": ast.Sub, "*": ast.Mul, "/": ast.Div, "%": ast.Mod,
	"**": ast.Pow, "&": ast.And, "|": ast.Or, "<<": ast.Shl, ">>": ast.Shr,
	"==": ast.Eq, "!=": ast.Neq, "<": ast.Lt, "<=": ast.Leq, ">": ast.Gt, ">=": ast.Geq,
}

func binaryOpOf(name string) (ast.BinaryOp, error) {
	if op, ok := binaryOps[name]; ok {
		return op, nil
	}
	//
	return 0, fmt.Errorf("unknown binary operator %q", name)
}

func unaryOpOf(name string) (ast.UnaryOp, error) {
	if name == "-" {
		return ast.Minus, nil
	}
	//
	return 0, fmt.Errorf("unknown unary operator %q", name)
}
