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

import "fmt"

// ErrorCode classifies the ways in which elaboration can fail.  Every failure
// is fatal for the entire specification: since later statements may depend on
// earlier ones, there is no meaningful partial output.
type ErrorCode uint8

const (
	// UnresolvedReference indicates a name which could not be found in scope,
	// nor in any previously declared namespace.
	UnresolvedReference ErrorCode = iota
	// DuplicateDefinition indicates a name declared twice within the same
	// namespace.
	DuplicateDefinition
	// TypeMismatch indicates an operator or combinator applied to a value of
	// the wrong shape.
	TypeMismatch
	// ArityMismatch indicates a function called with the wrong number of
	// arguments, or a permutation with sides of unequal length.
	ArityMismatch
	// NonConstantLength indicates an array length, recursion bound or row
	// index which failed to reduce to a concrete integer.
	NonConstantLength
	// RecursionLimitExceeded indicates that the evaluation step or call-depth
	// budget was exhausted.
	RecursionLimitExceeded
	// NonExhaustiveMatch indicates a match expression where no arm applied.
	NonExhaustiveMatch
	// StatementNotAConstraint indicates a top-level statement which reduced
	// to something other than a constraint or a definition.
	StatementNotAConstraint
	// UnderSpecified indicates a constraint expression which still contained
	// an unreduced closure or array after full evaluation.
	UnderSpecified
	// LookupArityMismatch indicates a lookup whose sides have unequal length.
	LookupArityMismatch
)

func (p ErrorCode) String() string {
	switch p {
	case UnresolvedReference:
		return "unresolved reference"
	case DuplicateDefinition:
		return "duplicate definition"
	case TypeMismatch:
		return "type mismatch"
	case ArityMismatch:
		return "arity mismatch"
	case NonConstantLength:
		return "non-constant length"
	case RecursionLimitExceeded:
		return "recursion limit exceeded"
	case NonExhaustiveMatch:
		return "non-exhaustive match"
	case StatementNotAConstraint:
		return "statement not a constraint"
	case UnderSpecified:
		return "under-specified constraint"
	case LookupArityMismatch:
		return "lookup arity mismatch"
	default:
		return "unknown error"
	}
}

// Error reports a failure of elaboration, along with the namespace and
// statement index at which it arose.
type Error struct {
	// Classification of this error.
	Code ErrorCode
	// Namespace in which the error arose.
	Namespace string
	// Index of the offending statement within its namespace, counting from
	// zero.  Negative when the error arose outside any statement (e.g. in a
	// namespace's degree expression).
	Statement int
	// Human-readable description of the error.
	Msg string
}

func (p *Error) Error() string {
	if p.Namespace == "" {
		return fmt.Sprintf("%s: %s", p.Code, p.Msg)
	} else if p.Statement < 0 {
		return fmt.Sprintf("%s: %s: %s", p.Namespace, p.Code, p.Msg)
	}
	//
	return fmt.Sprintf("%s:%d: %s: %s", p.Namespace, p.Statement, p.Code, p.Msg)
}

// errorf constructs an error with a given code and message, but no location.
// The elaborator attaches the location before the error escapes.
func errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{code, "", -1, fmt.Sprintf(format, args...)}
}

// at attaches a location to an error, unless one was already attached (the
// innermost location wins, since errors can cross namespaces through
// qualified references).
func (p *Error) at(namespace string, statement int) *Error {
	if p.Namespace == "" {
		p.Namespace = namespace
		p.Statement = statement
	}
	//
	return p
}
