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
	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-pil/pkg/schema"
)

// collector classifies the value each top-level statement reduced to, and
// appends constraint-shaped values to the schema's identity list.  Identities
// are immutable once emitted and never revisited.
type collector struct {
	schema *schema.Schema
}

// collect accepts the value of a fully evaluated top-level statement.  Unit
// values (declarations) are ignored; constraints are emitted; anything else
// indicates a statement which computes a value and then discards it, which is
// always a mistake.
func (p *collector) collect(value Value) *Error {
	switch value := value.(type) {
	case *Unit:
		return nil
	case *Constraint:
		log.Debugf("emitting constraint %s", value.Body.Handle())
		p.schema.AddConstraint(value.Body)
		//
		return nil
	default:
		return errorf(StatementNotAConstraint,
			"top-level statement evaluates to %s", typeName(value))
	}
}
