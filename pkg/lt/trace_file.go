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

// Package lt provides a simple binary format for column data, used to hand
// materialised fixed columns over to downstream tooling.
package lt

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/consensys/go-pil/pkg/schema"
)

// TraceFile represents a single trace file, made up from zero or more columns.
type TraceFile struct {
	columns []*Column
}

// NewTraceFile constructs a trace file holding the materialised fixed columns
// of a schema, in declaration order, under their fully qualified names.
func NewTraceFile(sc *schema.Schema, values map[schema.ColumnId][]fr.Element) TraceFile {
	var columns []*Column
	//
	for cid := range sc.Columns() {
		data, ok := values[uint(cid)]
		if !ok {
			continue
		}
		//
		columns = append(columns, &Column{sc.QualifiedName(uint(cid)), data})
	}
	//
	return TraceFile{columns}
}

// Width returns the number of columns in this trace file.
func (p *TraceFile) Width() uint {
	return uint(len(p.columns))
}

// Column returns the ith column in this trace file.
func (p *TraceFile) Column(i uint) *Column {
	return p.columns[i]
}
