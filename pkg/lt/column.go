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
package lt

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Column provides access to a specific column in the trace file.
type Column struct {
	// Fully qualified name of this column.
	name string
	// The data stored in this column.
	data []fr.Element
}

// Name returns the name of this column.
func (p *Column) Name() string {
	return p.name
}

// Height returns the number of rows in this column.
func (p *Column) Height() uint {
	return uint(len(p.data))
}

// Get the ith row of this column as a field element.
func (p *Column) Get(i uint) fr.Element {
	return p.data[i]
}

// Data returns all rows of this column.
func (p *Column) Data() []fr.Element {
	return p.data
}
