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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// ToBytes writes a given trace file as an array of bytes.
func ToBytes(tr TraceFile) ([]byte, error) {
	var buf bytes.Buffer
	//
	if err := Write(tr, &buf); err != nil {
		return nil, err
	}
	//
	return buf.Bytes(), nil
}

// Write a given trace file to an io.Writer.  Elements are stored big endian,
// fr.Bytes bytes each.
func Write(tr TraceFile, buf io.Writer) error {
	ncols := uint32(len(tr.columns))
	// Write column count
	if err := binary.Write(buf, binary.BigEndian, ncols); err != nil {
		return err
	}
	// Write header information
	for _, col := range tr.columns {
		nameBytes := []byte(col.name)
		//
		if len(nameBytes) > math.MaxUint16 {
			return fmt.Errorf("column name %.32q... exceeds %d bytes", col.name, math.MaxUint16)
		}
		// Write name length, then name bytes
		if err := binary.Write(buf, binary.BigEndian, uint16(len(nameBytes))); err != nil {
			return err
		}
		//
		if _, err := buf.Write(nameBytes); err != nil {
			return err
		}
		// Write bytes per element
		if err := binary.Write(buf, binary.BigEndian, uint8(fr.Bytes)); err != nil {
			return err
		}
		// Write data length
		if err := binary.Write(buf, binary.BigEndian, uint32(col.Height())); err != nil {
			return err
		}
	}
	// Write column data
	for _, col := range tr.columns {
		for i := range col.data {
			elem := col.data[i].Bytes()
			//
			if _, err := buf.Write(elem[:]); err != nil {
				return err
			}
		}
	}
	// Done
	return nil
}
