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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// FromBytes parses a byte array representing a trace file, or produces an
// error if the file was malformed in some way.
func FromBytes(data []byte) (TraceFile, error) {
	var empty TraceFile
	//
	buf := bytes.NewReader(data)
	// Read number of columns
	var ncols uint32
	if err := binary.Read(buf, binary.BigEndian, &ncols); err != nil {
		return empty, err
	}
	// Read column headers
	headers := make([]columnHeader, ncols)
	//
	for i := range headers {
		if err := readColumnHeader(buf, &headers[i]); err != nil {
			return empty, err
		}
	}
	// Read column data
	columns := make([]*Column, ncols)
	//
	for i, header := range headers {
		column, err := readColumnData(buf, header)
		if err != nil {
			return empty, err
		}
		//
		columns[i] = column
	}
	//
	return TraceFile{columns}, nil
}

type columnHeader struct {
	name            string
	bytesPerElement uint8
	length          uint32
}

// Read the meta-data for a specific column in this trace file.
func readColumnHeader(buf *bytes.Reader, header *columnHeader) error {
	var nameLen uint16
	// Read column name length, then name bytes
	if err := binary.Read(buf, binary.BigEndian, &nameLen); err != nil {
		return err
	}
	//
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(buf, name); err != nil {
		return err
	}
	//
	header.name = string(name)
	// Read bytes per element
	if err := binary.Read(buf, binary.BigEndian, &header.bytesPerElement); err != nil {
		return err
	}
	//
	if header.bytesPerElement == 0 || header.bytesPerElement > fr.Bytes {
		return fmt.Errorf("column %s: invalid element width %d", header.name, header.bytesPerElement)
	}
	// Read column length
	return binary.Read(buf, binary.BigEndian, &header.length)
}

func readColumnData(buf *bytes.Reader, header columnHeader) (*Column, error) {
	data := make([]fr.Element, header.length)
	elem := make([]byte, header.bytesPerElement)
	//
	for i := range data {
		if _, err := io.ReadFull(buf, elem); err != nil {
			return nil, fmt.Errorf("column %s: %w", header.name, err)
		}
		//
		data[i].SetBytes(elem)
	}
	//
	return &Column{header.name, data}, nil
}
