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
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, "abcdefg", truncate("abcdefg", 7))
	assert.Equal(t, "abcd...", truncate("abcdefgh", 7))
	// Widths too narrow for the ellipsis never slice out of range.
	assert.Equal(t, "abcdefgh", truncate("abcdefgh", 3))
	assert.Equal(t, "abcdefgh", truncate("abcdefgh", 0))
	assert.Equal(t, "abcdefgh", truncate("abcdefgh", -1))
}
