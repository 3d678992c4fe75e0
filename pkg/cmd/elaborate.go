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
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/consensys/go-pil/pkg/lt"
	"github.com/consensys/go-pil/pkg/pil"
	"github.com/consensys/go-pil/pkg/schema"
)

var elaborateCmd = &cobra.Command{
	Use:   "elaborate [flags] circuit_file",
	Short: "elaborate a circuit into a flat schema.",
	Long: `Elaborate a given circuit file into a flat schema of columns and constraints,
	 reporting the result on standard output.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		circuit := ReadCircuitFile(args[0])
		//
		sc, err := pil.Elaborate(circuit)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		if GetFlag(cmd, "columns") {
			printColumns(sc)
		}
		//
		if GetFlag(cmd, "constraints") {
			printConstraints(sc)
		}
		//
		if GetFlag(cmd, "fixed") {
			printFixed(sc, GetUint(cmd, "rows"))
		}
		//
		if output := GetString(cmd, "output"); output != "" {
			writeFixed(sc, output)
		}
	},
}

// writeFixed materialises every fixed column and writes the result as a
// binary trace file.
func writeFixed(sc *schema.Schema, filename string) {
	values, err := sc.MaterialiseFixed()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	data, err := lt.ToBytes(lt.NewTraceFile(sc, values))
	if err == nil {
		err = os.WriteFile(filename, data, 0644)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	log.Debugf("wrote %d bytes to %s", len(data), filename)
}

func printColumns(sc *schema.Schema) {
	for cid := range sc.Columns() {
		column := sc.Column(uint(cid))
		module := sc.Module(column.Module)
		//
		fmt.Printf("%s (%s, %d rows)\n", sc.QualifiedName(uint(cid)), column.Kind, module.Degree)
	}
}

func printConstraints(sc *schema.Schema) {
	width := terminalWidth()
	//
	for _, constraint := range sc.Constraints() {
		line := fmt.Sprintf("%s: %s", constraint.Handle(), constraint)
		fmt.Println(truncate(line, width))
	}
	//
	for _, public := range sc.PublicValues() {
		fmt.Println(public.String())
	}
}

// printFixed materialises every fixed column and prints (at most) the first n
// rows of each.
func printFixed(sc *schema.Schema, n uint) {
	values, err := sc.MaterialiseFixed()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	for cid := range sc.Columns() {
		data, ok := values[uint(cid)]
		if !ok {
			continue
		}
		//
		fmt.Printf("%s:", sc.QualifiedName(uint(cid)))
		//
		for row := uint(0); row < n && row < uint(len(data)); row++ {
			fmt.Printf(" %s", data[row].String())
		}
		//
		fmt.Println()
	}
}

// truncate cuts a line down to a given terminal width, marking the cut with
// an ellipsis.  Widths too narrow to hold the marker leave the line alone.
func truncate(line string, width int) string {
	if width > 3 && len(line) > width {
		return line[:width-3] + "..."
	}
	//
	return line
}

func terminalWidth() int {
	if width, _, err := term.GetSize(0); err == nil {
		return width
	}
	// Not a terminal, so assume something sensible.
	return 80
}

func init() {
	rootCmd.AddCommand(elaborateCmd)
	elaborateCmd.Flags().Bool("columns", true, "report declared columns")
	elaborateCmd.Flags().Bool("constraints", true, "report elaborated constraints")
	elaborateCmd.Flags().Bool("fixed", false, "materialise and report fixed columns")
	elaborateCmd.Flags().Uint("rows", 16, "number of fixed rows to report")
	elaborateCmd.Flags().StringP("output", "o", "", "write materialised fixed columns to a trace file")
}
