// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "123", Escape("123"))
	assert.Equal(t, "\"\"\"123\"\"\"", Escape("\"123\""))
	assert.Equal(t, "\"1,2,3\"", Escape("1,2,3"))
	assert.Equal(t, "\"\"\",\"\"\"", Escape("\",\""))
	assert.Equal(t, "\"1\r\n2\r\n3\"", Escape("1\r\n2\r\n3"))
}

func splitLines(t *testing.T, text string) [][]string {
	sc := bufio.NewScanner(strings.NewReader(text))
	lines := make([][]string, 0)
	err := ReadLines(sc, ',', func(i int, fields []string) error {
		lines = append(lines, fields)
		return nil
	})
	assert.NoError(t, err)
	return lines
}

func TestReadLines(t *testing.T) {
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
		splitLines(t, "1,2,3\r\n4,5,6\r\n"))
	assert.Equal(t, [][]string{{"1,2", "3,4", "5,6"}, {"2,3", "4,6", "6,9"}},
		splitLines(t, "\"1,2\",\"3,4\",\"5,6\"\n\"2,3\",\"4,6\",\"6,9\""))
	assert.Equal(t, [][]string{{"say \"hi\"", "x"}},
		splitLines(t, "\"say \"\"hi\"\"\",x\n"))
	assert.Equal(t, [][]string{{"1\n2", "3"}},
		splitLines(t, "\"1\n2\",3\n"))
}

func TestReadLinesUnterminated(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("\"1,2\n"))
	err := ReadLines(sc, ',', func(int, []string) error { return nil })
	assert.Error(t, err)
}

func TestReadTable(t *testing.T) {
	text := "\ufeffPlace_Id,Place_Name,City\n1,Monas,Jakarta\n2,\"Pantai, Indah\"\n\n"
	var rows []map[string]string
	err := ReadTable(strings.NewReader(text), func(row map[string]string) error {
		rows = append(rows, row)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"Place_Id": "1", "Place_Name": "Monas", "City": "Jakarta"},
		{"Place_Id": "2", "Place_Name": "Pantai, Indah", "City": ""},
	}, rows)
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteLine(&buf, "Bahari", "Laki-laki", "a,b"))
	assert.Equal(t, "Bahari,Laki-laki,\"a,b\"\n", buf.String())
}
