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
	"io"
	"strings"

	"github.com/juju/errors"
)

const maxCSVLineSize = 16 * 1024 * 1024

// Escape text for csv.
func Escape(text string) string {
	if !strings.ContainsAny(text, ",\"\n\r") {
		return text
	}
	return "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
}

// WriteLine writes escaped fields as one csv line.
func WriteLine(w io.Writer, fields ...string) error {
	escaped := make([]string, len(fields))
	for i, field := range fields {
		escaped[i] = Escape(field)
	}
	_, err := io.WriteString(w, strings.Join(escaped, ",")+"\n")
	return errors.Trace(err)
}

// ReadLines parses fields of each record. Quoted fields may contain separators, doubled quotes
// and line breaks. The handler receives the zero-based record number.
func ReadLines(sc *bufio.Scanner, sep rune, handler func(int, []string) error) error {
	var (
		record  int
		fields  []string
		builder strings.Builder
		quoted  bool
	)
	for sc.Scan() {
		line := []rune(sc.Text())
		if quoted {
			// the record continues on this line
			builder.WriteString("\n")
		}
		for i := 0; i < len(line); i++ {
			switch c := line[i]; {
			case c == '"' && !quoted:
				quoted = true
			case c == '"' && i+1 < len(line) && line[i+1] == '"':
				builder.WriteRune('"')
				i++
			case c == '"':
				quoted = false
			case c == sep && !quoted:
				fields = append(fields, builder.String())
				builder.Reset()
			case c == '\r' && !quoted && i == len(line)-1:
			default:
				builder.WriteRune(c)
			}
		}
		if quoted {
			continue
		}
		fields = append(fields, builder.String())
		builder.Reset()
		if err := handler(record, fields); err != nil {
			return err
		}
		fields = nil
		record++
	}
	if err := sc.Err(); err != nil {
		return errors.Trace(err)
	}
	if quoted {
		return errors.Errorf("unterminated quoted field in record %d", record)
	}
	return nil
}

// ReadTable reads a csv table with a header line and passes each row keyed by column name.
// Rows shorter than the header are padded with empty values.
func ReadTable(r io.Reader, handler func(row map[string]string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxCSVLineSize)
	var header []string
	return ReadLines(sc, ',', func(i int, fields []string) error {
		if i == 0 {
			header = make([]string, len(fields))
			for j, name := range fields {
				header[j] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
			}
			return nil
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			return nil
		}
		row := make(map[string]string, len(header))
		for j, name := range header {
			if j < len(fields) {
				row[name] = fields[j]
			} else {
				row[name] = ""
			}
		}
		return handler(row)
	})
}
