package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/examslot/internal/session"
)

// Output formats accepted by Write.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTOML  = "toml"
	OutputCSV   = "csv"
)

// Outputs lists the supported output formats.
var Outputs = []string{OutputTable, OutputJSON, OutputYAML, OutputTOML, OutputCSV}

// ValidateOutput returns an error for unknown output formats.
func ValidateOutput(format string) error {
	for _, o := range Outputs {
		if format == o {
			return nil
		}
	}
	return fmt.Errorf("invalid output %q (expected %s)", format, strings.Join(Outputs, "|"))
}

// Document is the structured form of a rendered schedule.
type Document struct {
	Source string            `json:"source" yaml:"source" toml:"source"`
	Query  string            `json:"query" yaml:"query" toml:"query"`
	Header []string          `json:"header,omitempty" yaml:"header,omitempty" toml:"header,omitempty"`
	Rows   []session.RowView `json:"rows" yaml:"rows" toml:"rows"`
}

// Write renders doc in the given format.
func Write(w io.Writer, format string, doc Document, opts TableOptions) error {
	switch format {
	case OutputTable, "":
		_, err := io.WriteString(w, RenderGrid(doc.Rows, opts))
		return err
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case OutputYAML:
		out, err := FormatYAML(doc, YAMLFormatOptions{Indent: 2})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case OutputTOML:
		return toml.NewEncoder(w).Encode(doc)
	case OutputCSV:
		return writeCSV(w, doc)
	default:
		return ValidateOutput(format)
	}
}

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	Indent int
}

// FormatYAML renders an object to YAML using the provided options.
func FormatYAML(v interface{}, opts YAMLFormatOptions) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeCSV emits one line per row: subject, effective pointer, slot count,
// next ordinal, then one column per slot holding occupant:CLASS, with
// CurrentSuffix appended on the slot at the effective pointer.
func writeCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	maxSlots := 0
	for _, v := range doc.Rows {
		if n := len(v.Cells); n > maxSlots {
			maxSlots = n
		}
	}
	header := []string{"subject", "pointer", "slots", "next"}
	for i := 1; i <= maxSlots; i++ {
		header = append(header, "slot"+strconv.Itoa(i))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range doc.Rows {
		next := ""
		if v.State.HasNext {
			next = strconv.Itoa(v.State.NextOrdinal)
		}
		rec := []string{v.Row.Subject, strconv.Itoa(v.State.EffectivePointer), strconv.Itoa(v.Row.SlotCount()), next}
		for i := 0; i < maxSlots; i++ {
			if i >= len(v.Cells) {
				rec = append(rec, "")
				continue
			}
			cell := v.Row.Slots[i] + ":" + v.Cells[i].Class.String()
			if v.Cells[i].IsCurrentColumn {
				cell += CurrentSuffix
			}
			rec = append(rec, cell)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", v.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
