package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"
)

// Formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatXLSX  = "xlsx"
)

// Write renders rows in a text format to w. XLSX goes through WriteXLSX.
func Write(w io.Writer, format string, rows []Row) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return WriteTable(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatYAML:
		return WriteYAML(w, rows)
	case FormatXLSX:
		return eris.New("summary: xlsx needs an output file")
	default:
		return eris.Errorf("summary: unknown format %q", format)
	}
}

// WriteTable writes an aligned plain-text table.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tSCHOOLS\tACCENT") //nolint:errcheck
	for _, r := range rows {
		accent := ""
		if r.Accent {
			accent = "*"
		}
		name := r.Name
		if !r.HasGeometry {
			name += " (no geometry)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", r.Rank, name, r.Count, accent) //nolint:errcheck
	}
	return eris.Wrap(tw.Flush(), "summary: write table")
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rows), "summary: write json")
}

// WriteYAML writes rows as a YAML sequence.
func WriteYAML(w io.Writer, rows []Row) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return eris.Wrap(err, "summary: write yaml")
	}
	return eris.Wrap(enc.Close(), "summary: close yaml")
}

// WriteXLSX saves rows as a single-sheet workbook at path.
func WriteXLSX(path string, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Kommuner")
	if err != nil {
		return eris.Wrap(err, "summary: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Rank", "ID", "Name", "Schools", "Accent"} {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Rank)
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetInt(r.Count)
		row.AddCell().SetBool(r.Accent)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "summary: save %s", path)
	}
	return nil
}
