package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/freightdesk/backoffice/pkg/dataset"
)

// Format is an output format of the inspection commands.
type Format string

// Output formats
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func parseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

func renderDescriptors(w io.Writer, format Format, descriptors []dataset.Descriptor) error {
	if format != FormatTable {
		return encode(w, format, descriptors)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tSOURCE\tSEARCHABLE")
	for _, d := range descriptors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Title, d.Source, strings.Join(d.Searchable, ","))
	}
	return tw.Flush()
}

func renderResult(w io.Writer, format Format, d dataset.Descriptor, res dataset.Result) error {
	if format != FormatTable {
		return encode(w, format, res)
	}

	// Items are rendered through their JSON form, whose keys match the
	// schema field keys.
	raw, err := json.Marshal(res.Items)
	if err != nil {
		return err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := []string{"ID"}
	for _, f := range d.Fields {
		header = append(header, strings.ToUpper(f.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		cells := []string{cell(row["id"])}
		for _, f := range d.Fields {
			cells = append(cells, cell(row[f.Key]))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\npage %d of %d, %d of %d items\n",
		res.CurrentPage, res.TotalPages, res.Count, res.TotalItems)
	return err
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = cell(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
