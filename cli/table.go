package cli

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"go.hackfix.me/dbadmin/db/migrator"
)

// schemaTable is a borderless, left-aligned table of schema data.
type schemaTable struct {
	header []string
	rows   [][]string
}

// historyTable lists version records, in the order given.
func historyTable(records []migrator.Record) *schemaTable {
	t := &schemaTable{header: []string{"Seq", "Version", "Release", "Recorded At", "ID"}}
	for _, rec := range records {
		t.rows = append(t.rows, []string{
			strconv.FormatInt(rec.Seq, 10),
			strconv.Itoa(int(rec.Ordinal)),
			rec.Version,
			rec.RecordedAt.UTC().Format(time.DateTime),
			rec.ID,
		})
	}

	return t
}

// statusTable lists schema objects, and whether their presence matches the
// expected schema. It also returns the number of objects that don't.
func statusTable(status []migrator.ObjectStatus) (t *schemaTable, drift int) {
	t = &schemaTable{header: []string{"Object", "Expected", "Present", "Status"}}
	for _, st := range status {
		state := "ok"
		if !st.OK() {
			state = "drift"
			drift++
		}
		t.rows = append(t.rows, []string{
			st.Name, strconv.FormatBool(st.Expected), strconv.FormatBool(st.Present), state,
		})
	}

	return t, drift
}

// releasesTable lists schema versions and the releases that share them. The
// current version is marked with an asterisk.
func releasesTable(versions []migrator.Version, current migrator.Ordinal) *schemaTable {
	t := &schemaTable{header: []string{"Version", "Releases", "Objects"}}
	for _, v := range versions {
		ord := strconv.Itoa(int(v.Ordinal))
		if v.Ordinal == current {
			ord += "*"
		}
		t.rows = append(t.rows, []string{
			ord, strings.Join(v.Releases, ", "), strconv.Itoa(len(v.Objects)),
		})
	}

	return t
}

func (t *schemaTable) render(w io.Writer) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(
			tw.Rendition{
				Borders: tw.BorderNone,
				Symbols: tw.NewSymbols(tw.StyleASCII),
				Settings: tw.Settings{
					Lines: tw.Lines{
						ShowHeaderLine: tw.Off,
						ShowFooterLine: tw.Off,
						ShowTop:        tw.Off,
						ShowBottom:     tw.Off,
					},
					Separators: tw.Separators{
						ShowHeader:     tw.Off,
						ShowFooter:     tw.Off,
						BetweenRows:    tw.Off,
						BetweenColumns: tw.Off,
					},
				},
			},
		)),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)

	table.Header(t.header)
	if err := table.Bulk(t.rows); err != nil {
		return err //nolint:wrapcheck // This is wrapped by the caller.
	}

	return table.Render() //nolint:wrapcheck // This is wrapped by the caller.
}
