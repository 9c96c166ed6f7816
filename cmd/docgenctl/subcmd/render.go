package subcmd

import (
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mamameal/docgenctl/kernel/codec"
	"github.com/mamameal/docgenctl/kernel/model"
)

func renderMetadata(w io.Writer, snap *model.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	title := string(snap.Group) + " files"
	if snap.Stale {
		title += " (stale: " + snap.Err + ")"
	}
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Kind", "Label", "Active File"})

	kinds := make([]model.Kind, 0, len(snap.Entries))
	for k := range snap.Entries {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		entry := snap.Entries[k]
		t.AppendRow(table.Row{k, entry.Label, entry.Identifier.String()})
	}
	t.Render()
}

func renderDownloads(w io.Writer, downloads []codec.Download) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Role", "File", "Type", "Bytes", "Saved To"})
	for _, dl := range downloads {
		t.AppendRow(table.Row{dl.Role, dl.Filename, dl.ContentType, dl.Size, dl.Location})
	}
	t.Render()
}
