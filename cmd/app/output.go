package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roomlayout/inventorymap/internal/application"
	"github.com/roomlayout/inventorymap/internal/domain"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func printSites(sites []domain.Site) {
	rows := make([][]string, 0, len(sites))
	for _, s := range sites {
		rows = append(rows, []string{s.ID, s.Name, s.Address})
	}
	printTable([]string{"ID", "NAME", "ADDRESS"}, rows)
}

func printRooms(rooms []domain.Room) {
	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		dims := r.Dimensions
		if dims == "" {
			dims = fmt.Sprintf("%dx%d cells", r.GridWidth, r.GridHeight)
		}
		rows = append(rows, []string{r.ID, r.Name, r.SiteID, dims})
	}
	printTable([]string{"ID", "NAME", "SITE", "DIMENSIONS"}, rows)
}

func printItems(items []domain.Item) {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.ID, it.Name, it.Type, it.ParentObjectID})
	}
	printTable([]string{"ID", "NAME", "TYPE", "PARENT"}, rows)
}

func printState(view application.StateView) {
	crumbs := make([]string, 0, len(view.Breadcrumbs))
	for _, c := range view.Breadcrumbs {
		crumbs = append(crumbs, c.DisplayName)
	}
	kv := [][2]string{
		{"version", strconv.FormatUint(view.Version, 10)},
		{"path", strings.Join(crumbs, " > ")},
		{"selected", strconv.Itoa(len(view.Selection))},
	}
	if view.Canvas != nil {
		kv = append(kv, [2]string{"canvas", fmt.Sprintf("%.0fx%.0fpx (cell %.1fx%.1f)",
			view.Canvas.WidthPx, view.Canvas.HeightPx, view.Canvas.CellWidth, view.Canvas.CellHeight)})
	}
	printKV(kv)
	fmt.Println()

	rows := make([][]string, 0, len(view.Instances))
	for _, inst := range view.Instances {
		pos := fmt.Sprintf("(%d,%d)", inst.PosX, inst.PosY)
		size := fmt.Sprintf("%dx%d", inst.Width, inst.Height)
		if inst.Kind == domain.KindWall {
			pos = fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", inst.Line.X1, inst.Line.Y1, inst.Line.X2, inst.Line.Y2)
			size = "-"
		}
		marker := ""
		if inst.Selected {
			marker = "*"
		}
		rows = append(rows, []string{inst.ID, inst.Name, inst.Type, pos, size, string(inst.Orientation), marker})
	}
	printTable([]string{"ID", "NAME", "TYPE", "POS", "SIZE", "ORIENT", "SEL"}, rows)
}

func printUnplaced(result application.UnplacedResult) {
	if len(result.Groups) > 0 {
		for _, group := range result.Groups {
			fmt.Printf("%s (%d)\n", group.Type, len(group.Entries))
			printUnplacedEntries(group.Entries)
			fmt.Println()
		}
		fmt.Printf("total: %d\n", result.Total)
		return
	}
	printUnplacedEntries(result.Entries)
	fmt.Printf("total: %d\n", result.Total)
}

func printUnplacedEntries(entries []application.UnplacedEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ID, e.Name, e.Type, e.Kind})
	}
	printTable([]string{"ID", "NAME", "TYPE", "KIND"}, rows)
}
