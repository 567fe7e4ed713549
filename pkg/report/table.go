package report

import (
	"bytes"
	"fmt"

	"f1lapcompare/pkg/helper"
	"f1lapcompare/pkg/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	tableDriver = "PIL"
	tableLap    = "V"
	tableTime   = "Tiempo"
	tableSector = "Sectores"
)

// SummaryTable renders lap times, sectors and the delta of a comparison as a text table.
func SummaryTable(cmp model.Comparison) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	// keeps the km unit of the sector distances readable
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle(fmt.Sprintf("%d %s %s", cmp.Request.Year, cmp.Request.GrandPrix, cmp.Request.Session.Label()))

	t.AppendHeader(table.Row{tableDriver, tableLap, tableTime, tableSector})
	for i, lap := range cmp.Laps {
		code := cmp.Traces[i].Driver.Code
		if code == "" {
			code = lap.Driver
		}
		t.AppendRow(table.Row{
			code,
			lap.Number,
			cmp.LapTimes[i],
			fmt.Sprintf("%s %s %s",
				helper.ToSectorTime(lap.Sectors[0].Duration, lap.Sectors[0].Valid),
				helper.ToSectorTime(lap.Sectors[1].Duration, lap.Sectors[1].Valid),
				helper.ToSectorTime(lap.Sectors[2].Duration, lap.Sectors[2].Valid)),
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"Δ", "", cmp.DeltaText, sectorDistances(cmp.Sectors)})
	t.Render()
	return b.String()
}

func sectorDistances(sectors []model.SectorBoundary) string {
	out := ""
	for i, s := range sectors {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("S%d@%.2fkm", s.Sector, s.DistanceKm)
	}
	return out
}
