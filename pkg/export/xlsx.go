package export

import (
	"fmt"
	"io"
	"strings"

	"f1lapcompare/pkg/helper"
	"f1lapcompare/pkg/model"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const SummarySheet = "Summary"

var telemetryHeader = []interface{}{"DistanceKm", "ElapsedSeconds", "Speed"}

// WriteXLSX writes the comparison as a workbook: a summary sheet followed by one telemetry
// sheet per driver.
func WriteXLSX(w io.Writer, cmp model.Comparison) error {
	book, err := Workbook(cmp)
	if err != nil {
		return err
	}
	defer book.Close()

	return errors.Wrap(book.Write(w), "writing workbook")
}

func Workbook(cmp model.Comparison) (*excelize.File, error) {
	book := excelize.NewFile()
	headerStyle, err := book.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#1E1E1E"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
		},
	})
	if err != nil {
		book.Close()
		return nil, errors.Wrap(err, "creating header style")
	}

	if err := book.SetSheetName("Sheet1", SummarySheet); err != nil {
		book.Close()
		return nil, errors.Wrap(err, "naming summary sheet")
	}
	if err := writeSummary(book, cmp, headerStyle); err != nil {
		book.Close()
		return nil, err
	}

	used := map[string]bool{SummarySheet: true}
	for _, trace := range cmp.Traces {
		name := sheetName(trace.Driver.Code, used)
		if err := writeTelemetry(book, name, trace, headerStyle); err != nil {
			book.Close()
			return nil, err
		}
	}
	return book, nil
}

func writeSummary(book *excelize.File, cmp model.Comparison, headerStyle int) error {
	rows := [][]interface{}{
		{cmp.Request.Title()},
		{},
		{"Driver", "Team", "Lap", "Lap Time", "Sector 1", "Sector 2", "Sector 3"},
	}
	for i, lap := range cmp.Laps {
		code := cmp.Traces[i].Driver.Code
		if code == "" {
			code = lap.Driver
		}
		rows = append(rows, []interface{}{
			code,
			lap.Team,
			lap.Number,
			cmp.LapTimes[i],
			helper.ToSectorTime(lap.Sectors[0].Duration, lap.Sectors[0].Valid),
			helper.ToSectorTime(lap.Sectors[1].Duration, lap.Sectors[1].Valid),
			helper.ToSectorTime(lap.Sectors[2].Duration, lap.Sectors[2].Valid),
		})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Delta", cmp.DeltaText})
	for _, s := range cmp.Sectors {
		rows = append(rows, []interface{}{fmt.Sprintf("End of S%d (km)", s.Sector), s.DistanceKm})
	}

	for r, row := range rows {
		if err := setRow(book, SummarySheet, r+1, row); err != nil {
			return err
		}
	}
	if err := book.SetCellStyle(SummarySheet, "A3", "G3", headerStyle); err != nil {
		return errors.Wrap(err, "styling summary header")
	}
	return errors.Wrap(book.SetColWidth(SummarySheet, "A", "B", 18), "sizing summary columns")
}

func writeTelemetry(book *excelize.File, sheet string, trace model.Trace, headerStyle int) error {
	if _, err := book.NewSheet(sheet); err != nil {
		return errors.Wrapf(err, "creating sheet %s", sheet)
	}
	if err := setRow(book, sheet, 1, telemetryHeader); err != nil {
		return err
	}
	if err := book.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return errors.Wrapf(err, "styling sheet %s", sheet)
	}
	for i, p := range trace.Points {
		if err := setRow(book, sheet, i+2, []interface{}{p.DistanceKm, p.ElapsedSeconds, p.Speed}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(book *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrapf(err, "row %d of %s", row, sheet)
	}
	return errors.Wrapf(book.SetSheetRow(sheet, cell, &values), "writing row %d of %s", row, sheet)
}

func sheetName(code string, used map[string]bool) string {
	name := strings.TrimSpace(code)
	if name == "" {
		name = "Driver"
	}
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s (%d)", name, i)
	}
	used[candidate] = true
	return candidate
}

// Filename names the workbook after the request, e.g. 2024_Monza_R_VER_HAM.xlsx.
func Filename(req model.Request) string {
	gp := strings.ReplaceAll(strings.TrimSpace(req.GrandPrix), " ", "_")
	return fmt.Sprintf("%d_%s_%s_%s_%s.xlsx", req.Year, gp, req.Session, req.Driver1, req.Driver2)
}
