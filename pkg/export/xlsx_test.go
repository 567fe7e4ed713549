package export

import (
	"bytes"
	"testing"
	"time"

	"f1lapcompare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func comparison(code1, code2 string) model.Comparison {
	points := []model.TracePoint{
		{DistanceKm: 0, ElapsedSeconds: 0, Speed: 280},
		{DistanceKm: 0.25, ElapsedSeconds: 3.1, Speed: 300},
	}
	lap := model.Lap{
		Number:  12,
		Team:    "Red Bull Racing",
		LapTime: model.NewNullDuration(80 * time.Second),
		Sectors: [3]model.NullDuration{
			model.NewNullDuration(26500 * time.Millisecond),
			model.NewNullDuration(27 * time.Second),
			{},
		},
	}
	return model.Comparison{
		Request: model.Request{Year: 2024, GrandPrix: "Monza", Session: model.Race, Driver1: code1, Driver2: code2},
		Laps:    [2]model.Lap{lap, lap},
		Traces: [2]model.Trace{
			{Driver: model.Driver{Code: code1}, Points: points},
			{Driver: model.Driver{Code: code2}, Points: points[:1]},
		},
		LapTimes:  [2]string{"1:20.000", "1:22.500"},
		DeltaText: code2 + " +0:02.500",
		Sectors:   []model.SectorBoundary{{Sector: 1, DistanceKm: 0.4}, {Sector: 2, DistanceKm: 0.6}},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, comparison("VER", "HAM")))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{SummarySheet, "VER", "HAM"}, book.GetSheetList())

	title, err := book.GetCellValue(SummarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Fastest Lap Comparison — 2024 Monza Race", title)

	lapTime, err := book.GetCellValue(SummarySheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "1:20.000", lapTime)

	sector3, err := book.GetCellValue(SummarySheet, "G4")
	require.NoError(t, err)
	assert.Equal(t, "-", sector3)

	delta, err := book.GetCellValue(SummarySheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, "HAM +0:02.500", delta)

	rows, err := book.GetRows("VER")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"DistanceKm", "ElapsedSeconds", "Speed"}, rows[0])
	assert.Equal(t, "0.25", rows[2][0])

	hamRows, err := book.GetRows("HAM")
	require.NoError(t, err)
	assert.Len(t, hamRows, 2)
}

func TestWorkbookWithSameDriverTwice(t *testing.T) {
	book, err := Workbook(comparison("VER", "VER"))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{SummarySheet, "VER", "VER (2)"}, book.GetSheetList())
}

func TestFilename(t *testing.T) {
	req := model.Request{Year: 2023, GrandPrix: "Abu Dhabi", Session: model.Qualifying, Driver1: "VER", Driver2: "LEC"}
	assert.Equal(t, "2023_Abu_Dhabi_Q_VER_LEC.xlsx", Filename(req))
}
