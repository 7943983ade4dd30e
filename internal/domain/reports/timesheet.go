package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"peopledesk/internal/domain/worktime"
)

// TimesheetRow is one exported work session.
type TimesheetRow struct {
	Date          string
	Start         string
	End           string
	WorkedMinutes int
	PauseMinutes  int
	Overtime      int
	Status        string
}

func BuildTimesheet(sessions []worktime.Session) []TimesheetRow {
	rows := make([]TimesheetRow, 0, len(sessions))
	for i := range sessions {
		session := &sessions[i]
		end := ""
		reference := session.StartTime
		if session.EndTime != nil {
			end = session.EndTime.Format("15:04")
			reference = *session.EndTime
		}
		rows = append(rows, TimesheetRow{
			Date:          session.StartTime.Format("2006-01-02"),
			Start:         session.StartTime.Format("15:04"),
			End:           end,
			WorkedMinutes: int(worktime.Elapsed(session, reference).Minutes()),
			PauseMinutes:  session.TotalPauseMinutes,
			Overtime:      session.OvertimeMinutes,
			Status:        string(session.Status),
		})
	}
	return rows
}

// TimesheetPDF renders the rows as a printable timesheet.
func TimesheetPDF(employeeName string, from, to time.Time, rows []TimesheetRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Timesheet")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	headers := []struct {
		label string
		width float64
	}{
		{"Date", 26}, {"Start", 20}, {"End", 20}, {"Worked (min)", 30},
		{"Breaks (min)", 30}, {"Overtime (min)", 32}, {"Status", 28},
	}
	for _, h := range headers {
		pdf.CellFormat(h.width, 8, h.label, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(26, 7, row.Date, "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 7, row.Start, "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 7, row.End, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", row.WorkedMinutes), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", row.PauseMinutes), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 7, fmt.Sprintf("%d", row.Overtime), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, row.Status, "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TimesheetXLSX renders the rows as a spreadsheet.
func TimesheetXLSX(employeeName string, rows []TimesheetRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Timesheet"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := []any{"Date", "Start", "End", "Worked (min)", "Breaks (min)", "Overtime (min)", "Status"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "I1", employeeName); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{row.Date, row.Start, row.End, row.WorkedMinutes, row.PauseMinutes, row.Overtime, row.Status}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
