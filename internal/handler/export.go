package handler

import (
	"bytes"
	"fmt"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName       = "Collection"
)

var sheetHeader = []any{
	"Member", "Phone", "Collection Type", "Due Date", "Units Behind",
	"Min Payment", "Amount Due", "Paid Today", "Balance", "Overdue",
}

// collectionWorkbook renders a collection sheet as an xlsx workbook
func collectionWorkbook(sheet *domain.CollectionSheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &sheetHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, item := range sheet.Items {
		overdue := "No"
		if item.IsOverdue {
			overdue = "Yes"
		}
		row := []any{
			item.MemberName,
			item.Phone,
			string(item.CollectionType),
			utils.FormatDate(item.DueDate),
			item.UnitsBehind,
			item.MinPaymentAmount.InexactFloat64(),
			item.AmountDue.InexactFloat64(),
			item.PaidToday.InexactFloat64(),
			item.BalanceRemaining.InexactFloat64(),
			overdue,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	totalRow := len(sheet.Items) + 3
	totals := []any{"Total", "", "", "", "", "", sheet.TotalToCollect.InexactFloat64(), sheet.TotalCollected.InexactFloat64()}
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, cell, &totals); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}
	if err := f.SetRowStyle(sheetName, totalRow, totalRow, bold); err != nil {
		return nil, fmt.Errorf("apply totals style: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "A", 24); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func workbookName(sheet *domain.CollectionSheet) string {
	return fmt.Sprintf("collection-%s-%s.xlsx", utils.FormatDate(sheet.Date), sheet.Tab)
}
