package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"billing-backend/internal/storage"
)

type DetailSource interface {
	GetDetail(ctx context.Context, workOrderID int64) (*storage.AggregationDetail, error)
}

// ExcelService renders one work order's billing statement as an xlsx sheet.
type ExcelService struct {
	source DetailSource
}

func NewExcelService(source DetailSource) *ExcelService {
	return &ExcelService{source: source}
}

func (g *ExcelService) GenerateStatement(ctx context.Context, workOrderID int64) ([]byte, error) {
	const op = "service.report.GenerateStatement"

	detail, err := g.source.GetDetail(ctx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch detail: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "集計表"
	f.SetSheetName("Sheet1", sheet)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("%s: style: %w", op, err)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Work order %s", detail.OrderNum))
	f.SetCellValue(sheet, "A2", detail.CustomerName)
	f.SetCellValue(sheet, "B2", detail.ProjectName)
	f.SetCellValue(sheet, "C2", detail.Status)
	f.SetCellStyle(sheet, "A1", "A1", bold)

	row := 4
	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row),
		&[]interface{}{"Activity", "Hours", "Cost rate", "Bill rate", "Cost", "Bill", "Adjustment"})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), bold)
	row++

	var costTotal, billTotal, adjustmentTotal float64
	for _, a := range detail.Activities {
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			a.ActivityName, a.Hours, a.CostRate, a.BillRate, a.CostAmount, a.BillAmount, a.Adjustment,
		})
		costTotal += a.CostAmount
		billTotal += a.BillAmount
		adjustmentTotal += a.Adjustment
		row++
	}

	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row),
		&[]interface{}{"Labor subtotal", detail.TotalHours, "", "", costTotal, billTotal, adjustmentTotal})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), bold)
	row += 2

	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row),
		&[]interface{}{"Expense", "Cost unit", "Qty", "Cost total", "Bill total", "Memo"})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), bold)
	row++

	var materialTotal float64
	for _, e := range detail.Expenses {
		memo := ""
		if e.Memo != nil {
			memo = *e.Memo
		}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			e.Category, e.CostUnitPrice, e.CostQuantity, e.CostTotal, e.BillTotal, memo,
		})
		materialTotal += e.BillTotal
		row++
	}

	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row),
		&[]interface{}{"Expense subtotal", "", "", "", materialTotal})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), bold)
	row += 2

	if len(detail.Adjustments) > 0 {
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", row),
			&[]interface{}{"Adjustment", "Amount", "By", "At"})
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), bold)
		row++
		for _, a := range detail.Adjustments {
			f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
				a.Reason, a.Amount, a.CreatedBy, a.CreatedAt.Format("2006-01-02 15:04"),
			})
			row++
		}
		row++
	}

	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row),
		&[]interface{}{"Total (labor + expenses)", billTotal + materialTotal})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), bold)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write buffer: %w", op, err)
	}

	return buf.Bytes(), nil
}
