// Package report renders transfer documents for download.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

// SheetName is the worksheet holding the transfer slip.
const SheetName = "ໃບໂອນ"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName returns the download name for a transfer slip.
func FileName(t *model.Transfer) string {
	return fmt.Sprintf("transfer_%s.xlsx", t.TransferNo)
}

var lineHeaders = []string{"#", "ລະຫັດສິນຄ້າ", "ຊື່ສິນຄ້າ", "ຫົວໜ່ວຍ", "ຈຳນວນ", "ຈາກ", "ໄປ"}

// WriteTransferSlip writes a one-sheet workbook with the header block,
// the line table and the total quantity.
func WriteTransferSlip(w io.Writer, t *model.Transfer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	header := [][2]string{
		{"ເລກທີ", t.TransferNo},
		{"ວັນທີ", t.DocDateTime},
		{"ຜູ້ສ້າງ", joinName(t.Creator, t.CreatorName)},
		{"ຈາກສາງ", joinName(t.WhFrom, t.WhFromName)},
		{"ຈາກບ່ອນເກັບ", joinName(t.LocationFrom, t.LocationFromName)},
		{"ໄປສາງ", joinName(t.WhTo, t.WhToName)},
		{"ໄປບ່ອນເກັບ", joinName(t.LocationTo, t.LocationToName)},
		{"ສະຖານະ", t.StatusName},
	}
	for i, kv := range header {
		row := i + 1
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), kv[0])
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), kv[1])
	}
	f.SetCellStyle(SheetName, "A1", fmt.Sprintf("A%d", len(header)), bold)

	tableRow := len(header) + 2
	for i, h := range lineHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		f.SetCellValue(SheetName, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(lineHeaders), tableRow)
	f.SetCellStyle(SheetName, fmt.Sprintf("A%d", tableRow), last, bold)

	total := decimal.Zero
	row := tableRow
	for i, d := range t.Details {
		row = tableRow + i + 1
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), d.ItemCode)
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), d.ItemName)
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), d.UnitCode)
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), d.Quantity.InexactFloat64())
		f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), d.WhCode+"/"+d.ShelfCode)
		f.SetCellValue(SheetName, fmt.Sprintf("G%d", row), d.WhCode2+"/"+d.ShelfCode2)
		total = total.Add(d.Quantity)
	}

	totalRow := row + 1
	f.SetCellValue(SheetName, fmt.Sprintf("D%d", totalRow), "ລວມ")
	f.SetCellValue(SheetName, fmt.Sprintf("E%d", totalRow), total.InexactFloat64())
	f.SetCellStyle(SheetName, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("E%d", totalRow), bold)

	f.SetColWidth(SheetName, "A", "A", 14)
	f.SetColWidth(SheetName, "B", "B", 20)
	f.SetColWidth(SheetName, "C", "C", 36)
	f.SetColWidth(SheetName, "D", "E", 10)
	f.SetColWidth(SheetName, "F", "G", 16)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func joinName(code, name string) string {
	if name == "" || name == code {
		return code
	}
	return code + " " + name
}
