package radius

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

const sheetName = "Communes"

// WriteXLSX saves rows to a workbook with the same columns as the TSV report.
// Distance and population are stored as numbers.
func WriteXLSX(path string, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(PadDepartment(r.Department))
		row.AddCell().SetFloatWithFormat(r.DistanceKM, "0.00")
		pop := row.AddCell()
		if r.Population != nil {
			pop.SetInt64(*r.Population)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}
