package loader

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first worksheet of a workbook.
func readXLSX(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMissingColumn)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows of %q: %w", sheets[0], err)
	}
	return tableRecords(rows)
}
