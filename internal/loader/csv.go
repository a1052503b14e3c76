package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

func readCSV(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return tableRecords(rows)
}

// WriteCSV writes questions with their keyword column, in the same column
// layout Load accepts.
func WriteCSV(w io.Writer, questions []model.Question) error {
	cw := csv.NewWriter(w)

	header := []string{ColID, ColQuestion, ColAnswer, ColType, ColPoints, ColTimeLimit, ColYear, ColKeywords}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, q := range questions {
		row := []string{
			q.ID.String(),
			q.Text,
			q.Answer,
			sheetLabel(q),
			strconv.Itoa(q.Points),
			strconv.Itoa(q.TimeLimitSeconds),
			strconv.Itoa(q.Year),
			q.Keywords,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// sheetLabel keeps the label a question was imported with.
func sheetLabel(q model.Question) string {
	if q.TypeLabel != "" {
		return q.TypeLabel
	}
	return q.Type.Label()
}
