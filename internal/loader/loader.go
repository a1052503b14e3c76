// Package loader reads question sheets into strongly typed questions.
//
// All defaulting and validation happens here, so the scoring core only ever
// sees complete questions.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// Column names of the question sheet.
const (
	ColQuestion  = "Question"
	ColAnswer    = "Answer"
	ColType      = "Type"
	ColPoints    = "Points"
	ColTimeLimit = "Time_lmit"
	ColYear      = "Year"
	ColKeywords  = "Keywords"
	ColID        = "ID"
)

// Format is a supported question source encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported question source format")
	ErrMissingColumn     = errors.New("missing required column")
)

// questionNamespace derives stable IDs from question text so re-imports upsert.
var questionNamespace = uuid.MustParse("6f1c3c8e-8d0b-4b44-9a3c-2f0e5b7d9a11")

// Options control defaulting of missing numeric fields.
type Options struct {
	DefaultPoints    int
	DefaultTimeLimit int
	DefaultYear      int
}

// DefaultOptions fills missing fields with 240 seconds, 3 points and year 0.
var DefaultOptions = Options{DefaultPoints: 3, DefaultTimeLimit: 240, DefaultYear: 0}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the question file at path.
func Load(path string, opts Options) ([]model.Question, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question source: %w", err)
	}
	defer f.Close()

	return Read(f, format, opts)
}

// Read decodes questions from r in the given format.
func Read(r io.Reader, format Format, opts Options) ([]model.Question, error) {
	var (
		records []map[string]string
		err     error
	)

	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	case FormatJSON:
		records, err = readJSON(r)
	case FormatYAML:
		records, err = readYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}

	return toQuestions(records, opts), nil
}

// canonicalColumn maps a header cell onto a known column name.
func canonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	switch h {
	case "question":
		return ColQuestion
	case "answer":
		return ColAnswer
	case "type":
		return ColType
	case "points":
		return ColPoints
	case "time_lmit", "time_limit":
		return ColTimeLimit
	case "year":
		return ColYear
	case "keywords":
		return ColKeywords
	case "id":
		return ColID
	default:
		return strings.TrimSpace(header)
	}
}

// requiredColumns must appear in every source. Numeric columns may be
// absent and take their defaults.
var requiredColumns = []string{ColQuestion, ColAnswer, ColType}

func requireColumns(present map[string]bool) error {
	for _, col := range requiredColumns {
		if !present[col] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return nil
}

// tableRecords turns a header row plus data rows into keyed records.
func tableRecords(rows [][]string) ([]map[string]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrMissingColumn)
	}

	header := make([]string, len(rows[0]))
	present := make(map[string]bool, len(header))
	for i, h := range rows[0] {
		header[i] = canonicalColumn(strings.TrimPrefix(h, "\uFEFF"))
		present[header[i]] = true
	}
	if err := requireColumns(present); err != nil {
		return nil, err
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func toQuestions(records []map[string]string, opts Options) []model.Question {
	questions := make([]model.Question, 0, len(records))

	for _, rec := range records {
		text := strings.TrimSpace(rec[ColQuestion])
		answer := strings.TrimSpace(rec[ColAnswer])
		if text == "" || answer == "" {
			continue
		}

		label := strings.TrimSpace(rec[ColType])
		q := model.Question{
			ID:               questionID(rec[ColID], text),
			Text:             text,
			Answer:           answer,
			Type:             model.ParseQuestionType(label),
			TypeLabel:        label,
			Points:           positiveOr(rec[ColPoints], opts.DefaultPoints),
			TimeLimitSeconds: positiveOr(rec[ColTimeLimit], opts.DefaultTimeLimit),
			Year:             intOr(rec[ColYear], opts.DefaultYear),
			Keywords:         strings.TrimSpace(rec[ColKeywords]),
		}
		questions = append(questions, q)
	}

	return questions
}

func questionID(raw, text string) uuid.UUID {
	if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
		return id
	}
	return uuid.NewSHA1(questionNamespace, []byte(text))
}

// intOr parses integers and integral floats ("3.0"), else returns fallback.
func intOr(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return fallback
}

func positiveOr(raw string, fallback int) int {
	if n := intOr(raw, fallback); n > 0 {
		return n
	}
	return fallback
}
