// Package importer bulk-loads flashcards from spreadsheets.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/tutor/internal/spacedrep"
)

// Deck is the part of the flashcard scheduler an import writes to.
type Deck interface {
	CreateCard(ctx context.Context, topic, question, answer string, tags []string) *spacedrep.Flashcard
	Cards(topic string) []*spacedrep.Flashcard
}

// Config describes where the cards live in the file.
type Config struct {
	FilePath string
	Topic    string

	// Column letters. Tags hold a comma-separated list.
	QuestionColumn string
	AnswerColumn   string
	TagsColumn     string

	// SheetName selects the worksheet. Empty means the first sheet.
	SheetName  string
	SkipHeader bool
}

// DefaultConfig returns the A/B/C column layout with a header row.
func DefaultConfig(path, topic string) Config {
	return Config{
		FilePath:       path,
		Topic:          topic,
		QuestionColumn: "A",
		AnswerColumn:   "B",
		TagsColumn:     "C",
		SkipHeader:     true,
	}
}

// Result summarises one import.
type Result struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// Import reads cards from an .xlsx or .csv file into deck. Rows with an
// empty question or answer are reported in Errors; rows whose question
// already exists in the topic are skipped.
func Import(ctx context.Context, deck Deck, cfg Config) (*Result, error) {
	if cfg.Topic == "" {
		return nil, errors.New("import: topic is required")
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(cfg.FilePath)) {
	case ".csv":
		rows, err = readCSV(cfg.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	default:
		return nil, fmt.Errorf("import: unsupported file type %q", filepath.Ext(cfg.FilePath))
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, c := range deck.Cards(cfg.Topic) {
		seen[normalize(c.Question)] = true
	}

	qCol := columnToIndex(cfg.QuestionColumn)
	aCol := columnToIndex(cfg.AnswerColumn)
	tCol := -1
	if cfg.TagsColumn != "" {
		tCol = columnToIndex(cfg.TagsColumn)
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		if i == 0 && cfg.SkipHeader {
			continue
		}
		if isBlank(row) {
			continue
		}
		rowNum := i + 1
		result.Processed++

		question := strings.TrimSpace(cell(row, qCol))
		answer := strings.TrimSpace(cell(row, aCol))
		if question == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: question cannot be empty", rowNum))
			continue
		}
		if answer == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: answer cannot be empty", rowNum))
			continue
		}
		if seen[normalize(question)] {
			result.Skipped++
			continue
		}

		deck.CreateCard(ctx, cfg.Topic, question, answer, splitTags(cell(row, tCol)))
		seen[normalize(question)] = true
		result.Created++
	}

	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows from %s: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// columnToIndex converts a column letter ("A", "AB") to a zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
