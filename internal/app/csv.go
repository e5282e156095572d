package app

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"

	"quiz-backend/internal/domain"
)

var requiredColumns = []string{
	"questionText",
	"option1",
	"option2",
	"option3",
	"option4",
	"correctAnswer",
}

// ParseQuestionsCSV reads a header-mapped CSV upload and returns the valid
// question records plus the number of rejected rows.
//
// A structural problem (unreadable CSV, missing required column in the header)
// aborts the whole parse with domain.ErrMalformedCSV. Row-level problems are
// not fatal: a row missing any required value, or whose correctAnswer is not
// byte-equal to one of the four options, is dropped and counted. If nothing
// survives, domain.ErrNoValidQuestions is returned.
func ParseQuestionsCSV(categoryID uuid.UUID, r io.Reader) ([]domain.Question, int, error) {
	reader := csv.NewReader(r)
	// Rows with missing trailing fields are a row-level reject, not a parse error.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrMalformedCSV, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("%w: missing required column %q", domain.ErrMalformedCSV, col)
		}
	}

	var (
		questions []domain.Question
		rejected  int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", domain.ErrMalformedCSV, err)
		}
		if isEmptyRecord(record) {
			continue
		}

		text := field(record, index["questionText"])
		options := []string{
			field(record, index["option1"]),
			field(record, index["option2"]),
			field(record, index["option3"]),
			field(record, index["option4"]),
		}
		answer := field(record, index["correctAnswer"])

		if text == "" || answer == "" || anyEmpty(options) {
			rejected++
			continue
		}
		if !contains(options, answer) {
			rejected++
			continue
		}

		questions = append(questions, domain.Question{
			ID:            uuid.New(),
			CategoryID:    categoryID,
			Text:          text,
			Options:       options,
			CorrectAnswer: answer,
		})
	}

	if len(questions) == 0 {
		return nil, rejected, domain.ErrNoValidQuestions
	}
	return questions, rejected, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}

func anyEmpty(values []string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
