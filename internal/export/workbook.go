package export

import (
	"fmt"
	"strconv"
	"strings"

	"NYCU-SDC/formbricks-challenge/internal/survey"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	SheetSurveys   = "Surveys"
	SheetQuestions = "Questions"
	SheetUsers     = "Users"
	SheetResponses = "Responses"

	defaultSheet = "Sheet1"
)

var headers = map[string][]any{
	SheetSurveys:   {"name", "type", "description", "question_count"},
	SheetQuestions: {"survey", "index", "type", "headline", "required", "choices", "range"},
	SheetUsers:     {"name", "email", "role"},
	SheetResponses: {"survey", "index", "value"},
}

var sheetOrder = []string{SheetSurveys, SheetQuestions, SheetUsers, SheetResponses}

type Exporter struct {
	logger *zap.Logger
}

func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Write stores data as an xlsx workbook at path, one sheet per record kind.
func (e *Exporter) Write(path string, data survey.Data) error {
	f := excelize.NewFile()
	defer func() {
		err := f.Close()
		if err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	err := e.fill(f, data)
	if err != nil {
		return err
	}

	err = f.SaveAs(path)
	if err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	e.logger.Info("Exported generated data",
		zap.String("path", path),
		zap.Int("surveys", len(data.Surveys)),
		zap.Int("users", len(data.Users)),
		zap.Int("responses", len(data.Responses)),
	)
	return nil
}

func (e *Exporter) fill(f *excelize.File, data survey.Data) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for _, sheet := range sheetOrder {
		_, err = f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		row := headers[sheet]
		err = f.SetSheetRow(sheet, "A1", &row)
		if err != nil {
			return err
		}
		err = f.SetRowStyle(sheet, 1, 1, bold)
		if err != nil {
			return err
		}
	}

	err = f.DeleteSheet(defaultSheet)
	if err != nil {
		return err
	}

	surveyRows := make([][]any, 0, len(data.Surveys))
	var questionRows [][]any
	for _, s := range data.Surveys {
		surveyRows = append(surveyRows, []any{s.Name, string(s.Type), s.Description, len(s.Questions)})
		for i, q := range s.Questions {
			var rangeValue any
			if q.Range != nil {
				rangeValue = *q.Range
			}
			questionRows = append(questionRows, []any{s.Name, i, string(q.Type), q.Headline, strconv.FormatBool(q.Required), strings.Join(q.Choices, ", "), rangeValue})
		}
	}

	userRows := make([][]any, 0, len(data.Users))
	for _, u := range data.Users {
		userRows = append(userRows, []any{u.Name, u.Email, u.Role})
	}

	var responseRows [][]any
	for _, r := range data.Responses {
		for i, entry := range r.Responses {
			responseRows = append(responseRows, []any{r.SurveyName, i, entry.Value})
		}
	}

	for sheet, rows := range map[string][][]any{
		SheetSurveys:   surveyRows,
		SheetQuestions: questionRows,
		SheetUsers:     userRows,
		SheetResponses: responseRows,
	} {
		err = writeRows(f, sheet, rows)
		if err != nil {
			return err
		}
	}

	index, err := f.GetSheetIndex(SheetSurveys)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	return nil
}

// writeRows writes rows below the header row.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		err = f.SetSheetRow(sheet, cell, &rows[i])
		if err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
