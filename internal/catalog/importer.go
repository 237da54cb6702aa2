package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hitoshi/foodgram/internal/model"
)

// Format は一括登録ファイルの形式。
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat は拡張子から形式を判定できない場合のエラー。
var ErrUnsupportedFormat = errors.New("unsupported ingredient file format")

// FormatFromPath はファイル拡張子から形式を判定する。
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ParseIngredients はCSVまたはJSONから食材一覧を読み込む。
//
// CSVは1行が「名前,単位」。先頭行が name,measurement_unit の場合はヘッダとして読み飛ばす。
// JSONは {"name","measurement_unit"} の配列。
// 空行は無視し、名前または単位が空の行はエラーとする。
func ParseIngredients(r io.Reader, format Format) ([]model.Ingredient, error) {
	var records []ingredientRecord
	var err error
	switch format {
	case FormatCSV:
		records, err = readCSVRecords(r)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&records)
		if err != nil {
			err = fmt.Errorf("failed to decode ingredient json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	ingredients := make([]model.Ingredient, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		unit := strings.TrimSpace(rec.MeasurementUnit)
		if name == "" && unit == "" {
			continue
		}
		if name == "" || unit == "" {
			return nil, fmt.Errorf("ingredient record %d: name and measurement_unit are required", i+1)
		}
		ingredients = append(ingredients, model.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return ingredients, nil
}

func readCSVRecords(r io.Reader) ([]ingredientRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ingredient csv: %w", err)
	}
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		rows = rows[1:]
	}

	records := make([]ingredientRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ingredientRecord{Name: row[0], MeasurementUnit: row[1]})
	}
	return records, nil
}

func isHeaderRow(row []string) bool {
	return strings.EqualFold(strings.TrimSpace(row[0]), "name") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "measurement_unit")
}

// ImportFile はファイルから食材を読み込んで一括登録する。
// 戻り値は読み込んだ件数と新規登録された件数。
func (s *Service) ImportFile(ctx context.Context, path string) (total, inserted int, err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open ingredient file: %w", err)
	}
	defer f.Close()

	ingredients, err := ParseIngredients(f, format)
	if err != nil {
		return 0, 0, err
	}
	inserted, err = s.Import(ctx, ingredients)
	if err != nil {
		return len(ingredients), 0, err
	}
	return len(ingredients), inserted, nil
}
