// Package shoplist は買い物リストの食材を集計し、ダウンロード用の形式に変換する。
package shoplist

import (
	"sort"

	"github.com/hitoshi/foodgram/internal/model"
)

// Line は集計後の1行。同じ (Name, MeasurementUnit) の分量を合計したもの。
type Line struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

type lineKey struct {
	name string
	unit string
}

// Aggregate は食材行を (名前, 単位) でまとめて分量を合計し、名前→単位の昇順で返す。
// 食材IDではなく名前と単位の組でまとめるため、同名同単位の別行も1行になる。
// 入力が空の場合は空スライスを返す。
func Aggregate(rows []model.CartIngredientRow) []Line {
	totals := make(map[lineKey]int64, len(rows))
	for _, row := range rows {
		totals[lineKey{name: row.Name, unit: row.MeasurementUnit}] += int64(row.Amount)
	}

	lines := make([]Line, 0, len(totals))
	for key, amount := range totals {
		lines = append(lines, Line{Name: key.name, MeasurementUnit: key.unit, Amount: amount})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].MeasurementUnit < lines[j].MeasurementUnit
	})
	return lines
}
