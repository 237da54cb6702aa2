package shoplist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Format はダウンロード形式。
type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
)

// ParseFormat はクエリパラメータの値を形式に変換する。空の場合はテキスト。
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, true
	case FormatCSV:
		return FormatCSV, true
	}
	return "", false
}

// ContentType はレスポンスのContent-Typeを返す。
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Filename は添付ファイル名を返す。
func (f Format) Filename() string {
	return "shopping_list." + string(f)
}

var header = []string{"name", "unit", "amount"}

// RenderText はヘッダ行と集計行を「, 」区切りで1行ずつ出力する。
func RenderText(lines []Line) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(header, ", "))
	b.WriteByte('\n')
	for _, l := range lines {
		fmt.Fprintf(&b, "%s, %s, %d\n", l.Name, l.MeasurementUnit, l.Amount)
	}
	return []byte(b.String())
}

// RenderCSV はRFC 4180形式で出力する。列はテキスト形式と同じ。
func RenderCSV(lines []Line) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, l := range lines {
		if err := w.Write([]string{l.Name, l.MeasurementUnit, strconv.FormatInt(l.Amount, 10)}); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Render は指定形式で出力する。
func Render(lines []Line, format Format) ([]byte, error) {
	if format == FormatCSV {
		return RenderCSV(lines)
	}
	return RenderText(lines), nil
}
