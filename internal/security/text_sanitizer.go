// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はレシピの名前・本文などユーザー入力のテキストから
// HTMLマークアップを除去し、プレーンテキストとして保存できる形にする。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses はエスケープされたマークアップを剥がす最大反復回数。
const maxSanitizePasses = 5

// TextSanitizerService はプレーンテキストのサニタイズ機能のインターフェース。
type TextSanitizerService interface {
	// Sanitize は全てのHTMLタグを除去したプレーンテキストを返す。
	// 文字参照はデコードされ、前後の空白は取り除かれる。
	// 同一入力に対して常に同一出力を返し、出力を再度渡しても変化しない。
	Sanitize(raw string) string
}

// TextSanitizer はbluemondayのStrictPolicyによるTextSanitizerServiceの実装。
// ポリシーはスレッドセーフで、複数のgoroutineから同時に使用できる。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize は全てのHTMLタグを除去したプレーンテキストを返す。
// StrictPolicyは「&」などをエスケープするため、結果をデコードしてから保存する。
// デコードで新たなタグが現れた場合に備え、変化がなくなるまで繰り返す。
func (s *TextSanitizer) Sanitize(raw string) string {
	text := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(text))
		if next == text {
			break
		}
		text = next
	}
	return strings.TrimSpace(text)
}

var _ TextSanitizerService = (*TextSanitizer)(nil)
