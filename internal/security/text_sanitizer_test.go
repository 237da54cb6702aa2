package security

import (
	"strings"
	"testing"
)

// TestSanitize_StripsMarkup はタグが除去され本文が残ることを検証する。
func TestSanitize_StripsMarkup(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "鍋に水を入れて沸騰させる",
			want:  "鍋に水を入れて沸騰させる",
		},
		{
			name:  "段落タグが除去される",
			input: "<p>小麦粉を混ぜる</p>",
			want:  "小麦粉を混ぜる",
		},
		{
			name:  "scriptタグは中身ごと除去される",
			input: "焼く<script>alert('xss')</script>",
			want:  "焼く",
		},
		{
			name:  "on*属性付きの要素も除去される",
			input: `<img src="x" onerror="alert(1)">盛り付ける`,
			want:  "盛り付ける",
		},
		{
			name:  "アンパサンドはエスケープされずに残る",
			input: "塩 & こしょう",
			want:  "塩 & こしょう",
		},
		{
			name:  "前後の空白が除去される",
			input: "  煮込む \n",
			want:  "煮込む",
		},
		{
			name:  "改行は保持される",
			input: "切る\n炒める",
			want:  "切る\n炒める",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_EscapedMarkup はエスケープされたタグがデコード後に残らないことを検証する。
func TestSanitize_EscapedMarkup(t *testing.T) {
	sanitizer := NewTextSanitizer()

	got := sanitizer.Sanitize("&lt;script&gt;alert(1)&lt;/script&gt;完成")
	if strings.Contains(got, "<script") {
		t.Errorf("Sanitize left a script tag: %q", got)
	}
	if !strings.Contains(got, "完成") {
		t.Errorf("Sanitize dropped text: %q", got)
	}
}

// TestSanitize_Idempotent は出力を再度サニタイズしても変化しないことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	inputs := []string{
		"<b>強火</b>で3分 & 弱火で5分",
		"&amp;lt;p&amp;gt;二重エスケープ",
		"",
	}
	for _, in := range inputs {
		first := sanitizer.Sanitize(in)
		second := sanitizer.Sanitize(first)
		if first != second {
			t.Errorf("not idempotent for %q: %q -> %q", in, first, second)
		}
	}
}

func TestTextSanitizerInterface(t *testing.T) {
	var _ TextSanitizerService = NewTextSanitizer()
}
