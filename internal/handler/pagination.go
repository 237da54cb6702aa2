package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/foodgram/internal/model"
)

// Paginator はページ番号方式のページネーションを扱う。
type Paginator struct {
	// BaseURL はnext/previousの絶対URLを組み立てる際のスキームとホスト。
	BaseURL     string
	DefaultSize int
	MaxSize     int
}

// pageResponse は一覧APIの共通エンベロープ。
type pageResponse struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// Parse はクエリパラメータ page と limit を読み取る。
// 不正な値や範囲外の値は既定値または上限に丸める。
func (p Paginator) Parse(values url.Values) model.Page {
	page := model.Page{Number: 1, Limit: p.DefaultSize}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n > 0 {
		page.Limit = n
	}
	if p.MaxSize > 0 && page.Limit > p.MaxSize {
		page.Limit = p.MaxSize
	}
	if last := page.MaxNumber(); page.Number > last {
		page.Number = last
	}
	return page
}

// Envelope は総件数と現在ページからレスポンスを組み立てる。
func (p Paginator) Envelope(r *http.Request, count int, page model.Page, results interface{}) pageResponse {
	resp := pageResponse{Count: count, Results: results}
	if page.Offset()+page.Limit < count {
		next := p.pageURL(r, page.Number+1)
		resp.Next = &next
	}
	if page.Number > 1 {
		prev := p.pageURL(r, page.Number-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL は現在のリクエストのクエリを保ったまま page だけを差し替えたURLを返す。
// 1ページ目は page パラメータを付けない。
func (p Paginator) pageURL(r *http.Request, number int) string {
	q := r.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u := p.BaseURL + r.URL.Path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// parseRecipesLimit はクエリパラメータ recipes_limit を読み取る。
// 未指定または正でない値の場合は0（既定値を使う）を返す。
func parseRecipesLimit(values url.Values) int {
	n, err := strconv.Atoi(values.Get("recipes_limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
