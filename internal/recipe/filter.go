package recipe

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/foodgram/internal/model"
)

// ParseFilter はクエリパラメータからレシピ一覧の絞り込み条件を組み立てる。
//
//   - author: 著者ID。数値でない値や未指定は絞り込みなし。
//   - tags: タグのslug。複数指定（tags=a&tags=b またはカンマ区切り）はORで扱う。
//   - is_favorited, is_in_shopping_cart: "1" または "true" のとき有効。
//
// 閲覧者による条件の除外はここでは行わない。
func ParseFilter(values url.Values) model.RecipeFilter {
	var filter model.RecipeFilter

	if raw := strings.TrimSpace(values.Get("author")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.AuthorID = &id
		}
	}

	seen := make(map[string]bool)
	for _, v := range values["tags"] {
		for _, slug := range strings.Split(v, ",") {
			slug = strings.TrimSpace(slug)
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true
			filter.TagSlugs = append(filter.TagSlugs, slug)
		}
	}

	filter.FavoritedOnly = parseFlag(values.Get("is_favorited"))
	filter.InCartOnly = parseFlag(values.Get("is_in_shopping_cart"))
	return filter
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true
	}
	return false
}
