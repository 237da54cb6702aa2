// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, recipe, subscription, system
	Action   string // ユーザー向け対処方法
	Field    string // バリデーションエラーの対象フィールド（該当する場合のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodePermissionDenied     = "PERMISSION_DENIED"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeRecipeNotFound       = "RECIPE_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeIngredientNotFound   = "INGREDIENT_NOT_FOUND"
	ErrCodeTagNotFound          = "TAG_NOT_FOUND"
	ErrCodeShortLinkNotFound    = "SHORT_LINK_NOT_FOUND"
	ErrCodeAlreadyExists        = "ALREADY_EXISTS"
	ErrCodeNotInList            = "NOT_IN_LIST"
	ErrCodeSubscription         = "SUBSCRIPTION_ERROR"
	ErrCodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
)

// バリデーション対象のフィールド名
const (
	FieldIngredients = "ingredients"
	FieldTags        = "tags"
	FieldImage       = "image"
	FieldCookingTime = "cooking_time"
	FieldName        = "name"
	FieldText        = "text"
)

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
func NewValidationError(field, message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
		Field:    field,
	}
}

// NewPermissionDeniedError は所有者以外による変更操作のエラーを生成する。
// リソースの存在は隠さない。
func NewPermissionDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分が作成したレシピのみ変更できます。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidRequestError はリクエスト形式の不備を表すエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しい形式でリクエストしてください。",
	}
}

// NewRecipeNotFoundError はレシピ未検出エラーを生成する。
func NewRecipeNotFoundError(recipeID int64) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("指定されたレシピが見つかりません: %d", recipeID),
		Category: "recipe",
		Action:   "レシピIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewIngredientNotFoundError は食材未検出エラーを生成する。
func NewIngredientNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeIngredientNotFound,
		Message:  fmt.Sprintf("指定された食材が見つかりません: %d", id),
		Category: "recipe",
		Action:   "食材IDを確認してください。",
	}
}

// NewTagNotFoundError はタグ未検出エラーを生成する。
func NewTagNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeTagNotFound,
		Message:  fmt.Sprintf("指定されたタグが見つかりません: %d", id),
		Category: "recipe",
		Action:   "タグIDを確認してください。",
	}
}

// NewShortLinkNotFoundError は短縮リンクが解決できない場合のエラーを生成する。
func NewShortLinkNotFoundError(code string) *APIError {
	return &APIError{
		Code:     ErrCodeShortLinkNotFound,
		Message:  fmt.Sprintf("短縮リンクが見つかりません: %s", code),
		Category: "recipe",
		Action:   "リンクを確認してください。",
	}
}

// NewAlreadyExistsError はお気に入り・買い物リストへの重複追加エラーを生成する。
func NewAlreadyExistsError(kind MembershipKind) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyExists,
		Message:  fmt.Sprintf("レシピは既に%sに追加されています。", kind.Label()),
		Category: "recipe",
		Action:   "一覧から該当レシピを確認してください。",
	}
}

// NewNotInListError は未追加のレシピを削除しようとした場合のエラーを生成する。
func NewNotInListError(kind MembershipKind) *APIError {
	return &APIError{
		Code:     ErrCodeNotInList,
		Message:  fmt.Sprintf("レシピは%sに追加されていません。", kind.Label()),
		Category: "recipe",
		Action:   "一覧から該当レシピを確認してください。",
	}
}

// NewSubscriptionError は自分自身へのフォロー、または重複フォローのエラーを生成する。
// 呼び出し側の対処は同一のため、同じコードで報告する。
func NewSubscriptionError() *APIError {
	return &APIError{
		Code:     ErrCodeSubscription,
		Message:  "自分自身をフォローすることはできません。または既にフォロー済みです。",
		Category: "subscription",
		Action:   "フォロー一覧を確認してください。",
	}
}

// NewSubscriptionNotFoundError はフォローしていない著者の解除エラーを生成する。
func NewSubscriptionNotFoundError(authorID int64) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionNotFound,
		Message:  fmt.Sprintf("このユーザーをフォローしていません: %d", authorID),
		Category: "subscription",
		Action:   "フォロー一覧を確認してください。",
	}
}

// AsAPIError はerrチェーンからAPIErrorを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode はerrが指定コードのAPIErrorかどうかを判定する。
func HasCode(err error, code string) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

// IsValidationError はerrが指定フィールドのバリデーションエラーかどうかを判定する。
// fieldが空の場合はフィールドを問わない。
func IsValidationError(err error, field string) bool {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Code != ErrCodeValidation {
		return false
	}
	return field == "" || apiErr.Field == field
}

// IsConflict はerrが重複追加または未追加削除のエラーかどうかを判定する。
func IsConflict(err error) bool {
	return HasCode(err, ErrCodeAlreadyExists) || HasCode(err, ErrCodeNotInList)
}

// IsNotFound はerrがリソース未検出のエラーかどうかを判定する。
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case ErrCodeRecipeNotFound, ErrCodeUserNotFound, ErrCodeIngredientNotFound,
		ErrCodeTagNotFound, ErrCodeShortLinkNotFound:
		return true
	}
	return false
}
