// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, listing, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInvalidEmail     = "INVALID_EMAIL"
	ErrCodeInvalidPassword  = "INVALID_PASSWORD"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidPrice     = "INVALID_PRICE"
	ErrCodeInvalidCategory  = "INVALID_CATEGORY"
	ErrCodeFieldTooLong     = "FIELD_TOO_LONG"
	ErrCodeInvalidImageURL  = "INVALID_IMAGE_URL"
	ErrCodeListingNotFound  = "LISTING_NOT_FOUND"
	ErrCodeNotListingSeller = "NOT_LISTING_SELLER"
	ErrCodeInvalidSort      = "INVALID_SORT"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は管理者権限がない場合のエラーを生成する。
// 認証済みの一般ユーザーにも返されるため、ログイン画面ではなくホーム画面への誘導とする。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作には管理者権限が必要です。",
		Category: "auth",
		Action:   "ホーム画面に戻ってください。",
	}
}

// NewInvalidEmailError は大学ドメイン以外のメールアドレスでのログイン試行エラーを生成する。
func NewInvalidEmailError(domain string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  fmt.Sprintf("大学の公式メールアドレス（@%s）を使用してください。", domain),
		Category: "validation",
		Action:   fmt.Sprintf("@%s で終わるメールアドレスを入力してください。", domain),
	}
}

// NewInvalidPasswordError はパスワード長不足エラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "パスワードは6文字以上で入力してください。",
		Category: "validation",
		Action:   "6文字以上のパスワードを入力してください。",
	}
}

// NewMissingFieldError は必須フィールド未入力エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("%s は必須項目です。", field),
		Category: "validation",
		Action:   "すべての必須項目を入力してください。",
	}
}

// NewInvalidPriceError は価格が不正な場合のエラーを生成する。
func NewInvalidPriceError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPrice,
		Message:  "価格は1以上の数値で入力してください。",
		Category: "validation",
		Action:   "有効な価格を入力してください。",
	}
}

// NewInvalidCategoryError は未定義カテゴリ指定エラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("無効なカテゴリです: %s", category),
		Category: "validation",
		Action:   "カテゴリ一覧から選択してください。",
	}
}

// NewFieldTooLongError はフィールドの文字数超過エラーを生成する。
func NewFieldTooLongError(field string, max int) *APIError {
	return &APIError{
		Code:     ErrCodeFieldTooLong,
		Message:  fmt.Sprintf("%s は%d文字以内で入力してください。", field, max),
		Category: "validation",
		Action:   "入力内容を短くしてください。",
	}
}

// NewInvalidImageURLError は画像URLが不正な場合のエラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("無効な画像URLです: %s", reason),
		Category: "validation",
		Action:   "公開されている画像のURL（http:// または https://）を入力してください。",
	}
}

// NewListingNotFoundError は出品未検出エラーを生成する。
// 商品詳細画面は例外ではなく「見つかりません」状態としてこのエラーを描画する。
func NewListingNotFoundError(listingID string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("指定された出品が見つかりません: %s", listingID),
		Category: "listing",
		Action:   "出品一覧から商品を選び直してください。",
	}
}

// NewNotListingSellerError は出品者本人以外による変更操作のエラーを生成する。
func NewNotListingSellerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotListingSeller,
		Message:  "自分の出品以外は変更できません。",
		Category: "listing",
		Action:   "マイ出品一覧から対象の商品を選択してください。",
	}
}

// NewInvalidSortError は無効な並び順指定エラーを生成する。
func NewInvalidSortError(sort string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSort,
		Message:  fmt.Sprintf("無効な並び順です: %s", sort),
		Category: "validation",
		Action:   "並び順には recent、oldest、price-high、price-low のいずれかを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
