// Package model はドメインモデルを定義する。
package model

import "time"

const (
	// PasswordMinLength はログイン時に要求するパスワードの最小文字数。
	PasswordMinLength = 6

	// DefaultPhone は新規ユーザーに設定されるプレースホルダーの電話番号。
	DefaultPhone = "+91 98765 43210"
)

// User はログイン時にメールアドレスから構築されるユーザーを表す。
// 永続化はされず、セッションのライフタイムの間だけプロセスメモリに存在する。
// Name/Phone/Instagramのみプロフィール編集で変更可能。
type User struct {
	ID                 string
	Email              string
	Name               string
	Phone              string
	Avatar             string
	Instagram          string
	RegistrationNumber string
	IsAdmin            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Session はユーザーのログインセッションを表す。
// IsAdminはログイン時のメールアドレス判定の結果を保持し、
// 管理者専用ルートのゲートに使用される。
type Session struct {
	ID        string
	UserID    string
	IsAdmin   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ProfilePatch はプロフィールの部分更新を表す。nilフィールドは変更しない。
// 更新可能なのはName/Phone/Instagramのみ。メールアドレスと学籍番号は変更不可。
type ProfilePatch struct {
	Name      *string
	Phone     *string
	Instagram *string
}
