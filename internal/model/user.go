// Package model はドメインモデルを定義する。
package model

import "time"

// AnonymousUserID は未認証の閲覧者を表すユーザーID。
// 閲覧者IDを受け取る関数はこの値を匿名として扱う。
const AnonymousUserID int64 = 0

// User はサービス利用ユーザーを表す。
type User struct {
	ID        int64
	Email     string
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// UserProfile はユーザーと閲覧者から見たフォロー状態を結合したモデル。
type UserProfile struct {
	User
	IsSubscribed bool
}

// Session はユーザーのログインセッションを表す。
// セッションの発行は外部の認証基盤が行い、本サービスは参照のみ行う。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
