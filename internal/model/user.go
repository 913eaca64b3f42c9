// Package model はドメインモデルを定義する。
package model

import "time"

// UserType はユーザーの権限区分を表す。admin と user の2値のみ。
type UserType string

const (
	// UserTypeAdmin は管理者を表す。
	UserTypeAdmin UserType = "admin"
	// UserTypeUser は一般ユーザーを表す。
	UserTypeUser UserType = "user"
)

// Valid はUserTypeが定義済みの値であるかを検証する。
func (t UserType) Valid() bool {
	return t == UserTypeAdmin || t == UserTypeUser
}

// User はサービス利用ユーザーを表す。
// IDはIDプロバイダーが発行するsubject IDをそのまま使用する。
type User struct {
	ID           string
	Email        string
	Name         string
	UserType     UserType
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin は管理者権限を持つかを返す。
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}
