// Package model はドメインモデルを定義する。
package model

import "time"

// Department は部署を表す。名前はシステム全体で一意。
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category は資産カテゴリを表す。名前はシステム全体で一意。
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Asset は登録済みの資産（機材・デバイス等）を表す。
// CreatedByが所有者であり、非管理者のアクセス可否は所有者かどうかのみで決まる。
type Asset struct {
	ID            string
	Name          string
	CategoryID    string
	DepartmentID  string
	DatePurchased time.Time
	Cost          float64
	SerialNumber  *string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
