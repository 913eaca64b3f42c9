// Package model はドメインモデルを定義する。
package model

import "time"

// WarrantyStatus は保証の有効期限ステータスを表す。
// 保証レコード自体は外部保証サービスが保持し、ステータスは表示用の導出値。
type WarrantyStatus string

const (
	// WarrantyStatusActive は保証が有効な状態。
	WarrantyStatusActive WarrantyStatus = "active"
	// WarrantyStatusExpiringSoon は残り30日未満の状態。
	WarrantyStatusExpiringSoon WarrantyStatus = "expiring_soon"
	// WarrantyStatusExpired は保証が失効した状態。
	WarrantyStatusExpired WarrantyStatus = "expired"
)

// WarrantyDevice は外部保証サービスが保持するデバイスレコードを表す。
type WarrantyDevice struct {
	ID                   string
	ProductName          string
	SerialNumber         string
	OwnerName            string
	OwnerEmail           string
	Manufacturer         string
	PurchaseDate         time.Time
	RegistrationDate     time.Time
	WarrantyPeriodMonths int
}

// WarrantyRegistration は保証登録時に外部サービスへ送信する内容を表す。
type WarrantyRegistration struct {
	ProductName          string
	SerialNumber         string
	Manufacturer         string
	OwnerName            string
	OwnerEmail           string
	CategoryName         string
	DepartmentName       string
	PurchaseDate         time.Time
	Cost                 float64
	WarrantyPeriodMonths int
}
