// Package warranty は外部保証サービスへの登録プロキシと保証状況の導出を提供する。
// 保証レコードは外部サービスが保持し、本アプリケーションでは永続化しない。
package warranty

import (
	"time"

	"github.com/hitoshi/assetman/internal/model"
)

// Classify は登録日と保証期間（月数）から保証ステータスと残日数を導出する。
// 失効日も「まもなく失効」の閾値も暦月で計算する（30日近似ではなくAddDateによる月加算）。
// 失効日を過ぎていればexpired、失効1ヶ月前以降ならexpiring_soon、それ以外はactive。
// 最終月が31日ある月でも、登録から期間−1ヶ月経過した時点で必ずexpiring_soonになる。
func Classify(registrationDate time.Time, periodMonths int, now time.Time) (model.WarrantyStatus, int) {
	expiry := registrationDate.AddDate(0, periodMonths, 0)
	remaining := expiry.Sub(now)
	days := int(remaining.Hours() / 24)

	switch {
	case remaining < 0:
		return model.WarrantyStatusExpired, days
	case !now.Before(expiry.AddDate(0, -1, 0)):
		return model.WarrantyStatusExpiringSoon, days
	default:
		return model.WarrantyStatusActive, days
	}
}
