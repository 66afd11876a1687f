// Package period считает окончание оплаченного периода по тарифному пакету.
package period

import "time"

// Тарифные пакеты, определяющие длительность оплаченного периода.
const (
	Daily     = "daily"
	Weekly    = "weekly"
	Monthly   = "monthly"
	PerPatrol = "per-patrol"
)

// OffsetDays возвращает количество дней, на которое оплата продлевает доступ.
// Для per-patrol и неизвестных пакетов смещение равно нулю.
func OffsetDays(pack string) int {
	switch pack {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Monthly:
		return 30
	default:
		return 0
	}
}

// Expiry возвращает момент окончания оплаченного периода, начавшегося в paidAt.
func Expiry(paidAt time.Time, pack string) time.Time {
	return paidAt.AddDate(0, 0, OffsetDays(pack))
}

// Expired сообщает, истёк ли оплаченный период к моменту now.
// Граница включительная: ровно в момент окончания период ещё действует.
func Expired(paidAt time.Time, pack string, now time.Time) bool {
	return now.After(Expiry(paidAt, pack))
}
