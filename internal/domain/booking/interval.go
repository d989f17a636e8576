package booking

import "time"

// Overlaps は2つの半開区間 [aStart, aEnd) と [bStart, bEnd) が重なるかを返す
// 境界が接している場合（aEnd == bStart 等）は重複とみなさない（同日チェックイン/アウト可）
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ValidateRange は checkIn < checkOut を検証する（同日・逆転は無効）
func ValidateRange(checkIn, checkOut time.Time) error {
	if !checkIn.Before(checkOut) {
		return ErrInvalidDateRange
	}
	return nil
}

// Date はカレンダー日付（UTC深夜0時）を生成する
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ToDate は時刻を切り捨ててカレンダー日付（UTC深夜0時）に正規化する
func ToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
