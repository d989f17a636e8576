package booking

import (
	"errors"
	"fmt"
)

// Booking ドメインのエラー定義
// 種別エラー（kind）を個別エラーが %w でラップし、呼び出し側は errors.Is で種別判定できる
var (
	ErrInvalidDateRange  = errors.New("無効な日付範囲です")
	ErrDateConflict      = errors.New("指定期間は既に予約されています")
	ErrBookingNotFound   = errors.New("予約が見つかりません")
	ErrInvalidTransition = errors.New("現在の予約状態では実行できない操作です")
	ErrForbidden         = errors.New("この操作を実行する権限がありません")

	ErrCheckInPast = fmt.Errorf("%w: チェックイン日が過去です", ErrInvalidDateRange)

	ErrBookingNotPending       = fmt.Errorf("%w: 予約は保留中ではありません", ErrInvalidTransition)
	ErrBookingNotConfirmed     = fmt.Errorf("%w: 予約は確定済みではありません", ErrInvalidTransition)
	ErrBookingAlreadyCancelled = fmt.Errorf("%w: 予約は既にキャンセルされています", ErrInvalidTransition)
	ErrBookingCheckedOut       = fmt.Errorf("%w: 予約は既にチェックアウト済みです", ErrInvalidTransition)
	ErrBookingStatusChanged    = fmt.Errorf("%w: 予約状態が他の操作によって変更されています", ErrInvalidTransition)

	ErrPropertyIDRequired = errors.New("物件IDは必須です")
	ErrGuestIDRequired    = errors.New("ゲストIDは必須です")
)
