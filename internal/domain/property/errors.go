package property

import "errors"

// Property ドメインのエラー定義
var (
	ErrPropertyNotFound     = errors.New("物件が見つかりません")
	ErrPropertyUnavailable  = errors.New("物件は現在予約を受け付けていません")
	ErrOwnerIDRequired      = errors.New("オーナーIDは必須です")
	ErrPropertyNameRequired = errors.New("物件名は必須です")
	ErrInvalidPrice         = errors.New("宿泊料金が不正です")
	ErrInvalidMaxGuests     = errors.New("最大宿泊人数が不正です")
)
