package property

import "time"

// Property は貸出物件エンティティを表す
type Property struct {
	ID            string
	OwnerID       string
	Name          string
	Description   string
	City          string
	PricePerNight int
	MaxGuests     int
	// Available はホスト/管理者が制御する受付フラグ
	// false の間は日付に関係なく新規予約を受け付けない
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProperty は新しい物件を作成する（初期状態は受付中）
func NewProperty(ownerID, name, description, city string, pricePerNight, maxGuests int) *Property {
	now := time.Now()
	return &Property{
		OwnerID:       ownerID,
		Name:          name,
		Description:   description,
		City:          city,
		PricePerNight: pricePerNight,
		MaxGuests:     maxGuests,
		Available:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate は物件の検証を行う
func (p *Property) Validate() error {
	if p.OwnerID == "" {
		return ErrOwnerIDRequired
	}
	if p.Name == "" {
		return ErrPropertyNameRequired
	}
	if p.PricePerNight < 0 {
		return ErrInvalidPrice
	}
	if p.MaxGuests <= 0 {
		return ErrInvalidMaxGuests
	}
	return nil
}

// IsOwnedBy は指定ユーザーが物件のホストかを返す
func (p *Property) IsOwnedBy(userID string) bool {
	return p.OwnerID == userID
}

// SetAvailability は受付フラグを変更する
func (p *Property) SetAvailability(available bool) {
	p.Available = available
	p.UpdatedAt = time.Now()
}
