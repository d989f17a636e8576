package property

import "context"

// SearchFilter は物件検索の絞り込み条件（日付以外）
// ゼロ値のフィールドは条件に含めない
type SearchFilter struct {
	City      string
	MaxPrice  int
	MinGuests int
}

// Repository は物件リポジトリのインターフェース
type Repository interface {
	// Create は新しい物件を作成する
	Create(ctx context.Context, p *Property) error

	// GetByID はIDから物件を取得する
	GetByID(ctx context.Context, id string) (*Property, error)

	// List は物件一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Property, error)

	// Search は条件に合致する受付中の物件を取得する
	Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*Property, error)

	// Update は物件を更新する
	Update(ctx context.Context, p *Property) error
}
