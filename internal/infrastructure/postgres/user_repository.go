package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kokitko/bookinline-sub000/internal/domain/identity"
)

// UserRepository は管理者権限の照会を users テーブルで実装する
type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// IsAdmin は指定ユーザーが管理者かを返す
// 未登録ユーザーは管理者ではない扱いとする
func (r *UserRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := r.db.GetContext(ctx, &isAdmin, `SELECT is_admin FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("管理者権限の照会に失敗: %w", err)
	}
	return isAdmin, nil
}

var _ identity.AdminChecker = (*UserRepository)(nil)
