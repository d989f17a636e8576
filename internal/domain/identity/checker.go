package identity

import "context"

// AdminChecker は管理者権限の照会インターフェース
// コアは「actor が管理者か」という真偽のみを扱い、認証そのものは外部の責務
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}
