package application

import (
	"context"
	"fmt"
	"time"

	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/domain/identity"
	"github.com/kokitko/bookinline-sub000/internal/domain/property"
)

// PropertyService は物件の管理と検索を司る
type PropertyService struct {
	propertyRepo property.Repository
	adminChecker identity.AdminChecker
	checker      *AvailabilityChecker
}

func NewPropertyService(pr property.Repository, ac identity.AdminChecker, checker *AvailabilityChecker) *PropertyService {
	return &PropertyService{propertyRepo: pr, adminChecker: ac, checker: checker}
}

type CreatePropertyInput struct {
	OwnerID       string
	Name          string
	Description   string
	City          string
	PricePerNight int
	MaxGuests     int
}

func (s *PropertyService) CreateProperty(ctx context.Context, input CreatePropertyInput) (*property.Property, error) {
	p := property.NewProperty(input.OwnerID, input.Name, input.Description, input.City, input.PricePerNight, input.MaxGuests)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("物件作成に失敗しました: %w", err)
	}
	return p, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	return s.propertyRepo.GetByID(ctx, id)
}

func (s *PropertyService) ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	limit, offset = clampPage(limit, offset)
	return s.propertyRepo.List(ctx, limit, offset)
}

// SetAvailability は物件の受付フラグを変更する（ホストまたは管理者のみ）
func (s *PropertyService) SetAvailability(ctx context.Context, id, actorID string, available bool) (*property.Property, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(actorID) {
		isAdmin := false
		if s.adminChecker != nil {
			isAdmin, err = s.adminChecker.IsAdmin(ctx, actorID)
			if err != nil {
				return nil, err
			}
		}
		if !isAdmin {
			return nil, booking.ErrForbidden
		}
	}
	p.SetAvailability(available)
	if err := s.propertyRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type SearchAvailableInput struct {
	CheckIn   time.Time
	CheckOut  time.Time
	City      string
	MaxPrice  int
	MinGuests int
	Limit     int
	Offset    int
}

// SearchAvailable は条件に合致し、かつ指定期間 [CheckIn, CheckOut) が
// 空いている物件を返す
//
// 空室述語は候補ごとに評価する。他の絞り込みとページングが独立でないため、
// ストレージから候補ページを順に読み、述語を通過したものだけを数えて
// Offset/Limit を満たすまで走査する
func (s *PropertyService) SearchAvailable(ctx context.Context, input SearchAvailableInput) ([]*property.Property, error) {
	checkIn, checkOut := booking.ToDate(input.CheckIn), booking.ToDate(input.CheckOut)
	if err := booking.ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}
	limit, offset := clampPage(input.Limit, input.Offset)

	filter := property.SearchFilter{
		City:      input.City,
		MaxPrice:  input.MaxPrice,
		MinGuests: input.MinGuests,
	}

	const candidatePageSize = 50
	result := make([]*property.Property, 0, limit)
	skipped := 0

	for page := 0; ; page++ {
		candidates, err := s.propertyRepo.Search(ctx, filter, candidatePageSize, page*candidatePageSize)
		if err != nil {
			return nil, err
		}
		for _, p := range candidates {
			conflict, err := s.checker.hasConflictCached(ctx, p.ID, checkIn, checkOut)
			if err != nil {
				return nil, err
			}
			if conflict {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			result = append(result, p)
			if len(result) >= limit {
				return result, nil
			}
		}
		if len(candidates) < candidatePageSize {
			return result, nil
		}
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
