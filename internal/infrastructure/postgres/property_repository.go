package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect 登録
	"github.com/jmoiron/sqlx"

	"github.com/kokitko/bookinline-sub000/internal/domain/property"
)

const dialectPostgres = "postgres"

type propertyRow struct {
	ID            string    `db:"id"`
	OwnerID       string    `db:"owner_id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	City          string    `db:"city"`
	PricePerNight int       `db:"price_per_night"`
	MaxGuests     int       `db:"max_guests"`
	Available     bool      `db:"available"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *propertyRow) toEntity() *property.Property {
	return &property.Property{
		ID: r.ID, OwnerID: r.OwnerID, Name: r.Name, Description: r.Description,
		City: r.City, PricePerNight: r.PricePerNight, MaxGuests: r.MaxGuests,
		Available: r.Available, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const propertyColumns = `id, owner_id, name, description, city, price_per_night, max_guests, available, created_at, updated_at`

type PropertyRepository struct{ db *sqlx.DB }

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p *property.Property) error {
	query := `INSERT INTO properties (owner_id, name, description, city, price_per_night, max_guests, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		p.OwnerID, p.Name, p.Description, p.City, p.PricePerNight, p.MaxGuests, p.Available, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("物件作成に失敗: %w", err)
	}
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*property.Property, error) {
	var row propertyRow
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, property.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("物件取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PropertyRepository) List(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	var rows []propertyRow
	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("物件一覧取得に失敗: %w", err)
	}
	return toPropertyEntities(rows), nil
}

// Search は受付中の物件を条件で絞り込む
// 絞り込み条件が可変なので goqu でクエリを組み立てる
func (r *PropertyRepository) Search(ctx context.Context, filter property.SearchFilter, limit, offset int) ([]*property.Property, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From("properties").
		Select("id", "owner_id", "name", "description", "city", "price_per_night", "max_guests", "available", "created_at", "updated_at").
		Where(goqu.C("available").IsTrue()).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset))

	if filter.City != "" {
		stmt = stmt.Where(goqu.C("city").Eq(filter.City))
	}
	if filter.MaxPrice > 0 {
		stmt = stmt.Where(goqu.C("price_per_night").Lte(filter.MaxPrice))
	}
	if filter.MinGuests > 0 {
		stmt = stmt.Where(goqu.C("max_guests").Gte(filter.MinGuests))
	}

	query, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("検索クエリの構築に失敗: %w", err)
	}

	var rows []propertyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("物件検索に失敗: %w", err)
	}
	return toPropertyEntities(rows), nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *property.Property) error {
	query := `UPDATE properties SET name = $1, description = $2, city = $3, price_per_night = $4, max_guests = $5, available = $6, updated_at = $7 WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Description, p.City, p.PricePerNight, p.MaxGuests, p.Available, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("物件更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return property.ErrPropertyNotFound
	}
	return nil
}

func toPropertyEntities(rows []propertyRow) []*property.Property {
	result := make([]*property.Property, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ property.Repository = (*PropertyRepository)(nil)
