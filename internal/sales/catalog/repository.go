package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
)

var (
	ErrTypeNotFound  = fmt.Errorf("catalog type %w", httpx.ErrNotFound)
	ErrItemNotFound  = fmt.Errorf("catalog item %w", httpx.ErrNotFound)
	ErrTypeExists    = fmt.Errorf("catalog type name already exists: %w", httpx.ErrDuplicate)
	ErrItemExists    = fmt.Errorf("catalog code already exists for this type: %w", httpx.ErrDuplicate)
	ErrTypeInUse     = fmt.Errorf("catalog type is referenced by catalog or quote items: %w", httpx.ErrConflict)
	ErrUnknownTypeID = fmt.Errorf("catalog type does not exist: %w", httpx.ErrValidation)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	ListTypes(ctx context.Context) ([]Type, error)
	CreateType(ctx context.Context, name string) (int64, error)
	UpdateType(ctx context.Context, id int64, name string) error
	TypeInUse(ctx context.Context, id int64) (bool, error)
	DeleteType(ctx context.Context, id int64) error

	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	CreateItem(ctx context.Context, item Item) (int64, error)
	UpdateItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, id int64) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) ListTypes(ctx context.Context) ([]Type, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM catalog_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := []Type{}
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *repository) CreateType(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO catalog_types (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrTypeExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateType(ctx context.Context, id int64, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE catalog_types SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrTypeExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTypeNotFound
	}
	return nil
}

func (r *repository) TypeInUse(ctx context.Context, id int64) (bool, error) {
	var inUse bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM catalog_items WHERE type_id = $1)
		    OR EXISTS (SELECT 1 FROM quote_items WHERE type_id = $1)`, id).Scan(&inUse)
	return inUse, err
}

func (r *repository) DeleteType(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_types WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrTypeInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTypeNotFound
	}
	return nil
}

const itemColumns = `c.id, c.type_id, ct.name, c.code, c.description, c.unit_price`

func (r *repository) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items c
		JOIN catalog_types ct ON ct.id = c.type_id
		ORDER BY ct.name, c.description`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *repository) GetItem(ctx context.Context, id int64) (*Item, error) {
	return scanItem(r.db.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items c
		JOIN catalog_types ct ON ct.id = c.type_id
		WHERE c.id = $1`, id))
}

func (r *repository) CreateItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO catalog_items (type_id, code, description, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		item.TypeID, item.Code, item.Description, item.UnitPrice,
	).Scan(&id)
	if err != nil {
		return 0, mapItemWriteError(err)
	}
	return id, nil
}

func (r *repository) UpdateItem(ctx context.Context, item Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE catalog_items SET type_id = $1, code = $2, description = $3, unit_price = $4
		WHERE id = $5`,
		item.TypeID, item.Code, item.Description, item.UnitPrice, item.ID)
	if err != nil {
		return mapItemWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func mapItemWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return ErrItemExists
	case db.IsForeignKeyViolation(err):
		return ErrUnknownTypeID
	}
	return err
}

func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	if err := row.Scan(&item.ID, &item.TypeID, &item.TypeName, &item.Code, &item.Description, &item.UnitPrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}
