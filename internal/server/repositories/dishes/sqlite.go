package dishes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/dbx"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context, name string) ([]models.Dish, error) {
	query := `select id, name from dishes order by name`
	args := []any{}
	if name != "" {
		query = `select id, name from dishes where name like '%' || ? || '%' order by name`
		args = append(args, name)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select dishes: %w", err)
	}
	defer rows.Close()

	result := make([]models.Dish, 0)
	for rows.Next() {
		var d models.Dish
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Dish, error) {
	return r.getOne(ctx, `select id, name from dishes where id = ?`, id)
}

func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*models.Dish, error) {
	return r.getOne(ctx, `select id, name from dishes where name = ?`, name)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg string) (*models.Dish, error) {
	d := &models.Dish{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&d.ID, &d.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select dish: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) Ingredients(ctx context.Context, dishID string) ([]models.Ingredient, error) {
	if _, err := r.GetByID(ctx, dishID); err != nil {
		return nil, err
	}

	query := `select i.id, i.name
		from ingredients i
		join dish_ingredients di on di.ingredient_id = i.id
		where di.dish_id = ?
		order by i.name`

	rows, err := r.db.QueryContext(ctx, query, dishID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ingredients: %w", err)
	}
	defer rows.Close()

	result := make([]models.Ingredient, 0)
	for rows.Next() {
		var i models.Ingredient
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
