package providers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/dbx"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Provider, error) {
	query := `SELECT id, name, document, active FROM providers ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]models.Provider, 0)
	for rows.Next() {
		var p models.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Document, &p.Active); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Provider, error) {
	query := `SELECT id, name, document, active FROM providers WHERE id = $1`

	p := &models.Provider{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Document, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Provider) (*models.Provider, error) {
	query :=
		`INSERT INTO providers (name, document, active)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, p.Name, p.Document, p.Active).Scan(&p.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Provider) error {
	query := `UPDATE providers SET name = $2, document = $3, active = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Document, p.Active)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
