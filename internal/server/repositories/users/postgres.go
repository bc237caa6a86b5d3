package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password_hash, email_confirmed)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.EmailConfirmed).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, email_confirmed, access_failed_count, lockout_end, created_at
		 FROM users
		 WHERE email = $1`

	user := &models.User{}
	var lockoutEnd sql.NullTime

	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash,
		&user.EmailConfirmed, &user.AccessFailedCount, &lockoutEnd, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lockoutEnd.Valid {
		t := lockoutEnd.Time
		user.LockoutEnd = &t
	}

	return user, nil
}

// RecordFailedAttempt runs as a single statement; the row lock taken by the
// CTE serializes concurrent failures for the same user, and a waiting
// statement sees the lockout_end written by the one before it.
func (r *PostgresRepository) RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int, now, lockoutEnd time.Time) (models.FailedAttempt, error) {
	query :=
		`WITH prev AS (
		     SELECT id,
		            COALESCE(lockout_end > $4, false) AS locked,
		            access_failed_count AS failed
		     FROM users WHERE id = $1
		     FOR UPDATE
		 ), next AS (
		     SELECT id, locked,
		            CASE WHEN locked THEN failed ELSE failed + 1 END AS attempts
		     FROM prev
		 )
		 UPDATE users u SET
		     access_failed_count = CASE
		         WHEN next.locked THEN u.access_failed_count
		         WHEN next.attempts >= $2 THEN 0
		         ELSE next.attempts END,
		     lockout_end = CASE
		         WHEN NOT next.locked AND next.attempts >= $2 THEN $3
		         ELSE u.lockout_end END
		 FROM next
		 WHERE u.id = next.id
		 RETURNING next.attempts, next.locked OR next.attempts >= $2, next.locked`

	var res models.FailedAttempt
	err := r.db.QueryRowContext(ctx, query, userID, maxAttempts, lockoutEnd, now).
		Scan(&res.Count, &res.LockedOut, &res.AlreadyLocked)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FailedAttempt{}, common.ErrorNotFound
		}
		return models.FailedAttempt{}, fmt.Errorf("db error: %w", err)
	}

	return res, nil
}

// ResetFailedAttempts leaves a locked row untouched and reports
// common.ErrLockedOut for it.
func (r *PostgresRepository) ResetFailedAttempts(ctx context.Context, userID string, now time.Time) error {
	query :=
		`UPDATE users SET
		     access_failed_count = CASE WHEN lockout_end > $2 THEN access_failed_count ELSE 0 END
		 WHERE id = $1
		 RETURNING COALESCE(lockout_end > $2, false)`

	var locked bool
	err := r.db.QueryRowContext(ctx, query, userID, now).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	if locked {
		return common.ErrLockedOut
	}
	return nil
}

func (r *PostgresRepository) ListClaims(ctx context.Context, userID string) ([]models.Claim, error) {
	query :=
		`SELECT claim_type, claim_value FROM user_claims WHERE user_id = $1
		 UNION
		 SELECT rc.claim_type, rc.claim_value
		 FROM role_claims rc
		 JOIN user_roles ur ON ur.role_name = rc.role_name
		 WHERE ur.user_id = $1
		 UNION
		 SELECT 'role', role_name FROM user_roles WHERE user_id = $1
		 ORDER BY 1, 2`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	claims := make([]models.Claim, 0)
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return claims, nil
}

func (r *PostgresRepository) AddClaim(ctx context.Context, userID string, claim models.Claim) error {
	query :=
		`INSERT INTO user_claims (user_id, claim_type, claim_value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, claim.Type, claim.Value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveClaim(ctx context.Context, userID string, claimType string) error {
	query := `DELETE FROM user_claims WHERE user_id = $1 AND claim_type = $2`

	res, err := r.db.ExecContext(ctx, query, userID, claimType)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) AddToRole(ctx context.Context, userID string, role string) error {
	query :=
		`INSERT INTO user_roles (user_id, role_name)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, role); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddRoleClaim(ctx context.Context, role string, claim models.Claim) error {
	query :=
		`INSERT INTO role_claims (role_name, claim_type, claim_value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, role, claim.Type, claim.Value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
