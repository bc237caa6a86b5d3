//go:build integration

package repomanager

import (
	"context"
	"database/sql"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var pgDB *sql.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gophprovider"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to obtain connection string: %s", err)
	}

	pgDB, err = OpenPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	if err := NewPostgresRepositoryManager().RunMigrations(ctx, pgDB); err != nil {
		log.Fatalf("failed to migrate: %s", err)
	}

	code := m.Run()

	_ = pgDB.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func TestPostgres_MigrationsAreIdempotent(t *testing.T) {
	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), pgDB))
}

func TestPostgres_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepositoryManager().Users(pgDB)

	u, err := repo.Create(ctx, &models.User{Email: "lifecycle@example.com", PasswordHash: []byte("h"), EmailConfirmed: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Email: "lifecycle@example.com", PasswordHash: []byte("h")})
	assert.ErrorIs(t, err, common.ErrConflict)

	del := models.Claim{Type: "DeleteProvider", Value: "true"}
	require.NoError(t, repo.AddClaim(ctx, u.ID, del))
	require.NoError(t, repo.AddToRole(ctx, u.ID, "admin"))
	require.NoError(t, repo.AddRoleClaim(ctx, "admin", del))
	require.NoError(t, repo.AddRoleClaim(ctx, "admin", models.Claim{Type: "EditProvider", Value: "true"}))

	claims, err := repo.ListClaims(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Claim{
		{Type: "DeleteProvider", Value: "true"},
		{Type: "EditProvider", Value: "true"},
		{Type: "role", Value: "admin"},
	}, claims)
}

func TestPostgres_RecordFailedAttempt_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepositoryManager().Users(pgDB)

	u, err := repo.Create(ctx, &models.User{Email: "race@example.com", PasswordHash: []byte("h")})
	require.NoError(t, err)

	const n = 20
	now := time.Now().UTC().Truncate(time.Microsecond)
	end := now.Add(time.Minute)

	var (
		wg             sync.WaitGroup
		mu             sync.Mutex
		opened, locked int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := repo.RecordFailedAttempt(ctx, u.ID, 5, now, end)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			if res.LockedOut {
				locked++
			}
			if res.LockedOut && !res.AlreadyLocked {
				opened++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opened)
	assert.Equal(t, n-4, locked)
	assert.ErrorIs(t, repo.ResetFailedAttempts(ctx, u.ID, now), common.ErrLockedOut)

	got, err := repo.GetUserByEmail(ctx, "race@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, got.AccessFailedCount)
	require.NotNil(t, got.LockoutEnd)
	assert.True(t, end.Equal(*got.LockoutEnd))
}

func TestPostgres_Providers(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepositoryManager().Providers(pgDB)

	p, err := repo.Create(ctx, &models.Provider{Name: "Acme", Document: "12345678901234", Active: true})
	require.NoError(t, err)

	p.Name = "Acme Corp"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), common.ErrorNotFound)
}
