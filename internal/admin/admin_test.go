package admin

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/logging"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "email", "password_hash", "email_confirmed", "access_failed_count", "lockout_end", "created_at"}

func newTool(t *testing.T) (*Tool, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	policy := auth.PasswordPolicy{MinLength: 6, RequireDigit: true, RequireLowercase: true,
		RequireUppercase: true, RequireNonAlphanumeric: true, RequiredUniqueChars: 1}

	var out bytes.Buffer
	return NewTool(db, repomanager.NewPostgresRepositoryManager(), hasher, policy, &out, logging.Nop()), mock, &out
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func expectUser(mock sqlmock.Sqlmock, email, id string) {
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id, email, []byte("hash"), true, 0, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRun_Usage(t *testing.T) {
	tool, _, _ := newTool(t)

	for _, args := range [][]string{
		nil,
		{"-email", "a@b.co"},
		{"frobnicate"},
		{"grant", "-email", "a@b.co"},
		{"rolegrant", "-claim", "DeleteProvider"},
		{"addrole", "-role", "admin"},
	} {
		err := tool.Run(context.Background(), args)
		assert.ErrorIs(t, err, ErrUsage, "%v", args)
	}
}

func TestAddUser(t *testing.T) {
	tool, mock, out := newTool(t)
	stubPasswords(t, "Passw0rd!", "Passw0rd!")

	mock.ExpectBegin()
	mock.ExpectQuery(`^INSERT INTO users`).
		WithArgs("admin@example.com", sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", time.Now()))
	mock.ExpectExec(`^INSERT INTO user_roles`).
		WithArgs("u-1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tool.Run(context.Background(), []string{"adduser", "-email", " Admin@Example.com ", "-role", "admin", "-d", "postgres://ignored"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "created user admin@example.com (u-1)")
}

func TestAddUser_DuplicateRollsBack(t *testing.T) {
	tool, mock, _ := newTool(t)
	stubPasswords(t, "Passw0rd!", "Passw0rd!")

	mock.ExpectBegin()
	mock.ExpectQuery(`^INSERT INTO users`).WillReturnError(common.ErrConflict)
	mock.ExpectRollback()

	err := tool.Run(context.Background(), []string{"adduser", "-email", "admin@example.com"})
	require.Error(t, err)
}

func TestAddUser_RejectsInput(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		tool, _, _ := newTool(t)
		stubPasswords(t, "Passw0rd!", "Passw0rd?")
		err := tool.Run(context.Background(), []string{"adduser", "-email", "a@b.co"})
		assert.EqualError(t, err, "passwords do not match")
	})

	t.Run("weak password", func(t *testing.T) {
		tool, _, _ := newTool(t)
		stubPasswords(t, "abc", "abc")
		err := tool.Run(context.Background(), []string{"adduser", "-email", "a@b.co"})
		var ve *common.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.NotEmpty(t, ve.Fields["password"])
	})

	t.Run("bad email", func(t *testing.T) {
		tool, _, _ := newTool(t)
		err := tool.Run(context.Background(), []string{"adduser", "-email", "nope"})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("terminal error", func(t *testing.T) {
		tool, _, _ := newTool(t)
		stubPasswords(t)
		err := tool.Run(context.Background(), []string{"adduser", "-email", "a@b.co"})
		assert.ErrorContains(t, err, "read password")
	})
}

func TestGrant(t *testing.T) {
	tool, mock, out := newTool(t)

	expectUser(mock, "alice@example.com", "u-1")
	mock.ExpectExec(`^INSERT INTO user_claims`).
		WithArgs("u-1", auth.ClaimDeleteProvider, DefaultClaimValue).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := tool.Run(context.Background(), []string{"grant", "-email", "alice@example.com", "-claim", auth.ClaimDeleteProvider})
	require.NoError(t, err)
	assert.Equal(t, "granted DeleteProvider=true to alice@example.com\n", out.String())
}

func TestGrant_UnknownUser(t *testing.T) {
	tool, mock, _ := newTool(t)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	err := tool.Run(context.Background(), []string{"grant", "-email", "ghost@example.com", "-claim", "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRevoke(t *testing.T) {
	tool, mock, _ := newTool(t)

	expectUser(mock, "alice@example.com", "u-1")
	mock.ExpectExec(`^DELETE FROM user_claims`).
		WithArgs("u-1", auth.ClaimDeleteProvider).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := tool.Run(context.Background(), []string{"revoke", "-email", "alice@example.com", "-claim", auth.ClaimDeleteProvider})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAddRoleAndRoleGrant(t *testing.T) {
	tool, mock, out := newTool(t)

	expectUser(mock, "alice@example.com", "u-1")
	mock.ExpectExec(`^INSERT INTO user_roles`).
		WithArgs("u-1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^INSERT INTO role_claims`).
		WithArgs("admin", auth.ClaimDeleteProvider, "yes").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, tool.Run(ctx, []string{"addrole", "-email", "alice@example.com", "-role", "admin"}))
	require.NoError(t, tool.Run(ctx, []string{"rolegrant", "-role", "admin", "-claim", auth.ClaimDeleteProvider, "-value", "yes"}))

	assert.Equal(t, "added alice@example.com to role admin\ngranted DeleteProvider=yes to role admin\n", out.String())
}

func TestClaims(t *testing.T) {
	tool, mock, out := newTool(t)

	expectUser(mock, "alice@example.com", "u-1")
	mock.ExpectQuery(`^SELECT claim_type, claim_value FROM user_claims`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"claim_type", "claim_value"}).
			AddRow("DeleteProvider", "true").
			AddRow("role", "admin"))

	require.NoError(t, tool.Run(context.Background(), []string{"claims", "-email", "alice@example.com"}))
	assert.Equal(t, "DeleteProvider=true\nrole=admin\n", out.String())
}
