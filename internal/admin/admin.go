// Package admin implements the authctl commands: seeding users and managing
// the claims and roles they carry.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/dbx"
	"github.com/dmitrijs2005/gophprovider/internal/flagx"
	"github.com/dmitrijs2005/gophprovider/internal/logging"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophprovider/internal/validx"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("usage error")

// DefaultClaimValue is stored when grant is called without -value.
const DefaultClaimValue = "true"

const usage = `usage: authctl <command> [flags]

commands:
  adduser   -email E [-role R]            create a confirmed user (password is prompted)
  grant     -email E -claim T [-value V]  attach a claim to a user
  revoke    -email E -claim T             remove a user's claims of type T
  addrole   -email E -role R              put a user into a role
  rolegrant -role R -claim T [-value V]   attach a claim to a role
  claims    -email E                      print the claims a token would carry
`

type Tool struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.BcryptHasher
	policy      auth.PasswordPolicy
	out         io.Writer
	log         logging.Logger
}

func NewTool(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.BcryptHasher,
	policy auth.PasswordPolicy, out io.Writer, log logging.Logger) *Tool {
	return &Tool{db: db, repomanager: m, hasher: hasher, policy: policy, out: out, log: log.With("module", "authctl")}
}

// Usage prints the command summary.
func (t *Tool) Usage() {
	fmt.Fprint(t.out, usage)
}

// Run executes the command named by the first element of args.
func (t *Tool) Run(ctx context.Context, args []string) error {
	cmd, rest := flagx.SplitCommand(args)

	switch cmd {
	case "adduser":
		return t.addUser(ctx, rest)
	case "grant":
		return t.grant(ctx, rest)
	case "revoke":
		return t.revoke(ctx, rest)
	case "addrole":
		return t.addRole(ctx, rest)
	case "rolegrant":
		return t.roleGrant(ctx, rest)
	case "claims":
		return t.claims(ctx, rest)
	case "":
		return fmt.Errorf("%w: missing command", ErrUsage)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

type commandFlags struct {
	email string
	claim string
	value string
	role  string
}

// parse reads the command flags out of args, ignoring the server's own
// configuration flags, and checks that every name in required was given.
func parse(name string, args []string, required ...string) (*commandFlags, error) {
	f := &commandFlags{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.email, "email", "", "user email")
	fs.StringVar(&f.claim, "claim", "", "claim type")
	fs.StringVar(&f.value, "value", DefaultClaimValue, "claim value")
	fs.StringVar(&f.role, "role", "", "role name")

	args = flagx.FilterArgs(args, []string{"-email", "-claim", "-value", "-role", "--email", "--claim", "--value", "--role"})
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUsage, name, err)
	}

	f.email = strings.ToLower(strings.TrimSpace(f.email))
	f.role = strings.TrimSpace(f.role)
	f.claim = strings.TrimSpace(f.claim)

	values := map[string]string{"email": f.email, "claim": f.claim, "role": f.role}
	for _, r := range required {
		if values[r] == "" {
			return nil, fmt.Errorf("%w: %s: -%s is required", ErrUsage, name, r)
		}
	}
	return f, nil
}

func (t *Tool) addUser(ctx context.Context, args []string) error {
	f, err := parse("adduser", args, "email")
	if err != nil {
		return err
	}

	ve := common.NewValidationError()
	validx.Var(ve, "email", f.email, "email")
	if err := ve.Err(); err != nil {
		return err
	}

	password, err := t.promptPassword()
	if err != nil {
		return err
	}
	for _, msg := range t.policy.Validate(password) {
		ve.Add("password", msg)
	}
	if err := ve.Err(); err != nil {
		return err
	}

	hash, err := t.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, t.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := t.repomanager.Users(tx)
		user, err = repo.Create(ctx, &models.User{Email: f.email, PasswordHash: hash, EmailConfirmed: true})
		if err != nil {
			return err
		}
		if f.role != "" {
			return repo.AddToRole(ctx, user.ID, f.role)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error creating user %s: %w", f.email, err)
	}

	t.log.Info(ctx, "user created", "user_id", user.ID, "role", f.role)
	fmt.Fprintf(t.out, "created user %s (%s)\n", f.email, user.ID)
	return nil
}

func (t *Tool) promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(t.out, "Password: ")
	pw, err := readPassword(fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(t.out, "Confirm password: ")
	confirm, err := readPassword(fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(pw) != string(confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(pw), nil
}

func (t *Tool) userID(ctx context.Context, email string) (string, error) {
	user, err := t.repomanager.Users(t.db).GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error looking up user %s: %w", email, err)
	}
	return user.ID, nil
}

func (t *Tool) grant(ctx context.Context, args []string) error {
	f, err := parse("grant", args, "email", "claim")
	if err != nil {
		return err
	}

	id, err := t.userID(ctx, f.email)
	if err != nil {
		return err
	}
	if err := t.repomanager.Users(t.db).AddClaim(ctx, id, models.Claim{Type: f.claim, Value: f.value}); err != nil {
		return fmt.Errorf("error granting claim: %w", err)
	}

	t.log.Info(ctx, "claim granted", "user_id", id, "claim", f.claim)
	fmt.Fprintf(t.out, "granted %s=%s to %s\n", f.claim, f.value, f.email)
	return nil
}

func (t *Tool) revoke(ctx context.Context, args []string) error {
	f, err := parse("revoke", args, "email", "claim")
	if err != nil {
		return err
	}

	id, err := t.userID(ctx, f.email)
	if err != nil {
		return err
	}
	if err := t.repomanager.Users(t.db).RemoveClaim(ctx, id, f.claim); err != nil {
		return fmt.Errorf("error revoking claim: %w", err)
	}

	t.log.Info(ctx, "claim revoked", "user_id", id, "claim", f.claim)
	fmt.Fprintf(t.out, "revoked %s from %s\n", f.claim, f.email)
	return nil
}

func (t *Tool) addRole(ctx context.Context, args []string) error {
	f, err := parse("addrole", args, "email", "role")
	if err != nil {
		return err
	}

	id, err := t.userID(ctx, f.email)
	if err != nil {
		return err
	}
	if err := t.repomanager.Users(t.db).AddToRole(ctx, id, f.role); err != nil {
		return fmt.Errorf("error adding role: %w", err)
	}

	fmt.Fprintf(t.out, "added %s to role %s\n", f.email, f.role)
	return nil
}

func (t *Tool) roleGrant(ctx context.Context, args []string) error {
	f, err := parse("rolegrant", args, "role", "claim")
	if err != nil {
		return err
	}

	if err := t.repomanager.Users(t.db).AddRoleClaim(ctx, f.role, models.Claim{Type: f.claim, Value: f.value}); err != nil {
		return fmt.Errorf("error granting role claim: %w", err)
	}

	fmt.Fprintf(t.out, "granted %s=%s to role %s\n", f.claim, f.value, f.role)
	return nil
}

func (t *Tool) claims(ctx context.Context, args []string) error {
	f, err := parse("claims", args, "email")
	if err != nil {
		return err
	}

	id, err := t.userID(ctx, f.email)
	if err != nil {
		return err
	}
	claims, err := t.repomanager.Users(t.db).ListClaims(ctx, id)
	if err != nil {
		return fmt.Errorf("error listing claims: %w", err)
	}

	for _, c := range claims {
		fmt.Fprintf(t.out, "%s=%s\n", c.Type, c.Value)
	}
	return nil
}
