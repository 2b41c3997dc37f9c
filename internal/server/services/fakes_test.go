package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	usersrepo "github.com/dmitrijs2005/devconnector/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// memUsers is an in-memory users repository enforcing unique emails.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int

	// skipPrecheck makes GetUserByEmail miss, as when two registrations race.
	skipPrecheck bool
	failWith     error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("%w: unique_violation", common.ErrDuplicateEmail)
		}
	}
	m.nextID++
	u.ID = fmt.Sprintf("u-%d", m.nextID)
	u.CreatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	return u, nil
}

func (m *memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.skipPrecheck {
		return nil, common.ErrorNotFound
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type fakeRepoManager struct {
	users *memUsers
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return f.users }

type fakeSigner struct {
	url string
	err error
}

func (f *fakeSigner) AvatarURL(ctx context.Context, avatar string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url + avatar, nil
}

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) { return "", errors.New("signing failed") }

func newTestIssuer() *auth.Issuer {
	return auth.NewIssuer([]byte("test-secret"), time.Hour)
}

// newSQLMockDB returns a sqlmock DB for tests that assert on
// transaction boundaries.
func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// newTxDB returns an in-memory SQLite handle. The fake repositories ignore
// it; it only has to open and close transactions.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestService(t *testing.T, users *memUsers, opts ...Option) *UserService {
	t.Helper()
	return NewUserService(newTxDB(t), &fakeRepoManager{users: users}, newTestIssuer(), bcrypt.MinCost, opts...)
}

func newMockedService(t *testing.T, users *memUsers) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	return NewUserService(db, &fakeRepoManager{users: users}, newTestIssuer(), bcrypt.MinCost), mock
}
