package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/feed_shop/internal/events"
	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/internal/payment"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/session"
	pkgdb "github.com/Skotchmaster/feed_shop/pkg/db"
)

var testSecret = []byte("webhook-secret")

type testEnv struct {
	Repo     *repo.GormRepo
	Events   *events.Recorder
	Sessions *session.Manager
	Auth     *AuthService
	Catalog  *CatalogService
	Orders   *OrderService
	Contact  *ContactService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	require.NoError(t, repo.Migrate(db))

	r := repo.New(db)
	rec := &events.Recorder{}
	sessions := session.NewManager(session.NewMemoryStore(), []byte("session-secret"), 0)

	return &testEnv{
		Repo:     r,
		Events:   rec,
		Sessions: sessions,
		Auth:     &AuthService{Repo: r, Sessions: sessions, Events: rec},
		Catalog:  &CatalogService{Repo: r, Events: rec},
		Orders:   &OrderService{Repo: r, Gateway: payment.NewMock(testSecret), Events: rec},
		Contact:  &ContactService{Repo: r, Events: rec},
	}
}

func (e *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: name + " description", Price: models.MustMoney(price)}
	require.NoError(t, e.Repo.CreateProduct(context.Background(), p))
	return p
}

func (e *testEnv) user(t *testing.T, username, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, e.Repo.CreateUserIfNotExists(context.Background(), u))
	return u
}
