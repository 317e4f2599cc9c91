package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/car-service/internal/assets"
	"github.com/Dan9191/car-service/internal/auth"
	"github.com/Dan9191/car-service/internal/repository/sqlite"
)

type recordingNotifier struct {
	welcomed []string
	changed  map[string][]string
	err      error
}

func (n *recordingNotifier) Welcome(to string) error {
	n.welcomed = append(n.welcomed, to)
	return n.err
}

func (n *recordingNotifier) ProfileChanged(to string, changed []string) error {
	if n.changed == nil {
		n.changed = map[string][]string{}
	}
	n.changed[to] = changed
	return n.err
}

type fixture struct {
	repo     *sqlite.Repository
	auth     *AuthService
	cars     *CarService
	notifier *recordingNotifier
	tokens   *auth.TokenManager
	hook     *test.Hook
	uploads  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "cars.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	uploads := t.TempDir()
	storage, err := assets.NewLocalStorage(uploads)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	notifier := &recordingNotifier{}

	return &fixture{
		repo:     repo,
		auth:     NewAuthService(repo, tokens, notifier, logger),
		cars:     NewCarService(repo, assets.NewManager(storage, "http://localhost:8080/uploads", logger), logger),
		notifier: notifier,
		tokens:   tokens,
		hook:     hook,
		uploads:  uploads,
	}
}

func (f *fixture) signup(t *testing.T, email string) string {
	t.Helper()

	session, err := f.auth.Signup(context.Background(), Credentials{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return session.User.ID
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(f.uploads)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func sorted(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}

func ptr(s string) *string {
	return &s
}
