package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/verixa/internal/logging"
	"github.com/dmitrijs2005/verixa/internal/server/config"
	"github.com/dmitrijs2005/verixa/internal/server/mailer"
	"github.com/dmitrijs2005/verixa/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func TestNewApp_DBError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })

	boom := errors.New("connection refused")
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) { return nil, boom }

	_, err := NewApp(context.Background(), testConfig(), logging.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewMailer(t *testing.T) {
	ctx := context.Background()

	c := testConfig()
	m, err := newMailer(ctx, c, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogMailer{}, m)

	c.MailOutbox = config.MailOutboxFile
	c.MailOutboxDir = t.TempDir()
	m, err = newMailer(ctx, c, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &mailer.FileOutboxMailer{}, m)

	c.MailOutbox = config.MailOutboxS3
	m, err = newMailer(ctx, c, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &mailer.S3OutboxMailer{}, m)
}

func TestBuildHandler_Routes(t *testing.T) {
	c := testConfig()
	c.GoogleClientID = "client-id"
	c.GoogleClientSecret = "client-secret"

	h, err := buildHandler(context.Background(), c, logging.Discard(), nil, repomanager.NewMemoryRepositoryManager(nil))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?provider=google", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "client_id=client-id")
}
