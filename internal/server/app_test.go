package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.DishesDSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	return cfg
}

func TestNewApp_InMemory(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.db)
	assert.NotNil(t, app.handler)
	assert.NoError(t, app.ping(context.Background()))
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.SecretKey = ""

	_, err := NewApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, app.Run(ctx))
}
