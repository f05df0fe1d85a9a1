package cli

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/verixa/internal/client/client"
	"github.com/dmitrijs2005/verixa/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	app, err := NewApp(&config.Config{ServerURL: "http://localhost:3000", RequestTimeout: time.Second})
	require.NoError(t, err)

	assert.IsType(t, &client.HTTPClient{}, app.api)
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "(anonymous)", app.getStatus())
}

func TestGetStatus_LoggedIn(t *testing.T) {
	app := &App{api: &fakeAPI{loggedIn: true}, email: "alice@example.org"}
	assert.Equal(t, "(alice@example.org)", app.getStatus())
}
