package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	datafeed "github.com/fazecat/niftyscreener/Internal/database"
	"github.com/fazecat/niftyscreener/Internal/utils/config"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.csv")
	require.NoError(t, os.WriteFile(path, []byte("tradingsymbol,instrument_key\nTCS,NSE_EQ|INE467B01029\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Universe.Path = path
	return cfg
}

func TestNew_CSVUniverse(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB())
	assert.NotNil(t, a.Metrics)
	assert.Equal(t, 10, a.Scanner.Options().Workers)

	_, err = a.Scanner.RunScan(context.Background(), "", 0, scanner.ModeSwing)
	assert.ErrorIs(t, err, scanner.ErrMissingCredential)
}

func TestSourceFactory_Provider(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	source, err := a.sourceFactory()("token")
	require.NoError(t, err)
	assert.IsType(t, &datafeed.UpstoxClient{}, source)

	cfg.Provider.Name = datafeed.ProviderAlpaca
	_, err = a.sourceFactory()("key")
	assert.Error(t, err, "alpaca without a secret")
}
