package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultVersion, cfg.Version)
	assert.Equal(t, DefaultMaxRetries, cfg.Download.MaxRetries)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Download.TimeoutSeconds)
	assert.Equal(t, DefaultChunkSizeMB, cfg.Download.ChunkSizeMB)
	assert.Equal(t, DefaultMaxConcurrentChunks, cfg.Download.MaxConcurrentChunks)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
			errMsg:  "config cannot be nil",
		},
		{
			name:    "empty version",
			cfg:     &Config{Version: ""},
			wantErr: true,
			errMsg:  "invalid version",
		},
		{
			name: "valid minimal config with no server configured yet",
			cfg:  &Config{Version: "1.0"},
		},
		{
			name: "valid config with server",
			cfg: &Config{
				Version: "1.0",
				Server: Server{
					URL:      "https://cloud.example.com/remote.php/dav/files/user/",
					Username: "user@example.com",
					AppPassword: EncryptedData{
						Encrypted: "test",
						Salt:      "test",
						Nonce:     "test",
						Algorithm: EncryptionAlgorithm,
					},
				},
			},
		},
		{
			name: "invalid server URL scheme",
			cfg: &Config{
				Version: "1.0",
				Server:  Server{URL: "ftp://cloud.example.com", Username: "user"},
			},
			wantErr: true,
			errMsg:  "invalid server",
		},
		{
			name: "out of range max retries",
			cfg: &Config{
				Version:  "1.0",
				Download: Download{MaxRetries: 99},
			},
			wantErr: true,
			errMsg:  "invalid download settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSaveAndLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := New()
	cfg.Server = Server{
		URL:      "https://cloud.example.com/remote.php/dav/files/user/",
		Username: "user@example.com",
	}

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, cfg.Server.URL, loaded.Server.URL)
	assert.Equal(t, cfg.Server.Username, loaded.Server.Username)
	assert.Equal(t, cfg.Download.MaxRetries, loaded.Download.MaxRetries)
}

func TestLoadOrCreate_CreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, cfg.Version)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestDefaultPath_HonorsXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := DefaultPath()
	assert.Equal(t, filepath.Join(dir, "webdavfetch", "config.yaml"), got)
}
