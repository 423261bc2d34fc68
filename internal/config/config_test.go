package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    *Config
		wantErr bool
	}{
		{
			name: "toml",
			file: "conductor.toml",
			content: `
data_path = "/var/lib/conductor"
log_level = "debug"
metrics_textfile = "/var/lib/node_exporter/conductor.prom"

[store]
backend = "postgres"
dsn = "postgres://conductor@localhost/conductor"
compress = true

[storage]
root = "/srv/tables"
`,
			want: &Config{
				DataPath:        "/var/lib/conductor",
				Store:           StoreConfig{Backend: BackendPostgres, DSN: "postgres://conductor@localhost/conductor", Compress: true},
				Storage:         StorageConfig{Root: "/srv/tables"},
				LogLevel:        "debug",
				MetricsTextfile: "/var/lib/node_exporter/conductor.prom",
			},
		},
		{
			name: "yaml keeps defaults",
			file: "conductor.yaml",
			content: `
store:
  backend: sqlite
  dsn: /tmp/catalog.db
`,
			want: &Config{
				DataPath: ".conductor",
				Store:    StoreConfig{Backend: BackendSQLite, DSN: "/tmp/catalog.db"},
				LogLevel: "info",
			},
		},
		{
			name:    "empty file",
			file:    "conductor.yml",
			content: "",
			want:    Default(),
		},
		{
			name:    "unknown backend",
			file:    "conductor.toml",
			content: "[store]\nbackend = \"mysql\"\n",
			wantErr: true,
		},
		{
			name:    "sql backend without dsn",
			file:    "conductor.toml",
			content: "[store]\nbackend = \"postgres\"\n",
			wantErr: true,
		},
		{
			name:    "bad log level",
			file:    "conductor.yaml",
			content: "log_level: loud\n",
			wantErr: true,
		},
		{
			name:    "empty data path",
			file:    "conductor.yaml",
			content: "data_path: \"\"\n",
			wantErr: true,
		},
		{
			name:    "malformed toml",
			file:    "conductor.toml",
			content: "data_path = ",
			wantErr: true,
		},
		{
			name:    "unsupported extension",
			file:    "conductor.json",
			content: "{}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(tt.file, []byte(tt.content))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "conductor.yaml")
	require.NoError(t, os.WriteFile(file, []byte("data_path: "+dir+"\n"), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataPath)
	assert.Equal(t, filepath.Join(dir, "tables"), cfg.StorageRoot())

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"warn\"\n"), 0o644))

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
