package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCwd(t *testing.T, dir string) {
	t.Helper()
	prev := getwd
	getwd = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getwd = prev })
}

func TestResolveConfigDir(t *testing.T) {
	fixedCwd(t, "/work")

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{
			name:   "flag wins over env",
			flag:   "/explicit/config",
			envVal: "/env/config",
			want:   "/explicit/config",
		},
		{
			name:   "env wins when flag empty",
			envVal: "/env/config",
			want:   "/env/config",
		},
		{
			name: "CWD default when both empty",
			want: filepath.Join("/work", DefaultConfigDirName),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	fixedCwd(t, "/work")

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{
			name:        "flag wins over all",
			flag:        "/flag/data",
			configValue: "/config/data",
			envVal:      "/env/data",
			want:        "/flag/data",
		},
		{
			name:        "config.yaml wins over env",
			configValue: "/config/data",
			envVal:      "/env/data",
			want:        "/config/data",
		},
		{
			name:   "env wins when flag and config empty",
			envVal: "/env/data",
			want:   "/env/data",
		},
		{
			name: "CWD default when all empty",
			want: filepath.Join("/work", DefaultDataDirName),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveWatchDir(t *testing.T) {
	fixedCwd(t, "/work")

	got, err := ResolveWatchDir("/books", "/configured")
	require.NoError(t, err)
	assert.Equal(t, "/books", got)

	got, err = ResolveWatchDir("", "/configured")
	require.NoError(t, err)
	assert.Equal(t, "/configured", got)

	got, err = ResolveWatchDir("", "")
	require.NoError(t, err)
	assert.Equal(t, "/work", got)
}

func TestResolve_RelativeBecomesAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "relative/env")
	t.Setenv(EnvDataDir, "")

	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	got, err = ResolveDataDir("", "relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	got, err = ResolveWatchDir("relative/books", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}

func TestResolve_GetwdFailure(t *testing.T) {
	boom := errors.New("cwd gone")
	prev := getwd
	getwd = func() (string, error) { return "", boom }
	t.Cleanup(func() { getwd = prev })

	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")

	_, err := ResolveConfigDir("")
	assert.ErrorIs(t, err, boom)
	_, err = ResolveDataDir("", "")
	assert.ErrorIs(t, err, boom)
	_, err = ResolveWatchDir("", "")
	assert.ErrorIs(t, err, boom)
}

func TestArtifactLayout(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", "snapshots"), SnapshotsDir("/data"))
	assert.Equal(t, filepath.Join("/data", "changes"), ChangesDir("/data"))
	assert.Equal(t, filepath.Join("/cfg", "config.yaml"), ConfigFile("/cfg"))
}
