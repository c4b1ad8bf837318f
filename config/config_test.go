package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziracms/editor-sub001/lang"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())

	cfg, err = Load(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, int64(2<<20), cfg.Limits.MaxFileSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
exclude = ["build/**"]

[log]
verbosity = 2

[limits]
max_file_size = 1024

[languages]
js = [".js", ".jsx"]

[workers]
parse = 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Log.Verbosity)
	assert.Equal(t, int64(1024), cfg.Limits.MaxFileSize)
	assert.Equal(t, 4, cfg.Workers.Parse)
	assert.Equal(t, []string{".js", ".jsx"}, cfg.Languages.JS)
	assert.Equal(t, []string{".php", ".phtml", ".inc"}, cfg.Languages.PHP, "unset keys keep defaults")

	language, ok := cfg.LanguageOf("src/App.JSX")
	assert.True(t, ok)
	assert.Equal(t, lang.JS, language)

	assert.True(t, cfg.Excluded("build/out/app.js"))
	assert.False(t, cfg.Excluded("src/app.js"))
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"size":      "[limits]\nmax_file_size = 0\n",
		"workers":   "[workers]\nparse = -1\n",
		"pattern":   "exclude = [\"[\"]\n",
		"extension": "[languages]\ncss = [\"css\"]\n",
		"conflict":  "[languages]\ncss = [\".js\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Load(writeConfig(t, "not toml ="))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLanguageOf(t *testing.T) {
	cfg := Default()
	for path, want := range map[string]lang.Language{
		"a.php":      lang.PHP,
		"b.scss":     lang.CSS,
		"c/d.mjs":    lang.JS,
		"view.phtml": lang.PHP,
	} {
		got, ok := cfg.LanguageOf(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := cfg.LanguageOf("README")
	assert.False(t, ok)
	_, ok = cfg.LanguageOf("x.go")
	assert.False(t, ok)
}
