package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string            `json:"name"`
	Retries int               `json:"retries"`
	Nested  testNestedConfig  `json:"nested"`
	Labels  map[string]string `json:"labels"`
}

type testNestedConfig struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

func write(t *testing.T, path, contents string) {
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestLocalOverridePath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "b", "config.local.json5"), localOverridePath(filepath.Join("a", "b", "config.json5")))
	require.Equal(t, "config.local", localOverridePath("config"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](path)
	require.ErrorIs(t, err, os.ErrNotExist)

	write(t, path, `{
		name: "base",
		retries: 3,
		nested: { url: "https://example.com" },
	}`)
	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Name:    "base",
		Retries: 3,
		Nested:  testNestedConfig{URL: "https://example.com"},
	}, config)

	write(t, filepath.Join(dir, "config.local.json5"), `{
		nested: { token: "secret" },
		retries: 5,
	}`)
	config, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Name:    "base",
		Retries: 5,
		Nested:  testNestedConfig{URL: "https://example.com", Token: "secret"},
	}, config)

	write(t, path, `{ name: `)
	_, err = ReadConfig[testConfig](path)
	require.Error(t, err)
}

func TestReadConfigOr(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	defaults := testConfig{Name: "default", Retries: 1, Nested: testNestedConfig{URL: "https://default.example.com"}}

	config, err := ReadConfigOr(path, defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, config)

	write(t, path, `{ retries: 10 }`)
	config, err = ReadConfigOr(path, defaults)
	require.NoError(t, err)
	require.Equal(t, "default", config.Name)
	require.Equal(t, 10, config.Retries)
	require.Equal(t, "https://default.example.com", config.Nested.URL)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0700))
	write(t, filepath.Join(root, "settings.json5"), `{ name: "found" }`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(wd)

	config, err := ReadRecursively[testConfig]("settings.json5")
	require.NoError(t, err)
	require.Equal(t, "found", config.Name)

	_, err = ReadRecursively[testConfig]("missing.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDatabase(t *testing.T) {
	_, err := Database{}.OpenDB()
	require.Error(t, err)

	db, err := Database{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())

	file := filepath.Join(t.TempDir(), "nested", "state.db")
	db, err = Database{File: file}.OpenDB()
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("create table t (id integer)")
	require.NoError(t, err)
	_, err = os.Stat(file)
	require.NoError(t, err)
}

func TestReadEnv(t *testing.T) {
	type env struct {
		Value string `envconfig:"VALUE" required:"true"`
		Count int    `envconfig:"COUNT" default:"2"`
	}
	t.Setenv("CFGTEST_VALUE", "x")
	out, err := ReadEnv[env]("CFGTEST")
	require.NoError(t, err)
	require.Equal(t, env{Value: "x", Count: 2}, out)

	os.Unsetenv("CFGTEST_VALUE")
	_, err = ReadEnv[env]("CFGTEST")
	require.Error(t, err)
}
