package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	writeFile(t, path, `{
		// the logged in user
		user_id: "123",
		cookie_xs: "abc",
		timeout_secs: 30,
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{client_id: "1a2b3c4d"}`)

	cfg, err := readConfig(path)
	require.NoError(t, err)

	require.Equal(t, Config{
		UserId:            "123",
		CookieXs:          "abc",
		ClientId:          "1a2b3c4d",
		Database:          "fbwatch.db",
		Timezone:          "UTC",
		WatchSchedule:     "@every 5m",
		RequestsPerSecond: 2,
		TimeoutSecs:       30,
	}, cfg)
	require.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestReadConfigGeneratesClientId(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{user_id: "123", cookie_xs: "abc"}`)

	cfg, err := readConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.ClientId, 8)
}

func TestReadConfigRequiresCredentials(t *testing.T) {
	testCases := []struct {
		content string
		key     string
	}{
		{`{cookie_xs: "abc"}`, "user_id"},
		{`{user_id: "123", cookie_xs: ""}`, "cookie_xs"},
	}

	for _, test := range testCases {
		path := filepath.Join(t.TempDir(), "config.json5")
		writeFile(t, path, test.content)

		_, err := readConfig(path)
		require.Equal(t, ConfigurationError{Key: test.key}, err)
		require.EqualError(t, err, "configuration file does not contain '"+test.key+"'")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := readConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorContains(t, err, "does not exist")
}

func TestParseArticleIds(t *testing.T) {
	ids, err := parseArticleIds([]string{"100", "200"})
	require.NoError(t, err)
	require.Equal(t, []int64{100, 200}, ids)

	_, err = parseArticleIds([]string{"100", "abc"})
	require.Error(t, err)
}
