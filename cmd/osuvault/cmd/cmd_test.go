package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/osuvault/pkg/archive"
	"github.com/ssargent/osuvault/pkg/config"
	"github.com/ssargent/osuvault/pkg/model"
	"github.com/ssargent/osuvault/pkg/storage"
)

const cookieziJSON = `{
  "id": 124493,
  "username": "chocomint",
  "country_code": "JP",
  "playmode": "osu",
  "join_date": "2011-03-03T09:41:00+00:00",
  "is_supporter": true,
  "follower_count": 41000,
  "previous_usernames": ["Cookiezi", "shigetora"],
  "badges": [
    {
      "awarded_at": "2015-11-27T00:00:00+00:00",
      "description": "osu! World Cup 2013 winning team",
      "image_url": "https://assets.ppy.sh/profile-badges/owc2013.png"
    }
  ],
  "monthly_playcounts": [
    {"start_date": "2024-01-01", "count": 1204},
    {"start_date": "2024-02-01", "count": 988}
  ]
}`

func testRuntime(t *testing.T) *runtime {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Storage.Sync = false
	cfg.Logging.Level = "error"

	rt, err := openRuntime(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestInitializeConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "osuvault", "config.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	t.Run("Fresh config", func(t *testing.T) {
		cfg, created, err := initializeConfig(configPath, dataDir, false)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.FileExists(t, configPath)
	})

	t.Run("Existing config is kept", func(t *testing.T) {
		cfg, created, err := initializeConfig(configPath, "/somewhere/else", false)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, dataDir, cfg.DataDir)
	})

	t.Run("Force overwrites", func(t *testing.T) {
		other := filepath.Join(tmpDir, "other")
		cfg, created, err := initializeConfig(configPath, other, true)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, other, cfg.DataDir)

		loaded, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, other, loaded.DataDir)
	})

	t.Run("Empty path", func(t *testing.T) {
		_, _, err := initializeConfig("", dataDir, false)
		assert.Error(t, err)
	})
}

func TestReadUsers(t *testing.T) {
	t.Run("Single object", func(t *testing.T) {
		users, err := readUsers(strings.NewReader(cookieziJSON))
		require.NoError(t, err)
		require.Len(t, users, 1)

		u := users[0]
		assert.Equal(t, uint32(124493), u.ID)
		assert.Equal(t, "chocomint", u.Username.String())
		require.NotNil(t, u.Country)
		assert.Equal(t, "JP", u.Country.String())
		assert.Equal(t, model.ModeOsu, u.Mode)
		require.NotNil(t, u.PreviousUsernames)
		assert.Len(t, *u.PreviousUsernames, 2)
		assert.Len(t, u.MonthlyPlaycounts, 2)
		assert.Nil(t, u.Birthday)
	})

	t.Run("Array with leading whitespace", func(t *testing.T) {
		users, err := readUsers(strings.NewReader("\n  [" + cookieziJSON + `, {"id": 2, "username": "peppy", "playmode": "taiko", "join_date": "2007-08-28T03:09:12+00:00"}]`))
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, model.ModeTaiko, users[1].Mode)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, input := range []string{"", "   ", "{", `{"playmode": "catch the beat"}`} {
			_, err := readUsers(strings.NewReader(input))
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestWriteUser(t *testing.T) {
	users, err := readUsers(strings.NewReader(cookieziJSON))
	require.NoError(t, err)
	u := users[0]

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeUser(&buf, u, "json"))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "JP", got["country_code"])
		assert.Equal(t, "osu", got["playmode"])
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeUser(&buf, u, "yaml"))

		var got map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "chocomint", got["username"])
		assert.Equal(t, "JP", got["country_code"])
	})

	t.Run("Unknown format", func(t *testing.T) {
		assert.Error(t, writeUser(&bytes.Buffer{}, u, "xml"))
	})
}

func TestUserKey(t *testing.T) {
	key, err := userKey("124493")
	require.NoError(t, err)
	assert.Equal(t, "user:124493", key)

	for _, arg := range []string{"", "-1", "abc", "4294967296"} {
		_, err := userKey(arg)
		assert.Error(t, err, "arg %q", arg)
	}
}

func TestArchiveAndVerify(t *testing.T) {
	rt := testRuntime(t)
	ctx := context.Background()

	users, err := readUsers(strings.NewReader(cookieziJSON))
	require.NoError(t, err)

	ids, err := archiveUsers(ctx, rt, users)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	got, err := rt.users.Load(ctx, "user:124493")
	require.NoError(t, err)
	assert.Equal(t, "chocomint", got.Username.String())

	var out bytes.Buffer
	require.NoError(t, verifyStore(ctx, rt, &out))
	assert.Contains(t, out.String(), "Snapshots: 1")

	// a well-formed envelope whose archive is not a user
	_, err = rt.store.Put(ctx, "user:2", []byte{0xFF})
	require.NoError(t, err)

	out.Reset()
	err = verifyStore(ctx, rt, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "UNDECODABLE user:2@")
}

func TestVerifyUser(t *testing.T) {
	rt := testRuntime(t)
	ctx := context.Background()

	users, err := readUsers(strings.NewReader(cookieziJSON))
	require.NoError(t, err)
	_, err = archiveUsers(ctx, rt, users)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, verifyUser(ctx, rt, &out, "124493"))
	assert.Equal(t, "OK user:124493\n", out.String())

	_, err = rt.store.Put(ctx, "user:2", []byte{0xFF})
	require.NoError(t, err)
	assert.ErrorIs(t, verifyUser(ctx, rt, &out, "2"), archive.ErrCorruptLength)

	assert.ErrorIs(t, verifyUser(ctx, rt, &out, "3"), storage.ErrNotFound)
	assert.Error(t, verifyUser(ctx, rt, &out, "not-a-user"))
}

func TestCommands_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	dataDir := filepath.Join(tmpDir, "data")
	userFile := filepath.Join(tmpDir, "cookiezi.json")
	require.NoError(t, os.WriteFile(userFile, []byte(cookieziJSON), 0600))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append(args, "--config", configPath, "--log-level", "error"))
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	_, err := run("init", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.FileExists(t, configPath)

	out, err := run("archive", userFile)
	require.NoError(t, err)
	assert.Contains(t, out, "user:124493\tchocomint\t")

	_, err = run("archive", userFile)
	require.NoError(t, err)

	out, err = run("show", "124493", "--format", "json")
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "chocomint", shown["username"])

	out, err = run("history", "124493")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	snapshot := strings.Fields(lines[0])[0]
	out, err = run("show", "124493", "--snapshot", snapshot, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "username: chocomint")

	out, err = run("list")
	require.NoError(t, err)
	assert.Equal(t, "user:124493\n", out)

	out, err = run("verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshots: 2")

	out, err = run("verify", "124493")
	require.NoError(t, err)
	assert.Equal(t, "OK user:124493\n", out)

	_, err = run("forget", "124493")
	require.NoError(t, err)

	_, err = run("show", "124493", "--snapshot", "")
	assert.Error(t, err)
}
