package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/web-ai-chat-go/internal/config"
)

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	cmd.Flags().String("listen", config.DefaultListen, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

// useConfigFile は、ルートの --config/-C フラグが指定された状態を再現します。
func useConfigFile(t *testing.T, path string) {
	t.Helper()
	prev := clibase.Flags.ConfigFile
	clibase.Flags.ConfigFile = path
	t.Cleanup(func() { clibase.Flags.ConfigFile = prev })
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "env-key")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apiKey: file-key\nmodel: file-model\nllmTimeout: 30s\n"), 0o600))
	useConfigFile(t, path)

	tests := []struct {
		name      string
		args      []string
		wantKey   string
		wantModel string
	}{
		{name: "env over file", args: nil, wantKey: "env-key", wantModel: "file-model"},
		{name: "flag over env", args: []string{"-k", "flag-key", "--model", "flag-model"}, wantKey: "flag-key", wantModel: "flag-model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(newFlagCommand(t, tt.args...))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, cfg.APIKey)
			assert.Equal(t, tt.wantModel, cfg.Model)
			// 指定していないフラグの既定値はファイルの値を上書きしない
			assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
		})
	}
}

func TestAddConfigFlags_LeavesConfigToRoot(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	// --config/-C はルートの永続フラグなので、サブコマンドで再定義しない
	assert.Nil(t, cmd.Flags().Lookup("config"))
	assert.Nil(t, cmd.Flags().ShorthandLookup("c"))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	useConfigFile(t, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvAPIKey, "")

	cfg, err := loadConfig(newFlagCommand(t,
		"--fetch-timeout", "5s",
		"--max-context-chars", "100",
		"--endpoint", "http://127.0.0.1:9999/",
		"--listen", "127.0.0.1:9000",
	))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 100, cfg.MaxContextChars)
	assert.Equal(t, "http://127.0.0.1:9999/", cfg.Endpoint)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	useConfigFile(t, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := loadConfig(newFlagCommand(t, "--max-context-chars", "0"))
	assert.Error(t, err)
}

func TestNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, nonEmpty([]string{" a ", "", "  ", "b"}))
	assert.Empty(t, nonEmpty(nil))
}
