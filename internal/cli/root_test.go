package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points the CLI at a fresh sqlite database
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "storesync.toml")
	content := fmt.Sprintf(`
[log]
level = "error"
output = "stderr"

[database]
driver = "sqlite"
path = %q
`, filepath.Join(dir, "sync.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "storesync", cmd.Use)

	commands := [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"channel", "create"},
		{"channel", "list"},
		{"channel", "disable"},
		{"import-orders"},
		{"export-orders"},
		{"import-reference-data"},
		{"import-languages"},
		{"import-order-states"},
		{"test-connection"},
	}
	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t), "--format", "yaml", "channel", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "channel", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestChannelCreateAndList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "channel", "create",
		"--name", "eu-shop", "--url", "https://shop.example", "--key", "KEY", "--timezone", "Europe/Paris")
	require.NoError(t, err)
	assert.Contains(t, out, "Created channel eu-shop")

	_, err = execute(t, "--config", cfg, "channel", "create", "--name", "eu-shop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = execute(t, "--config", cfg, "channel", "create", "--name", "bad", "--timezone", "Mars/Base")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err = execute(t, "--config", cfg, "channel", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "eu-shop")
	assert.Contains(t, out, "Europe/Paris")
	assert.NotContains(t, out, "KEY")

	out, err = execute(t, "--config", cfg, "channel", "disable", "eu-shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Channel eu-shop disabled")

	out, err = execute(t, "--config", cfg, "--format", "json", "channel", "list")
	require.NoError(t, err)
	var rows []struct {
		ID         uuid.UUID `json:"id"`
		Name       string    `json:"name"`
		Enabled    bool      `json:"enabled"`
		LastImport *string   `json:"last_order_import_time"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "eu-shop", rows[0].Name)
	assert.False(t, rows[0].Enabled)
	assert.Nil(t, rows[0].LastImport)
}

func TestTestConnection(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/shops" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"shops":[{"id":1,"name":"Main"}]}`))
	}))
	defer srv.Close()

	cfg := writeConfig(t)
	_, err := execute(t, "--config", cfg, "channel", "create", "--name", "eu-shop", "--url", srv.URL, "--key", "KEY")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "test-connection", "eu-shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection successful")

	status.Store(http.StatusUnauthorized)
	_, err = execute(t, "--config", cfg, "test-connection", "eu-shop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, integration.ErrAuthFailed)
}

func TestSyncCommand_UnknownChannel(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t), "import-orders", "nowhere")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `channel "nowhere" not found`)
}

func TestSyncCommand_PrerequisiteAborts(t *testing.T) {
	cfg := writeConfig(t)
	_, err := execute(t, "--config", cfg, "channel", "create", "--name", "eu-shop", "--url", "https://shop.example", "--key", "KEY")
	require.NoError(t, err)

	_, err = execute(t, "--config", cfg, "import-orders", "eu-shop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, integration.ErrOrderStatesNotImported)
}

func TestMigrate(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "migrate", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "000001_init")

	out, err = execute(t, "--config", cfg, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema is up to date")

	_, err = execute(t, "--config", cfg, "migrate", "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPrintResult(t *testing.T) {
	result := integration.NewPassResult(uuid.New(), integration.OperationImportOrders)
	result.Created = 3
	result.Skipped = 1
	result.AddException(integration.ResourceOrders, 12, integration.CurrencyNotFoundError("XTS"))

	var text bytes.Buffer
	require.NoError(t, printResult(&text, "text", result))
	assert.Contains(t, text.String(), "import_orders: created=3 updated=0 skipped=1 exceptions=1")
	assert.Contains(t, text.String(), "orders 12 [CURRENCY_NOT_FOUND] Currency with code XTS not found")

	var js bytes.Buffer
	require.NoError(t, printResult(&js, "json", result))
	var decoded integration.PassResult
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Created)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitPartial, GetExitCode(fmt.Errorf("run: %w", &ExitError{Code: ExitPartial})))
}
