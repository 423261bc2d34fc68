package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/common/apperrors"
	"github.com/tansive/conductor/internal/ensemble/store"
)

const shopV1 = `NAMESPACE shop;
TABLE users UUID '11111111-1111-1111-1111-111111111111' (id INTEGER UID 1, email TEXT UID 2);
AUTHORIZATION_POLICY everyone permissive_expr = true;
AUTHORIZATION_POLICY admins permissive_expr = claims.role = 'admin';
HTTP_HANDLER list_users POLICY everyone AS $$SELECT * FROM users$$;
HTTP_HANDLER delete_users POLICY admins AS $$DELETE FROM users$$;
`

const shopV2 = `NAMESPACE shop;
TABLE users UUID '11111111-1111-1111-1111-111111111111' (id BIGINT UID 1, email TEXT UID 2);
AUTHORIZATION_POLICY everyone permissive_expr = true;
AUTHORIZATION_POLICY admins permissive_expr = claims.role = 'admin';
HTTP_HANDLER list_users POLICY everyone AS $$SELECT * FROM users$$;
`

func init() {
	color.NoColor = true
}

type testEnv struct {
	configFile string
	dataPath   string
}

func newTestEnv(t *testing.T) *testEnv {
	dir := t.TempDir()
	env := &testEnv{
		configFile: filepath.Join(dir, "conductor.yaml"),
		dataPath:   filepath.Join(dir, "data"),
	}
	cfg := "data_path: " + env.dataPath + "\nlog_level: error\n"
	require.NoError(t, os.WriteFile(env.configFile, []byte(cfg), 0o644))
	return env
}

func (e *testEnv) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func scoreDir(t *testing.T, text string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.score"), []byte(text), 0o644))
	return dir
}

func TestVersionAndUUID(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("version")
	require.NoError(t, err)
	assert.Equal(t, "conductor "+Version+"\n", out)

	out, err = env.run("version", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"`+Version+`"}`, out)

	out, err = env.run("uuid")
	require.NoError(t, err)
	_, err = catalog.ParseTableID(strings.TrimSpace(out))
	assert.NoError(t, err)
}

func TestCompile(t *testing.T) {
	env := newTestEnv(t)
	dir := scoreDir(t, shopV1)

	out, err := env.run("compile", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "NAMESPACE shop;\n"))
	assert.Contains(t, out, "HTTP_HANDLER list_users POLICY everyone AS $$SELECT * FROM users$$;")

	out, err = env.run("compile", dir, "-o", "json")
	require.NoError(t, err)
	var c catalog.Catalog
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Len(t, c.Namespaces["shop"].HttpHandlers, 2)

	out, err = env.run("compile", dir, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "namespaces:")
	assert.Contains(t, out, "11111111-1111-1111-1111-111111111111")

	_, err = env.run("compile", dir, "-o", "xml")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestCompileErrorExitCode(t *testing.T) {
	env := newTestEnv(t)
	dir := scoreDir(t, "NAMESPACE shop; VIEW v")

	_, err := env.run("compile", dir)
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitCodeInput, ExitCode(err))
	assert.Contains(t, errorMessage(err), "Expected one of [TABLE HTTP_HANDLER AUTHENTICATION_POLICY AUTHORIZATION_POLICY], found: VIEW at Line: 1, Column: 17")
}

func TestDiff(t *testing.T) {
	env := newTestEnv(t)
	v1 := scoreDir(t, shopV1)
	v2 := scoreDir(t, shopV2)

	out, err := env.run("diff", v1, v1)
	require.NoError(t, err)
	assert.Equal(t, "No changes.\n", out)

	out, err = env.run("diff", v1, v2)
	require.NoError(t, err)
	assert.Equal(t,
		"ALTER TABLE shop.users ALTER COLUMN id TYPE BIGINT;\n"+
			"DROP HTTP_HANDLER shop.delete_users;\n",
		out)

	out, err = env.run("diff", v1, v2, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"kind":"alter_column_type","namespace":"shop","edit":"ALTER TABLE shop.users ALTER COLUMN id TYPE BIGINT"},
		{"kind":"drop_http_handler","namespace":"shop","edit":"DROP HTTP_HANDLER shop.delete_users"}
	]`, out)
}

func TestApply(t *testing.T) {
	env := newTestEnv(t)
	v1 := scoreDir(t, shopV1)
	v2 := scoreDir(t, shopV2)

	out, err := env.run("apply", v1)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE NAMESPACE shop;\n")
	assert.Contains(t, out, "Dry run: 6 edits and 1 table actions not applied.")
	assert.NoFileExists(t, filepath.Join(env.dataPath, store.RecordName))

	out, err = env.run("apply", v1, "--commit")
	require.NoError(t, err)
	assert.Contains(t, out, "Committed 6 edits and 1 table actions.")
	assert.FileExists(t, filepath.Join(env.dataPath, store.RecordName))
	assert.FileExists(t, filepath.Join(env.dataPath, "tables", "shop", "11111111-1111-1111-1111-111111111111", "_table.json"))

	out, err = env.run("apply", v1)
	require.NoError(t, err)
	assert.Equal(t, "No changes.\n", out)

	out, err = env.run("apply", v2, "--commit", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"edits": [
			{"kind":"alter_column_type","namespace":"shop","edit":"ALTER TABLE shop.users ALTER COLUMN id TYPE BIGINT"},
			{"kind":"drop_http_handler","namespace":"shop","edit":"DROP HTTP_HANDLER shop.delete_users"}
		],
		"actions": ["alter_table shop.users (11111111-1111-1111-1111-111111111111)"],
		"committed": true
	}`, out)
}

func TestApplyWritesMetrics(t *testing.T) {
	env := newTestEnv(t)
	metricsFile := filepath.Join(t.TempDir(), "conductor.prom")
	cfg := "data_path: " + env.dataPath + "\nmetrics_textfile: " + metricsFile + "\n"
	require.NoError(t, os.WriteFile(env.configFile, []byte(cfg), 0o644))

	_, err := env.run("apply", scoreDir(t, shopV1), "--commit")
	require.NoError(t, err)
	b, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `conductor_actions_executed_total{kind="create_table"} 1`)
	assert.Contains(t, string(b), "conductor_commits_total 1")
}

func TestPolicies(t *testing.T) {
	env := newTestEnv(t)
	dir := scoreDir(t, shopV1)

	out, err := env.run("policies", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Namespace", "Handler", "Policy", "Expression", "Decision"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"shop", "delete_users", "admins", "claims.role", "=", "'admin'", "deny"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"shop", "list_users", "everyone", "TRUE", "allow"}, strings.Fields(lines[2]))

	out, err = env.run("policies", dir, "--json")
	require.NoError(t, err)
	var decisions []policyDecision
	require.NoError(t, json.Unmarshal([]byte(out), &decisions))
	require.Len(t, decisions, 2)
	assert.False(t, decisions[0].Allowed)
	assert.True(t, decisions[1].Allowed)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, apperrors.ExitCodeGeneric, ExitCode(errors.New("plain")))
	assert.Equal(t, apperrors.ExitCodeState, ExitCode(catalog.ErrTableExists.Msg("x")))
	assert.Equal(t, apperrors.ExitCodeStorage, ExitCode(store.ErrCorruptRecord))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("disk full")
	assert.Equal(t, "unable to write catalog record: disk full",
		errorMessage(store.ErrStore.MsgErr("unable to write catalog record", cause)))
	assert.Equal(t, "already says disk full",
		errorMessage(store.ErrStore.MsgErr("already says disk full", cause)))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchDirs(t *testing.T) {
	v1 := scoreDir(t, shopV1)
	v2 := scoreDir(t, shopV1)

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- watchDirs(ctx, &out, []string{v1, v2}, func() error {
			return diffDirs(&out, v1, v2, false)
		})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "No changes.")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(v2, "shop.score"), []byte(shopV2), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "DROP HTTP_HANDLER shop.delete_users;")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestEditColor(t *testing.T) {
	assert.Same(t, createColor, editColor(catalog.KindCreateTable))
	assert.Same(t, createColor, editColor(catalog.KindAddColumn))
	assert.Same(t, dropColor, editColor(catalog.KindDropNamespace))
	assert.Same(t, replaceColor, editColor(catalog.KindReplaceHttpHandler))
	assert.Same(t, alterColor, editColor(catalog.KindRenameColumn))
	assert.Same(t, alterColor, editColor(catalog.KindAlterColumnType))
}
