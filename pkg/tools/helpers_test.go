package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"mcp-file-gateway/pkg/logging"
	"mcp-file-gateway/pkg/sandbox"
)

// mockTool is a simple mock implementation of the Tool interface for testing
type mockTool struct {
	name        string
	description string
	schema      map[string]interface{}
	executeFunc func(ctx context.Context, arguments map[string]interface{}) (*Result, error)
}

func (m *mockTool) Name() string                        { return m.name }
func (m *mockTool) Description() string                 { return m.description }
func (m *mockTool) InputSchema() map[string]interface{} { return m.schema }

func (m *mockTool) Execute(ctx context.Context, arguments map[string]interface{}) (*Result, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, arguments)
	}
	return TextResult("ok"), nil
}

var fixedNow = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

// testEnv is a dispatcher over the builtin tools confined to one temp root
type testEnv struct {
	root       string
	outside    string
	sandbox    *sandbox.Sandbox
	dispatcher *Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root := filepath.Join(base, "root")
	outside := filepath.Join(base, "outside")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.MkdirAll(outside, 0755))

	roots, err := sandbox.NewAllowedRoots([]string{root})
	require.NoError(t, err)
	sb := sandbox.New(roots)

	logger := logging.NewNopLogger()
	registry, err := NewRegistry(logger, BuiltinTools(sb, afero.NewOsFs(), Options{
		MaxReadBytes: 1024,
		Now:          func() time.Time { return fixedNow },
	})...)
	require.NoError(t, err)

	return &testEnv{
		root:       root,
		outside:    outside,
		sandbox:    sb,
		dispatcher: NewDispatcher(registry, logger),
	}
}

func (e *testEnv) call(name string, args map[string]interface{}) *Result {
	return e.dispatcher.Dispatch(context.Background(), CallRequest{Name: name, Arguments: args})
}

func (e *testEnv) path(parts ...string) string {
	return filepath.Join(append([]string{e.root}, parts...)...)
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
