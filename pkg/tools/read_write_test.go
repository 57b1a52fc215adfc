package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-file-gateway/pkg/errors"
)

func TestReadFile(t *testing.T) {
	env := newTestEnv(t)
	writeTestFile(t, env.path("notes.txt"), "hello\nworld\n")
	writeTestFile(t, filepath.Join(env.outside, "secret.txt"), "top secret")
	require.NoError(t, os.Symlink(filepath.Join(env.outside, "secret.txt"), env.path("link.txt")))

	t.Run("returns contents verbatim", func(t *testing.T) {
		res := env.call("read_file", map[string]interface{}{"path": env.path("notes.txt")})
		assert.False(t, res.IsError)
		assert.Equal(t, "hello\nworld\n", res.Text())
	})

	t.Run("missing file", func(t *testing.T) {
		missing := env.path("missing.txt")
		res := env.call("read_file", map[string]interface{}{"path": missing})
		assert.True(t, res.IsError)
		assert.Equal(t, errors.ErrCodeNotFound, res.Code())
		assert.Equal(t, `File not found: "`+missing+`"`, res.Text())
	})

	t.Run("outside the roots", func(t *testing.T) {
		res := env.call("read_file", map[string]interface{}{"path": filepath.Join(env.outside, "secret.txt")})
		assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
		assert.Contains(t, res.Text(), "Allowed: "+env.root)
		assert.NotContains(t, res.Text(), "top secret")
	})

	t.Run("traversal out of the root", func(t *testing.T) {
		res := env.call("read_file", map[string]interface{}{"path": env.root + "/../outside/secret.txt"})
		assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
	})

	t.Run("symlink escaping the root", func(t *testing.T) {
		res := env.call("read_file", map[string]interface{}{"path": env.path("link.txt")})
		assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
		assert.NotContains(t, res.Text(), "top secret")
	})

	t.Run("directory", func(t *testing.T) {
		res := env.call("read_file", map[string]interface{}{"path": env.root})
		assert.Equal(t, errors.ErrCodeIOFailure, res.Code())
		assert.Contains(t, res.Text(), "is a directory")
	})

	t.Run("over the read limit", func(t *testing.T) {
		writeTestFile(t, env.path("big.txt"), strings.Repeat("a", 1025))
		res := env.call("read_file", map[string]interface{}{"path": env.path("big.txt")})
		assert.Equal(t, errors.ErrCodeInvalidArgument, res.Code())
		assert.Contains(t, res.Text(), "1.0 KB")
	})

	t.Run("exactly at the read limit", func(t *testing.T) {
		writeTestFile(t, env.path("edge.txt"), strings.Repeat("a", 1024))
		res := env.call("read_file", map[string]interface{}{"path": env.path("edge.txt")})
		assert.False(t, res.IsError)
		assert.Len(t, res.Text(), 1024)
	})

	t.Run("missing path argument", func(t *testing.T) {
		res := env.call("read_file", map[string]interface{}{})
		assert.Equal(t, errors.ErrCodeInvalidArgument, res.Code())
	})
}

func TestWriteFile(t *testing.T) {
	env := newTestEnv(t)

	t.Run("create then overwrite", func(t *testing.T) {
		path := env.path("out.txt")

		res := env.call("write_file", map[string]interface{}{"path": path, "content": "one"})
		assert.False(t, res.IsError)
		assert.Equal(t, "File created: "+path, res.Text())

		res = env.call("write_file", map[string]interface{}{"path": path, "content": "two"})
		assert.Equal(t, "File overwritten: "+path, res.Text())
		assert.Equal(t, "two", readTestFile(t, path))
	})

	t.Run("round trips through read_file", func(t *testing.T) {
		path := env.path("round.txt")
		content := "line 1\n\ttabbed\nünïcödé\n"

		for i := 0; i < 2; i++ {
			require.False(t, env.call("write_file", map[string]interface{}{"path": path, "content": content}).IsError)
			assert.Equal(t, content, env.call("read_file", map[string]interface{}{"path": path}).Text())
		}
	})

	t.Run("append to missing file creates it", func(t *testing.T) {
		path := env.path("log.txt")
		res := env.call("write_file", map[string]interface{}{"path": path, "content": "a", "append": true})
		assert.Equal(t, "Content appended to: "+path+" (file created)", res.Text())
		assert.Equal(t, "a", readTestFile(t, path))
	})

	t.Run("append concatenates", func(t *testing.T) {
		path := env.path("log2.txt")
		writeTestFile(t, path, "prior\n")

		res := env.call("write_file", map[string]interface{}{"path": path, "content": "next\n", "append": true})
		assert.Equal(t, "Content appended to: "+path, res.Text())
		assert.Equal(t, "prior\nnext\n", readTestFile(t, path))
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := env.path("a", "b", "c.txt")
		res := env.call("write_file", map[string]interface{}{"path": path, "content": "deep"})
		assert.False(t, res.IsError, res.Text())
		assert.Equal(t, "deep", readTestFile(t, path))
	})

	t.Run("empty content", func(t *testing.T) {
		path := env.path("empty.txt")
		assert.False(t, env.call("write_file", map[string]interface{}{"path": path, "content": ""}).IsError)
		assert.Equal(t, "", readTestFile(t, path))
	})

	t.Run("outside the roots", func(t *testing.T) {
		path := filepath.Join(env.outside, "pwned.txt")
		res := env.call("write_file", map[string]interface{}{"path": path, "content": "x"})
		assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("through a symlinked directory", func(t *testing.T) {
		require.NoError(t, os.Symlink(env.outside, env.path("escape")))
		res := env.call("write_file", map[string]interface{}{"path": env.path("escape", "pwned.txt"), "content": "x"})
		assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
		_, err := os.Stat(filepath.Join(env.outside, "pwned.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("onto a directory", func(t *testing.T) {
		require.NoError(t, os.Mkdir(env.path("dir"), 0755))
		res := env.call("write_file", map[string]interface{}{"path": env.path("dir"), "content": "x"})
		assert.Equal(t, errors.ErrCodeIOFailure, res.Code())
	})

	t.Run("content is required", func(t *testing.T) {
		res := env.call("write_file", map[string]interface{}{"path": env.path("x.txt")})
		assert.Equal(t, errors.ErrCodeInvalidArgument, res.Code())
	})
}
