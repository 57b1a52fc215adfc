package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-file-gateway/pkg/errors"
)

func TestDeleteFile(t *testing.T) {
	exists := func(path string) bool {
		_, err := os.Lstat(path)
		return err == nil
	}

	t.Run("root is protected regardless of recursive", func(t *testing.T) {
		env := newTestEnv(t)
		writeTestFile(t, env.path("keep.txt"), "x")

		for _, raw := range []string{env.root, env.root + "/", env.root + "/sub/.."} {
			for _, recursive := range []bool{false, true} {
				res := env.call("delete_file", map[string]interface{}{"path": raw, "recursive": recursive})
				assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
				assert.Equal(t, `Denied: the allowed root "`+env.root+`" cannot be deleted.`, res.Text())
			}
		}
		assert.True(t, exists(env.path("keep.txt")))
	})

	t.Run("file", func(t *testing.T) {
		env := newTestEnv(t)
		writeTestFile(t, env.path("a.txt"), "x")

		res := env.call("delete_file", map[string]interface{}{"path": env.path("a.txt")})
		assert.False(t, res.IsError)
		assert.Equal(t, "File deleted: "+env.path("a.txt"), res.Text())
		assert.False(t, exists(env.path("a.txt")))
	})

	t.Run("empty directory", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.Mkdir(env.path("d"), 0755))

		res := env.call("delete_file", map[string]interface{}{"path": env.path("d")})
		assert.Equal(t, "Directory deleted: "+env.path("d"), res.Text())
		assert.False(t, exists(env.path("d")))
	})

	t.Run("non-empty directory needs recursive", func(t *testing.T) {
		env := newTestEnv(t)
		writeTestFile(t, env.path("d", "inner.txt"), "x")

		res := env.call("delete_file", map[string]interface{}{"path": env.path("d")})
		assert.Equal(t, errors.ErrCodeNotEmpty, res.Code())
		assert.Contains(t, res.Text(), `Directory is not empty: "`+env.path("d")+`"`)
		assert.Contains(t, res.Text(), "recursive: true")
		assert.True(t, exists(env.path("d", "inner.txt")))

		res = env.call("delete_file", map[string]interface{}{"path": env.path("d"), "recursive": true})
		assert.Equal(t, "Directory deleted recursively: "+env.path("d"), res.Text())
		assert.False(t, exists(env.path("d")))
	})

	t.Run("missing path", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.call("delete_file", map[string]interface{}{"path": env.path("ghost")})
		assert.Equal(t, errors.ErrCodeNotFound, res.Code())
		assert.Equal(t, `File or directory not found: "`+env.path("ghost")+`"`, res.Text())
	})

	t.Run("outside the roots", func(t *testing.T) {
		env := newTestEnv(t)
		victim := filepath.Join(env.outside, "victim.txt")
		writeTestFile(t, victim, "x")

		res := env.call("delete_file", map[string]interface{}{"path": victim})
		assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
		assert.True(t, exists(victim))
	})

	t.Run("symlink removes only the link", func(t *testing.T) {
		env := newTestEnv(t)
		victim := filepath.Join(env.outside, "victim.txt")
		writeTestFile(t, victim, "x")
		require.NoError(t, os.Symlink(env.outside, env.path("escape")))

		res := env.call("delete_file", map[string]interface{}{"path": env.path("escape"), "recursive": true})
		assert.Equal(t, "File deleted: "+env.path("escape"), res.Text())
		assert.False(t, exists(env.path("escape")))
		assert.True(t, exists(victim))
	})

	t.Run("through a symlinked directory is denied", func(t *testing.T) {
		env := newTestEnv(t)
		victim := filepath.Join(env.outside, "victim.txt")
		writeTestFile(t, victim, "x")
		require.NoError(t, os.Symlink(env.outside, env.path("escape")))

		res := env.call("delete_file", map[string]interface{}{"path": env.path("escape", "victim.txt")})
		assert.Equal(t, errors.ErrCodeAccessDenied, res.Code())
		assert.True(t, exists(victim))
	})
}
