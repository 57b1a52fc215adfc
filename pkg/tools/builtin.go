package tools

import (
	"time"

	"github.com/spf13/afero"

	"mcp-file-gateway/pkg/sandbox"
)

// Options tunes the builtin tools
type Options struct {
	// MaxReadBytes caps how much read_file and diff_files load per file
	MaxReadBytes int64
	// Now is the clock used by get_time; nil means time.Now
	Now func() time.Time
}

const defaultMaxReadBytes = 10 << 20

// BuiltinTools returns the static tool table in catalog order
func BuiltinTools(sb *sandbox.Sandbox, fs afero.Fs, opts Options) []Tool {
	if opts.MaxReadBytes <= 0 {
		opts.MaxReadBytes = defaultMaxReadBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	base := fsTool{sandbox: sb, fs: fs}
	return []Tool{
		&HelloWorldTool{},
		&GetTimeTool{now: opts.Now},
		&ReadFileTool{fsTool: base, maxBytes: opts.MaxReadBytes},
		&WriteFileTool{fsTool: base},
		&DeleteFileTool{fsTool: base},
		&ListFilesTool{fsTool: base},
		&DiffFilesTool{fsTool: base, maxBytes: opts.MaxReadBytes},
	}
}
