package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koineramitranjan/threads/pkg/adapters/process"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"."}, cfg.ScriptDirs)
	assert.Empty(t, cfg.Runtime)
	assert.Empty(t, cfg.ExecArgv)
	assert.Equal(t, process.DefaultBasePort, cfg.InspectBasePort)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
script_dirs:
  - ./scripts
  - /opt/workers
runtime: node
exec_argv:
  - --inspect
  - --max-old-space-size=256
inspect_base_port: 9400
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"./scripts", "/opt/workers"}, cfg.ScriptDirs)
	assert.Equal(t, "node", cfg.Runtime)
	assert.Equal(t, []string{"--inspect", "--max-old-space-size=256"}, cfg.ExecArgv)
	assert.Equal(t, 9400, cfg.InspectBasePort)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("runtime: [unterminated"))
	assert.Error(t, err)
}

func TestParse_FillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("runtime: node"))
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.ScriptDirs)
	assert.Equal(t, process.DefaultBasePort, cfg.InspectBasePort)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime: deno\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "deno", cfg.Runtime)
}

func TestPortAllocator(t *testing.T) {
	t.Run("default base shares the process-wide allocator", func(t *testing.T) {
		assert.Same(t, process.SharedAllocator, Default().PortAllocator())
	})

	t.Run("custom base seeds a per-config allocator", func(t *testing.T) {
		cfg := &Config{InspectBasePort: 9400}
		alloc := cfg.PortAllocator()
		assert.Same(t, alloc, cfg.PortAllocator(), "one allocator per config")
		assert.Equal(t, 9400, alloc.Next())
		assert.Equal(t, 9401, alloc.Next())
	})

	t.Run("unset base falls back to the shared allocator", func(t *testing.T) {
		cfg := &Config{}
		assert.Same(t, process.SharedAllocator, cfg.PortAllocator())
	})
}

func TestResolveScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "worker.js")
	require.NoError(t, os.WriteFile(script, []byte("// noop"), 0o644))

	cfg := &Config{ScriptDirs: []string{dir}}

	t.Run("absolute path passes through", func(t *testing.T) {
		got, err := cfg.ResolveScript(script)
		require.NoError(t, err)
		assert.Equal(t, script, got)
	})

	t.Run("name resolves against script dirs", func(t *testing.T) {
		got, err := cfg.ResolveScript("worker.js")
		require.NoError(t, err)
		assert.Equal(t, script, got)
	})

	t.Run("unknown name fails", func(t *testing.T) {
		_, err := cfg.ResolveScript("missing.js")
		assert.Error(t, err)
	})
}
