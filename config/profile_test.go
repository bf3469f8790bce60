package config

import (
	"os"
	"path/filepath"
	"testing"

	"cfgc/common"
	"cfgc/target"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfile = `
[codegen]
target = "arm64-darwin"
output = "asm"
emit-llvm = true
log-level = "warn"

[[targets]]
name = "riscv64-linux"
triple = "riscv64-unknown-linux-gnu"
word-size = 64
endian = "little"
arch = "riscv64"
`

func writeProfile(t *testing.T, text string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), common.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Cleanup(target.Reset)

	path := writeProfile(t, sampleProfile)
	prof, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, prof.Path)
	assert.Equal(t, "arm64-darwin", prof.Target)
	assert.Equal(t, "asm", prof.Output)
	assert.True(t, prof.EmitLLVM)
	assert.False(t, prof.DumpBits)
	assert.Equal(t, "warn", prof.LogLevel)

	require.Len(t, prof.Targets, 1)
	assert.Equal(t, target.Spec{
		Name:     "riscv64-linux",
		Triple:   "riscv64-unknown-linux-gnu",
		WordSize: 64,
		Endian:   "little",
		Arch:     "riscv64",
	}, prof.Targets[0])

	require.NoError(t, prof.RegisterTargets())
	assert.Contains(t, target.Names(), "riscv64-linux")

	// The same targets cannot be added twice.
	assert.Error(t, prof.RegisterTargets())
}

func TestLoadFillsDefaults(t *testing.T) {
	prof, err := Load(writeProfile(t, "[codegen]\ndump-bits = true\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Target, prof.Target)
	assert.Equal(t, "obj", prof.Output)
	assert.Equal(t, "verbose", prof.LogLevel)
	assert.True(t, prof.DumpBits)
	assert.Empty(t, prof.Targets)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeProfile(t, "[codegen]\noutput = \"exe\"\n"))
	assert.ErrorContains(t, err, "exe")

	_, err = Load(writeProfile(t, "[codegen]\nlog-level = \"loud\"\n"))
	assert.ErrorContains(t, err, "loud")

	_, err = Load(writeProfile(t, "[codegen\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestInitRoundTrips(t *testing.T) {
	dir := t.TempDir()

	path, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, common.ConfigFileName), path)

	prof, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Target, prof.Target)
	assert.Equal(t, def.Output, prof.Output)
	assert.Equal(t, def.LogLevel, prof.LogLevel)

	_, err = Init(dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	explicit := writeProfile(t, sampleProfile)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv(common.ConfigEnvVar, "")

	path, ok, err := Locate("")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, path)

	path, ok, err = Locate(explicit)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, explicit, path)

	_, _, err = Locate(filepath.Join(dir, "nope.toml"))
	assert.Error(t, err)

	t.Setenv(common.ConfigEnvVar, explicit)
	path, ok, err = Locate("")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, explicit, path)

	t.Setenv(common.ConfigEnvVar, "")
	_, err = Init(dir)
	require.NoError(t, err)

	path, ok, err = Locate("")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, common.ConfigFileName, path)
}
