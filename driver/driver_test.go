package driver

import (
	"bufio"
	"bytes"
	"debug/elf"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cfgc/mcgen"
	"cfgc/report"
	"cfgc/target"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup captures diagnostics, restores the target table afterwards and
// writes ir to `<dir>/<name>.ll`.
func setup(t *testing.T, name, ir string) (Source, *bytes.Buffer) {
	t.Helper()

	diag := &bytes.Buffer{}
	report.InitReporter(report.LogLevelVerbose, diag)
	t.Cleanup(func() { report.InitReporter(report.LogLevelVerbose, nil) })
	t.Cleanup(target.Reset)

	path := filepath.Join(t.TempDir(), name+".ll")
	require.NoError(t, os.WriteFile(path, []byte(ir), 0o644))

	return SourceFile(path), diag
}

func TestParseOutput(t *testing.T) {
	for _, o := range []Output{PrintAsm, AsmFile, ObjFile, Memory, LLVMAsmFile} {
		got, err := ParseOutput(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}

	_, err := ParseOutput("exe")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Output(42).String())
}

func TestSourceStem(t *testing.T) {
	assert.Equal(t, "dir/add", SourceFile("dir/add.ll").Stem())
	assert.Equal(t, "add", SourceText("add", irAdd).Stem())
	assert.Equal(t, "dir/add.opt.ll", SourceFile("dir/add.ll").irOutputFile())
	assert.Equal(t, "dir/add.ll", SourceFile("dir/add.bc").irOutputFile())
	assert.Equal(t, "add.ll", SourceText("add", irAdd).irOutputFile())
}

// S1
func TestObjectFileForAMD64Linux(t *testing.T) {
	src, _ := setup(t, "add", irAdd)

	require.False(t, SetTarget("amd64-linux"))
	assert.Equal(t, "x86_64-pc-linux-gnu", CurrentTriple())

	obj, err := Codegen(src, false, false, ObjFile)
	require.NoError(t, err)
	assert.Nil(t, obj)

	f, err := elf.Open(src.Stem() + ".o")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, elf.ELFCLASS64, f.Class)
	assert.Equal(t, elf.ET_REL, f.Type)
	assert.Equal(t, elf.EM_X86_64, f.Machine)
}

// S2
func TestMachOAssemblyForARM64Darwin(t *testing.T) {
	src, _ := setup(t, "add", irAdd)

	require.False(t, SetTarget("arm64-darwin"))

	_, err := Codegen(src, false, false, AsmFile)
	require.NoError(t, err)

	f, err := os.Open(src.Stem() + ".s")
	require.NoError(t, err)
	defer f.Close()

	var first string
	for sc := bufio.NewScanner(f); sc.Scan(); {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		first = line
		break
	}

	assert.Contains(t, first, "__TEXT,__text")
}

// S3
func TestUnknownTargetKeepsPrevious(t *testing.T) {
	src, diag := setup(t, "add", irAdd)

	require.False(t, SetTarget("amd64-linux"))
	assert.True(t, SetTarget("no-such-target"))
	assert.Contains(t, diag.String(), "no-such-target")
	assert.Equal(t, "x86_64-pc-linux-gnu", CurrentTriple())

	obj, err := Codegen(src, false, false, Memory)
	require.NoError(t, err)
	assert.Equal(t, "amd64", obj.Arch)
}

// S4
func TestSwitchAssemblyHasJumpTable(t *testing.T) {
	src, _ := setup(t, "dispatch", irSwitch8)
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, false, false, AsmFile)
	require.NoError(t, err)

	asm, err := os.ReadFile(src.Stem() + ".s")
	require.NoError(t, err)
	assert.Contains(t, string(asm), "JTI")
}

// S5
func TestMemoryMatchesObjectFile(t *testing.T) {
	src, _ := setup(t, "add", irAdd)
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, false, false, ObjFile)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(src.Stem() + ".o")
	require.NoError(t, err)

	obj, err := Codegen(src, false, false, Memory)
	require.NoError(t, err)
	assert.Equal(t, onDisk, obj.Bytes())
	assert.Equal(t, src.Path+"-objectbuffer", obj.Name)
}

// S6
func TestEmptyModuleObject(t *testing.T) {
	src, _ := setup(t, "empty", irEmpty)
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, false, false, ObjFile)
	require.NoError(t, err)

	f, err := elf.Open(src.Stem() + ".o")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, elf.ET_REL, f.Type)

	syms, err := f.Symbols()
	if err != nil {
		assert.ErrorIs(t, err, elf.ErrNoSymbols)
	}
	for _, s := range syms {
		switch elf.ST_TYPE(s.Info) {
		case elf.STT_FILE, elf.STT_SECTION:
			continue
		}
		assert.Equal(t, elf.SHN_UNDEF, s.Section, "defined symbol %s", s.Name)
	}
}

func TestPrintAsmGoesToStdout(t *testing.T) {
	src, _ := setup(t, "add", irAdd)
	require.False(t, SetTarget("amd64-linux"))

	out := &bytes.Buffer{}
	_, err := Run(src, Options{Output: PrintAsm, Stdout: out})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "add:")
	assert.NoFileExists(t, "-")
}

func TestLLVMAsmFileIsOptimized(t *testing.T) {
	src, _ := setup(t, "lookup", irConstSwitch)
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, false, false, LLVMAsmFile)
	require.NoError(t, err)

	ir, err := os.ReadFile(src.Stem() + ".opt.ll")
	require.NoError(t, err)
	assert.Contains(t, string(ir), "switch.table")
	assert.Contains(t, string(ir), `target triple = "x86_64-pc-linux-gnu"`)

	// The source itself is untouched.
	orig, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	assert.Equal(t, irConstSwitch, string(orig))
}

func TestEmitLLVMAlongsideObject(t *testing.T) {
	src, _ := setup(t, "add", irAdd)
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, true, false, ObjFile)
	require.NoError(t, err)

	assert.FileExists(t, src.Stem()+".o")
	assert.FileExists(t, src.Stem()+".opt.ll")
}

func TestInMemorySource(t *testing.T) {
	_, _ = setup(t, "unused", irAdd)
	require.False(t, SetTarget("amd64-linux"))

	id := filepath.Join(t.TempDir(), "add")
	_, err := Codegen(SourceText(id, irAdd), true, false, AsmFile)
	require.NoError(t, err)

	assert.FileExists(t, id+".s")
	assert.FileExists(t, id+".ll")
}

func TestDumpBits(t *testing.T) {
	src, diag := setup(t, "dispatch", irSwitch8)
	require.False(t, SetTarget("amd64-linux"))

	obj, err := Codegen(src, false, true, Memory)
	require.NoError(t, err)
	require.NotNil(t, obj)

	out := diag.String()
	assert.Contains(t, out, "dispatch")
	assert.Contains(t, out, ".text (")
	assert.Contains(t, out, "00000000  ")
	assert.Contains(t, out, "R_X86_64_PLT32")
}

func TestDumpBitsSummarizesOptimizedIR(t *testing.T) {
	src, diag := setup(t, "folded", irFolded)
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, false, true, Memory)
	require.NoError(t, err)

	out := diag.String()
	assert.NotContains(t, out, "no IR summary")
	assert.Contains(t, out, "target triple: x86_64-pc-linux-gnu")
	assert.Regexp(t, `pick\s+define\s+ccc\s+1\s`, out)
}

func TestDumpBitsIgnoredForFiles(t *testing.T) {
	src, diag := setup(t, "add", irAdd)
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, false, true, ObjFile)
	require.NoError(t, err)
	assert.Contains(t, diag.String(), "--dump-bits only applies to memory output")
}

func TestParseErrorAbandonsRun(t *testing.T) {
	src, diag := setup(t, "broken", "define i64 @f( {")
	require.False(t, SetTarget("amd64-linux"))

	_, err := Codegen(src, true, false, ObjFile)
	require.Error(t, err)

	var fatal *mcgen.FatalError
	assert.False(t, errors.As(err, &fatal))
	assert.Contains(t, diag.String(), "Parse Error")
	assert.NoFileExists(t, src.Stem()+".o")
	assert.NoFileExists(t, src.Stem()+".opt.ll")
	assert.True(t, report.AnyErrors())
}

func TestOutputErrorIsReported(t *testing.T) {
	_, diag := setup(t, "unused", irAdd)
	require.False(t, SetTarget("amd64-linux"))

	id := filepath.Join(t.TempDir(), "missing", "add")
	_, err := Codegen(SourceText(id, irAdd), false, false, ObjFile)
	require.Error(t, err)
	assert.Contains(t, diag.String(), "Output Error")
}

func TestRecorderSeesPipeline(t *testing.T) {
	src, _ := setup(t, "add", irAdd)
	require.False(t, SetTarget("amd64-linux"))

	var pl mcgen.PassLog
	_, err := Run(src, Options{Output: Memory, Recorder: &pl})
	require.NoError(t, err)

	if len(pl.Entries) == 0 {
		t.Skip("LLVM pass logging was not captured on this host")
	}
	assert.Equal(t, mcgen.DefaultPipeline().PassNames(), pl.ForFunction("add"))
}
