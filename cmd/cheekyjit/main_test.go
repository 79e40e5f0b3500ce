package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Most scenarios run with DRY_RUN=1 so they exercise parsing, lowering, and
// linking without requiring executable-memory permissions on the test host.
func withDryRun(t *testing.T) {
	t.Helper()
	require.NoError(t, os.Setenv("DRY_RUN", "1"))
	t.Cleanup(func() { require.NoError(t, os.Unsetenv("DRY_RUN")) })

	// compileAndRun always writes bytecode.out to the working directory;
	// run from a scratch directory so tests don't litter the repo with it.
	prevDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prevDir)) })
}

func TestDoMain_Version(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	rc := doMain(&stdOut, &stdErr, []string{"-version"})
	require.Equal(t, 0, rc)
	require.NotEmpty(t, stdOut.String())
}

func TestDoMain_NoJIT_RunsSampleProgramInterpreted(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	rc := doMain(&stdOut, &stdErr, []string{"-no-jit"})
	require.Equal(t, 0, rc)
	require.Contains(t, stdOut.String(), "Locals:")
}

func TestDoMain_DryRunNop_AssemblesWithoutMapping(t *testing.T) {
	withDryRun(t)
	var stdOut, stdErr bytes.Buffer
	rc := doMain(&stdOut, &stdErr, []string{"-nop"})
	require.Equal(t, 0, rc)
	require.Contains(t, stdOut.String(), "DRY_RUN")

	// 3x NOP + RET, 4 bytes each.
	code, err := os.ReadFile(bytecodeOutPath)
	require.NoError(t, err)
	require.Len(t, code, 16)
	require.Contains(t, stdErr.String(), "wrote 16 bytes")
}

func TestDoMain_DryRunFile_ReportsErrorForMissingFile(t *testing.T) {
	withDryRun(t)
	var stdOut, stdErr bytes.Buffer
	rc := doMain(&stdOut, &stdErr, []string{"-i", "/nonexistent/path.asm"})
	require.Equal(t, 1, rc)
	require.Contains(t, stdErr.String(), "ERROR")
}

func TestDoMain_DryRunFile_CompilesValidProgram(t *testing.T) {
	withDryRun(t)
	path := t.TempDir() + "/prog.asm"
	require.NoError(t, os.WriteFile(path, []byte("ENTRY:\n    LOAD_IMM 1\n    RET\n"), 0o600))

	var stdOut, stdErr bytes.Buffer
	rc := doMain(&stdOut, &stdErr, []string{"-i", path})
	require.Equal(t, 0, rc)
	require.Contains(t, stdOut.String(), "DRY_RUN")
}

func TestDoMain_UnknownFlagReturnsUsageExitCode(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	rc := doMain(&stdOut, &stdErr, []string{"-not-a-flag"})
	require.Equal(t, 1, rc)
}
