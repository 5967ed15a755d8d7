package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const positiveCSV = "user,conspiracy,science\np1,1,0\np2,1,1\np3,2,0\np4,1,0\n"
const negativeCSV = "user,conspiracy,science\nn1,0,1\nn2,0,2\nn3,1,1\nn4,0,1\n"

func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "anti_sub.csv"), []byte(positiveCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pro_sub.csv"), []byte(negativeCSV), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	dir := writeInputs(t)
	weights := filepath.Join(dir, "Results4.csv")

	out, err := execute(t,
		"--positive", filepath.Join(dir, "anti_sub.csv"),
		"--negative", filepath.Join(dir, "pro_sub.csv"),
		"--assembled", filepath.Join(dir, "good3.csv"),
		"--weights", weights,
		"--errors", filepath.Join(dir, "erroravg4.txt"),
		"--support-floor", "0",
		"--iterations", "10",
		"--seed", "7",
		"--truncate",
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "10 fits")
	assert.Contains(t, out, "False Positive = ")

	data, err := os.ReadFile(weights)
	require.NoError(t, err)
	assert.Contains(t, string(data), "conspiracy,")
	assert.Contains(t, string(data), "science,")
}

func TestRootCommandConfigFileAndEnv(t *testing.T) {
	dir := writeInputs(t)
	cfgPath := filepath.Join(dir, "gullibility.yaml")
	cfg := "support-floor: 0\niterations: 4\nseed: 3\ntruncate: true\npaths:\n" +
		"  positive: " + filepath.Join(dir, "anti_sub.csv") + "\n" +
		"  negative: " + filepath.Join(dir, "pro_sub.csv") + "\n" +
		"  assembled: \"\"\n" +
		"  weights: \"\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	errorsPath := filepath.Join(dir, "errors.txt")
	t.Setenv("GULLIBILITY_PATHS_ERRORS", errorsPath)
	t.Setenv("GULLIBILITY_ITERATIONS", "6")

	out, err := execute(t, "--config", cfgPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "6 fits")

	_, err = os.Stat(errorsPath)
	assert.NoError(t, err)
}

func TestRootCommandRejectsBadInput(t *testing.T) {
	tests := map[string][]string{
		"unknown profile":    {"--profile", "block", "--log-level", "error"},
		"unknown log level":  {"--log-level", "verbose"},
		"invalid iterations": {"--iterations", "0", "--log-level", "error"},
		"missing input":      {"--positive", "does-not-exist.csv", "--log-level", "error"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}
