package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nidscore/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSignatures = `
- sid: 1000
  msg: admin login
  rule: 'content:"login admin"; flowvar_set:user,"admin";'
- sid: 1001
  msg: admin runs a command
  rule: 'flowvar:user,"admin"; content:"rm -rf";'
- sid: 1002
  rule: 'content:"Hi"; isdataat:5,relative;'
- sid: 1003
  rule: 'isdataat:4,relative;'
`

const testPackets = `
packets:
  - src: 10.0.0.1:40000
    dst: 10.0.0.2:22
    payload: login admin
  - src: 10.0.0.2:22
    dst: 10.0.0.1:40000
    payload: rm -rf /tmp
  - src: 10.0.0.3:40000
    dst: 10.0.0.2:22
    payload: rm -rf /tmp
  - src: 10.0.0.4:1
    dst: 10.0.0.5:2
    payload: Hi all!
`

func writeTestFiles(t *testing.T) (dir string, cfgPath string) {
	t.Helper()
	dir = t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(testSignatures), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "packets.yaml"), []byte(testPackets), 0o600))

	cfg := "logLevel: warn\nworkers: 2\nsignatureFiles: [rules.yaml]\nalertLog: " + filepath.Join(dir, "alerts") + "\n"
	cfgPath = filepath.Join(dir, "nids.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	// Arrange
	_, cfgPath := writeTestFiles(t)

	// Act
	out, err := run(t, "check", "-c", cfgPath)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "files=1 loaded=3 failed=1 disabled=0")

	_, err = run(t, "check", "-c", cfgPath, "--strict")
	assert.Error(t, err)
}

func TestReplay(t *testing.T) {
	// Arrange
	dir, cfgPath := writeTestFiles(t)

	// Act
	_, err := run(t, "replay", "-c", cfgPath, "-p", filepath.Join(dir, "packets.yaml"))

	// Assert
	require.NoError(t, err)

	bb, err := os.ReadFile(filepath.Join(dir, "alerts", logging.FileName))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(bb)), "\n")
	assert.Len(t, lines, 3)
	log := string(bb)
	assert.Contains(t, log, `"signature_id":1000`)
	assert.Contains(t, log, `"signature_id":1001`)
	assert.Contains(t, log, `"signature_id":1002`)
	assert.Contains(t, log, `"signature":"admin runs a command"`)
}

func TestReplayRequiresPackets(t *testing.T) {
	_, cfgPath := writeTestFiles(t)

	_, err := run(t, "replay", "-c", cfgPath)

	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, cfgPath := writeTestFiles(t)

	_, err := run(t, "check", "-c", cfgPath, "--log-level", "loud")

	assert.Error(t, err)
}
