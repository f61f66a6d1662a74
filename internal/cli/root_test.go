package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "scriptplan", cmd.Use)
	assert.Contains(t, cmd.Long, "migration order")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"ingest", "plan", "graph", "assets", "status", "validate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestPlanCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	planCmd, _, err := cmd.Find([]string{"plan"})
	require.NoError(t, err)

	for _, name := range []string{"tenant", "rules", "dry-run", "by-priority"} {
		assert.NotNil(t, planCmd.Flags().Lookup(name), name)
	}

	tenantFlag := planCmd.Flags().Lookup("tenant")
	assert.Equal(t, []string{"true"}, tenantFlag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
}

func TestIngestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	ingestCmd, _, err := cmd.Find([]string{"ingest"})
	require.NoError(t, err)

	assert.NotNil(t, ingestCmd.Flags().Lookup("tenant"))
	rescan := ingestCmd.Flags().Lookup("rescan")
	require.NotNil(t, rescan)
	assert.Equal(t, "false", rescan.DefValue)
}

func TestExecute_InvalidFormat(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	code := Execute(context.Background(), []string{"--format", "xml", "assets", "--tenant", "t1"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "invalid format")
	assert.Empty(t, stdout.String())
}

func TestExecute_UsageErrorIsCommandError(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	code := Execute(context.Background(), []string{"plan"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "required flag")
	assert.Contains(t, stderr.String(), "Error [E001]")
}

func TestExecute_JSONErrorEnvelope(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	db := tempDB(t)

	code := Execute(context.Background(),
		[]string{"--db", db, "--format", "json", "status", "missing", "skipped"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "asset not found")
}

func TestExecute_Success(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	db := tempDB(t)

	code := Execute(context.Background(),
		[]string{"--db", db, "ingest", "testdata/scan.yaml"}, stdout, stderr)
	assert.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "Created:    3")
}
