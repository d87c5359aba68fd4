package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"serve", "migrate", "version"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "separate value",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "with equals",
			args:     []string{"--config=/etc/credauth.yaml", "--help"},
			wantFlag: "/etc/credauth.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile = ""

			cmd := NewRootCmd()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestServeCommand_Flags(t *testing.T) {
	cmd := NewServeCmd()

	for _, name := range []string{
		"port", "database-driver", "database-url", "issuer", "allow-insecure-signing-key",
		"hash-algorithm", "min-secret-length", "cors-allowed-origins", "log-level",
		"log-format", "shutdown-grace-period",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.Nil(t, cmd.Flags().Lookup("signing-key"), "secrets stay out of argv")
}

func TestServeCommand_RejectsMissingSigningKey(t *testing.T) {
	configFile = ""
	t.Setenv("AUTH_SIGNING_KEY", "")
	t.Setenv("AUTH_ALLOW_INSECURE_SIGNING_KEY", "")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"serve", "--database-url", filepath.Join(t.TempDir(), "a.db"), "--log-level", "error"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SigningKey")
}

func TestMigrateCommand(t *testing.T) {
	configFile = ""
	t.Setenv("AUTH_DATABASE_DRIVER", "")
	dbPath := filepath.Join(t.TempDir(), "credauth.db")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"migrate", "--database-url", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Running sqlite migrations")
	assert.Contains(t, buf.String(), "Migrations completed successfully")

	_, err := os.Stat(dbPath)
	require.NoError(t, err)
}

func TestMigrateCommand_UnknownDriver(t *testing.T) {
	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"migrate", "--database-driver", "mysql"})

	require.Error(t, cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "1.2.3 (commit: abc, built: today)"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "1.2.3 (commit: abc")
}
