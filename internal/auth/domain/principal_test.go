package domain

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name       string
		creds      Credentials
		minSecret  int
		wantFields []string
	}{
		{"ok", Credentials{Username: "alice", Secret: "hunter22"}, 6, nil},
		{"no minimum", Credentials{Username: "alice", Secret: "x"}, 0, nil},
		{"empty username", Credentials{Secret: "hunter22"}, 6, []string{"username"}},
		{"empty secret", Credentials{Username: "alice"}, 6, []string{"password"}},
		{"both empty", Credentials{}, 6, []string{"username", "password"}},
		{"short secret", Credentials{Username: "alice", Secret: "abc"}, 6, []string{"password"}},
		{"exactly minimum", Credentials{Username: "alice", Secret: "abcdef"}, 6, nil},
		{"multibyte counts runes", Credentials{Username: "alice", Secret: "ééééé"}, 6, []string{"password"}},
		{"three multibyte runes", Credentials{Username: "alice", Secret: "ééé"}, 6, []string{"password"}},
		{"multibyte at minimum", Credentials{Username: "alice", Secret: "éééééé"}, 6, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate(tt.minSecret)
			if tt.wantFields == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			errs, ok := err.(validation.Errors)
			require.True(t, ok)
			require.Len(t, errs, len(tt.wantFields))
			for _, f := range tt.wantFields {
				require.Contains(t, errs, f)
			}
		})
	}
}

func TestMatchesConfirmation(t *testing.T) {
	rule := MatchesConfirmation("hunter22")
	require.NoError(t, rule("hunter22"))
	require.Error(t, rule("hunter23"))
	require.Error(t, rule(nil))
}
