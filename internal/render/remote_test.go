package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func writeCredential(t *testing.T, tok string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credential")
	if err := os.WriteFile(path, []byte(tok+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func signedCredential(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "publisher",
		"exp": exp.Unix(),
	})
	// CredentialStatus never verifies the signature, any key works here.
	tok, err := token.SignedString([]byte("remote-issuer-key"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestCredentialStatus(t *testing.T) {
	cases := []struct {
		name    string
		token   string
		wantErr string // empty = credential usable
	}{
		{"valid", signedCredential(t, time.Now().Add(24*time.Hour)), ""},
		{"expired", signedCredential(t, time.Now().Add(-time.Hour)), "expired"},
		{"malformed", "not-a-jwt-at-all", "malformed"},
	}

	for _, tc := range cases {
		pub := &HTTPPublisher{TokenPath: writeCredential(t, tc.token)}
		err := pub.CredentialStatus(context.Background())
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: err = %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestCredentialStatus_MissingFile(t *testing.T) {
	pub := &HTTPPublisher{TokenPath: filepath.Join(t.TempDir(), "absent")}
	if err := pub.CredentialStatus(context.Background()); err == nil {
		t.Fatal("expected an error for a missing credential file")
	}
}
