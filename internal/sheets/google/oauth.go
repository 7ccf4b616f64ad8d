package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// ErrNoOAuthClient means neither GOOGLE_OAUTH_CLIENT_JSON nor
// GOOGLE_OAUTH_CLIENT_FILE is set.
var ErrNoOAuthClient = errors.New("missing OAuth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")

// envBytes returns the inline value of jsonKey, or the contents of the file
// named by fileKey. Both empty yields nil without error.
func envBytes(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileKey, err)
		}
		return b, nil
	}
	return nil, nil
}

// OAuthConfigFromEnv builds the installed-app OAuth config for the Sheets scope.
func OAuthConfigFromEnv() (*oauth2.Config, error) {
	b, err := envBytes("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoOAuthClient
	}
	cfg, err := googleauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

// tokenFromEnv reads a saved token. It returns nil when none is configured.
func tokenFromEnv() (*oauth2.Token, error) {
	b, err := envBytes("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil || b == nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok as JSON, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// tokenSourceFromEnv picks the credentials for the Sheets API. A saved OAuth
// token wins over a Service Account.
func tokenSourceFromEnv(ctx context.Context) (oauth2.TokenSource, string, error) {
	tok, err := tokenFromEnv()
	if err != nil {
		return nil, "", fmt.Errorf("oauth credentials: %w", err)
	}
	if tok != nil {
		cfg, err := OAuthConfigFromEnv()
		if err != nil {
			return nil, "", fmt.Errorf("oauth credentials: %w", err)
		}
		return cfg.TokenSource(ctx, tok), "oauth", nil
	}

	b, err := envBytes("GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE")
	if err == nil && b == nil {
		b, err = envBytes("", "GOOGLE_APPLICATION_CREDENTIALS")
	}
	if err != nil {
		return nil, "", fmt.Errorf("service account credentials: %w", err)
	}
	if b == nil {
		return nil, "", errors.New("missing credentials (set GOOGLE_OAUTH_TOKEN_JSON/FILE with an OAuth client, or GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	jwt, err := googleauth.JWTConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, "", fmt.Errorf("service account credentials: %w", err)
	}
	return jwt.TokenSource(ctx), "service_account", nil
}
