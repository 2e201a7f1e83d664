package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Files.ReadWrite",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenPath returns where the Graph token is cached below the data root.
func TokenPath(base string) string {
	return filepath.Join(base, "auth", "msgraph_tokens.json")
}

// oauth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken loads a previously saved token from disk. A missing file yields
// a nil token and no error.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token to disk.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticate returns a usable Graph token. It loads the cached token,
// refreshes it if needed, or runs the device code flow, printing the
// sign-in instructions to prompt.
func Authenticate(ctx context.Context, tenantID, clientID, tokenPath string, prompt io.Writer) (*oauth2.Token, *oauth2.Config, error) {
	cfg := oauth2Config(tenantID, clientID)

	tok, err := loadToken(tokenPath)
	if err != nil {
		// Corrupt token: warn and re-auth.
		fmt.Fprintf(prompt, "Warning: %v\n", err)
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, cfg, nil
	}

	// Try to refresh.
	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err2 := saveToken(tokenPath, refreshed); err2 != nil {
				fmt.Fprintf(prompt, "Warning: could not save refreshed token: %v\n", err2)
			}
			return refreshed, cfg, nil
		}
		fmt.Fprintf(prompt, "Token refresh failed (%v), re-authenticating...\n", err)
	}

	// Device code flow.
	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(prompt)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, nil, fmt.Errorf("device authentication failed: %w", err)
	}

	if err := saveToken(tokenPath, newTok); err != nil {
		fmt.Fprintf(prompt, "Warning: could not save token: %v\n", err)
	}

	return newTok, cfg, nil
}
