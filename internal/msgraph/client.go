package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Graph API client using the provided token and
// config. Refreshed tokens are written back to tokenPath.
func NewClient(ctx context.Context, tok *oauth2.Token, cfg *oauth2.Config, tokenPath string) *Client {
	ts := cfg.TokenSource(ctx, tok)
	return newClient(oauth2.NewClient(ctx, &savingTokenSource{ts: ts, path: tokenPath}), graphBaseURL)
}

func newClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = saveToken(s.path, tok)
	return tok, nil
}

// DriveItem is the subset of a OneDrive item returned by uploads.
type DriveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

type createLinkRequest struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`
}

type createLinkResponse struct {
	Link struct {
		WebURL string `json:"webUrl"`
	} `json:"link"`
}

// drivePath builds the path-addressed item segment "root:/a/b.xlsx:".
func drivePath(folder, name string) string {
	var parts []string
	for _, p := range strings.Split(strings.Trim(folder, "/"), "/") {
		if p != "" {
			parts = append(parts, url.PathEscape(p))
		}
	}
	parts = append(parts, url.PathEscape(name))
	return "root:/" + strings.Join(parts, "/") + ":"
}

// Upload stores data as folder/name in the signed-in user's OneDrive,
// replacing any existing file. Simple uploads are limited to 4 MB.
func (c *Client) Upload(ctx context.Context, folder, name string, data []byte) (DriveItem, error) {
	endpoint := fmt.Sprintf("%s/me/drive/%s/content", c.baseURL, drivePath(folder, name))

	var item DriveItem
	if err := c.do(ctx, http.MethodPut, endpoint, "application/octet-stream", bytes.NewReader(data), &item); err != nil {
		return DriveItem{}, fmt.Errorf("uploading %s: %w", name, err)
	}
	return item, nil
}

// CreateLink creates a sharing link for an item. scope is "anonymous" or
// "organization".
func (c *Client) CreateLink(ctx context.Context, itemID, scope string) (string, error) {
	body, err := json.Marshal(createLinkRequest{Type: "view", Scope: scope})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/me/drive/items/%s/createLink", c.baseURL, url.PathEscape(itemID))

	var resp createLinkResponse
	if err := c.do(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(body), &resp); err != nil {
		return "", fmt.Errorf("creating share link: %w", err)
	}
	return resp.Link.WebURL, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph API request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding graph response: %w", err)
	}
	return nil
}
