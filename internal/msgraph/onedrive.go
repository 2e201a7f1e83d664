package msgraph

import (
	"context"
	"fmt"
	"io"
	"os"
)

// OneDrive shares exports by uploading them to the user's OneDrive and
// creating a view link.
type OneDrive struct {
	TenantID  string
	ClientID  string
	Folder    string
	LinkScope string
	TokenPath string
	// Prompt receives device-code sign-in instructions. Defaults to stderr.
	Prompt io.Writer

	client *Client
}

// Share uploads data as Folder/name and returns a sharing link, or the
// item's web URL when the link scope is empty or "none".
func (o *OneDrive) Share(ctx context.Context, name string, data []byte) (string, error) {
	c, err := o.getClient(ctx)
	if err != nil {
		return "", err
	}
	item, err := c.Upload(ctx, o.Folder, name, data)
	if err != nil {
		return "", err
	}
	if o.LinkScope == "" || o.LinkScope == "none" {
		return item.WebURL, nil
	}
	return c.CreateLink(ctx, item.ID, o.LinkScope)
}

func (o *OneDrive) getClient(ctx context.Context) (*Client, error) {
	if o.client != nil {
		return o.client, nil
	}
	prompt := o.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	tok, cfg, err := Authenticate(ctx, o.TenantID, o.ClientID, o.TokenPath, prompt)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	o.client = NewClient(ctx, tok, cfg, o.TokenPath)
	return o.client, nil
}
