// Package graphql holds a minimal GraphQL-over-HTTP client for the
// plugin registry mutations. It speaks plain POST requests; the two
// mutations it issues do not justify a full client library.
package graphql

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client posts GraphQL operations to a single endpoint.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a client for the given GraphQL endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

// Mutate posts a GraphQL operation and decodes its data payload into
// out (which may be nil). GraphQL-level errors become Go errors carrying
// the first message.
func (c *Client) Mutate(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql endpoint returned status %s", resp.Status)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return errors.New(decoded.Errors[0].Message)
	}

	if out != nil && decoded.Data != nil {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return fmt.Errorf("failed to decode graphql data: %w", err)
		}
	}
	return nil
}

const createPluginMutation = `
mutation CreatePlugin($input: CreatePluginInput!) {
  createPlugin(input: $input) {
    id
    pluginId
  }
}`

// CreatePlugin registers the plugin row in the remote registry.
func (c *Client) CreatePlugin(ctx context.Context, pluginID string) error {
	variables := map[string]any{
		"input": map[string]any{"pluginId": pluginID},
	}
	return c.Mutate(ctx, createPluginMutation, variables, nil)
}

const uploadPluginZipMutation = `
mutation UploadPluginZip($input: UploadPluginZipInput!) {
  uploadPluginZip(input: $input) {
    success
  }
}`

// UploadPluginZip ships the raw plugin archive to the registry, base64
// encoded. The activate flag is passed through untouched; installation
// always sends false and leaves activation to the admin UI.
func (c *Client) UploadPluginZip(ctx context.Context, zipData []byte, activate bool) (bool, error) {
	variables := map[string]any{
		"input": map[string]any{
			"pluginZip": base64.StdEncoding.EncodeToString(zipData),
			"activate":  activate,
		},
	}

	var data struct {
		UploadPluginZip struct {
			Success bool `json:"success"`
		} `json:"uploadPluginZip"`
	}
	if err := c.Mutate(ctx, uploadPluginZipMutation, variables, &data); err != nil {
		return false, err
	}
	return data.UploadPluginZip.Success, nil
}
