package filerepo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// BridgeBackend proxies every file operation over HTTP to a process that
// does have filesystem access. Each operation is a single POST carrying
// {method, params}; the response is {success, data?, error?}.
type BridgeBackend struct {
	endpoint string
	client   *http.Client
}

// NewBridgeBackend creates a Backend that talks to the file bridge at
// the given endpoint URL.
func NewBridgeBackend(endpoint string) *BridgeBackend {
	return &BridgeBackend{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type bridgeRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

type bridgeResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// call performs one bridge round-trip and unmarshals the data payload
// into out when out is non-nil.
func (b *BridgeBackend) call(ctx context.Context, method string, params map[string]any, out any) error {
	body, err := json.Marshal(bridgeRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %s", resp.Status)
	}

	var result bridgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode bridge response: %w", err)
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "operation failed"
		}
		return errors.New(msg)
	}

	if out != nil && len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, out); err != nil {
			return fmt.Errorf("failed to decode bridge data: %w", err)
		}
	}
	return nil
}

func (b *BridgeBackend) EnsureDirectory(ctx context.Context, path string) error {
	return b.call(ctx, "ensureDirectory", map[string]any{"path": path}, nil)
}

func (b *BridgeBackend) WriteFile(ctx context.Context, path, content string) error {
	return b.call(ctx, "writeFile", map[string]any{"path": path, "content": content}, nil)
}

func (b *BridgeBackend) ReadFile(ctx context.Context, path string) (string, error) {
	var content string
	if err := b.call(ctx, "readFile", map[string]any{"path": path}, &content); err != nil {
		return "", err
	}
	return content, nil
}

func (b *BridgeBackend) PathExists(ctx context.Context, path string) (bool, error) {
	var exists bool
	if err := b.call(ctx, "pathExists", map[string]any{"path": path}, &exists); err != nil {
		return false, nil
	}
	return exists, nil
}

func (b *BridgeBackend) ListDirectories(ctx context.Context, path string) ([]string, error) {
	var dirs []string
	if err := b.call(ctx, "listDirectories", map[string]any{"path": path}, &dirs); err != nil {
		return nil, err
	}
	return dirs, nil
}

func (b *BridgeBackend) ReadDirectoryRecursive(ctx context.Context, path string) (map[string]string, error) {
	files := make(map[string]string)
	if err := b.call(ctx, "readDirectoryRecursive", map[string]any{"path": path}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (b *BridgeBackend) RemoveDirectory(ctx context.Context, path string) error {
	return b.call(ctx, "removeDirectory", map[string]any{"path": path}, nil)
}
