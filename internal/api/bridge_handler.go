package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/filerepo"
)

type bridgeRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type bridgeResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type bridgePathParams struct {
	Path string `json:"path"`
}

type bridgeWriteParams struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// handleFileBridge serves the file-operation bridge: one POST per
// primitive, {method, params} in, {success, data?, error?} out. The
// handler always answers 200; failures travel inside the envelope so the
// remote backend can surface the original message.
func (s *Server) handleFileBridge(w http.ResponseWriter, r *http.Request) {
	var req bridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithJSON(w, http.StatusOK, bridgeResponse{Success: false, Error: "Invalid bridge request"})
		return
	}

	data, err := s.dispatchBridge(r, req)
	if err != nil {
		RespondWithJSON(w, http.StatusOK, bridgeResponse{Success: false, Error: err.Error()})
		return
	}
	RespondWithJSON(w, http.StatusOK, bridgeResponse{Success: true, Data: data})
}

func (s *Server) dispatchBridge(r *http.Request, req bridgeRequest) (any, error) {
	ctx := r.Context()

	switch req.Method {
	case "ensureDirectory":
		var p bridgePathParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errors.New("Invalid params")
		}
		return nil, s.bridgeBackend.EnsureDirectory(ctx, p.Path)

	case "writeFile":
		var p bridgeWriteParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errors.New("Invalid params")
		}
		return nil, s.bridgeBackend.WriteFile(ctx, p.Path, p.Content)

	case "readFile":
		var p bridgePathParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errors.New("Invalid params")
		}
		content, err := s.bridgeBackend.ReadFile(ctx, p.Path)
		if err != nil {
			if errors.Is(err, filerepo.ErrNotFound) {
				return nil, fmt.Errorf("File not found: %s", p.Path)
			}
			return nil, err
		}
		return content, nil

	case "pathExists":
		var p bridgePathParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errors.New("Invalid params")
		}
		exists, _ := s.bridgeBackend.PathExists(ctx, p.Path)
		return exists, nil

	case "listDirectories":
		var p bridgePathParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errors.New("Invalid params")
		}
		return s.bridgeBackend.ListDirectories(ctx, p.Path)

	case "readDirectoryRecursive":
		var p bridgePathParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errors.New("Invalid params")
		}
		return s.bridgeBackend.ReadDirectoryRecursive(ctx, p.Path)

	case "removeDirectory":
		var p bridgePathParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, errors.New("Invalid params")
		}
		return nil, s.bridgeBackend.RemoveDirectory(ctx, p.Path)

	default:
		return nil, fmt.Errorf("Unknown bridge method: %s", req.Method)
	}
}
