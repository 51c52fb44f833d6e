package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for taskdash resources.
	uriScheme = "taskdash://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "functions",
		Name:        "functions",
		Description: "Registered functions with their parameters",
		MIMEType:    "application/json",
	}, s.handleFunctionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{recordId}",
		Name:        "record",
		Description: "A single invocation record",
		MIMEType:    "application/json",
	}, s.handleRecordResource)
}

// handleFunctionsResource returns the registered functions.
func (s *Server) handleFunctionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type functionInfo struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Params      []string `json:"params"`
	}

	fns := s.ports.Registry.List()
	infos := make([]functionInfo, len(fns))
	for i := range fns {
		params := fns[i].Params
		if params == nil {
			params = []string{}
		}
		infos[i] = functionInfo{
			Name:        fns[i].Name,
			Description: fns[i].Description,
			Params:      params,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling functions: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRecordResource returns one invocation record.
func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id, ok := extractRecordID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.History.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting record %d: %w", id, err)
	}

	data, err := json.MarshalIndent(toRecordOutput(record), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling record: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRecordID extracts the record ID from a URI like taskdash://records/{recordId}.
func extractRecordID(uri string) (int64, bool) {
	const prefix = uriScheme + "records/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
