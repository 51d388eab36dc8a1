package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/colony-counter-mcp/internal/config"
)

func newTestServer() *Server {
	return New(config.DefaultConfig(), zerolog.Nop())
}

func TestNew(t *testing.T) {
	s := newTestServer()
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.store == nil {
		t.Fatal("New() did not initialize session store")
	}
	if s.rec.Tolerance != config.DefaultConfig().Tolerance {
		t.Errorf("reconciler tolerance: got %g", s.rec.Tolerance)
	}
}

func TestNew_NilConfig(t *testing.T) {
	s := New(nil, zerolog.Nop())
	if s.cfg == nil {
		t.Fatal("New(nil) should fall back to the default config")
	}
	if s.cfg.Params != config.DefaultConfig().Params {
		t.Errorf("default params: got %+v", s.cfg.Params)
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
			if req.JSONRPC != "2.0" {
				t.Errorf("JSONRPC: got %s, want 2.0", req.JSONRPC)
			}
		})
	}
}

func TestMCPResponse_WithError(t *testing.T) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      1,
		Error: &MCPError{
			Code:    -32601,
			Message: "Method not found",
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(data), `"result"`) {
		t.Error("error response should omit result")
	}

	var decoded MCPResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != -32601 {
		t.Errorf("Error: got %+v, want code -32601", decoded.Error)
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != 1 {
		t.Errorf("ID: got %v, want 1", resp.ID)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != "colony-counter-mcp" {
		t.Errorf("serverInfo.name: got %v", serverInfo["name"])
	}
	if serverInfo["version"] != Version {
		t.Errorf("serverInfo.version: got %v, want %s", serverInfo["version"], Version)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(toolsList), len(expectedTools))
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"})

	// Notifications don't get responses
	if resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestServe(t *testing.T) {
	s := newTestServer()
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"colony_list","arguments":{"image_id":"missing"}}}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var responses []MCPResponse
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(sc.Bytes(), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", sc.Text(), err)
		}
		responses = append(responses, resp)
	}

	// The notification, the blank line and the garbage line get no reply.
	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}
	for i, want := range []float64{1, 2, 3} {
		if responses[i].ID != want {
			t.Errorf("response %d: id %v, want %v", i, responses[i].ID, want)
		}
	}
	if responses[2].Error == nil || responses[2].Error.Code != -32000 {
		t.Errorf("unknown image should fail with -32000, got %+v", responses[2].Error)
	}
}
