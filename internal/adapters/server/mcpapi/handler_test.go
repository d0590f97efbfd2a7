package mcpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/mergegrid/internal/adapters/server/common"
	"github.com/hylla/mergegrid/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
)

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// newTestServer starts an MCP handler over a fresh grid service.
func newTestServer(t *testing.T, width, height int) *httptest.Server {
	t.Helper()
	svc := app.NewService(nil, func() time.Time {
		return time.Date(2026, 2, 25, 2, 32, 0, 0, time.UTC)
	}, nil, app.ServiceConfig{Width: width, Height: height, MaxWidth: 26, MaxHeight: 99})
	handler, err := NewHandler(Config{}, common.NewAppServiceAdapter(svc))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "mergegrid-test",
				"version": "1.0.0",
			},
		},
	}
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()
	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// callTool runs one tool and decodes its text payload as grid state.
func callTool(t *testing.T, server *httptest.Server, id int, name string, args map[string]any) (common.GridState, jsonRPCResponse) {
	t.Helper()
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(id, name, args))
	var state common.GridState
	if isError, _ := resp.Result["isError"].(bool); isError {
		return state, resp
	}
	if err := json.Unmarshal([]byte(toolResultText(t, resp.Result)), &state); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", name, err)
	}
	return state, resp
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	server := newTestServer(t, 2, 2)
	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersGridTools verifies tool discovery lists every grid tool.
func TestHandlerRegistersGridTools(t *testing.T) {
	server := newTestServer(t, 2, 2)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{
		"mergegrid.get_state",
		"mergegrid.list_events",
		"mergegrid.select",
		"mergegrid.clear",
		"mergegrid.merge",
		"mergegrid.separate",
		"mergegrid.reset",
	} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %q: %#v", required, toolNames)
		}
	}
}

// TestHandlerSelectMergeSeparate verifies the tool flow over a shared session grid.
func TestHandlerSelectMergeSeparate(t *testing.T) {
	server := newTestServer(t, 4, 3)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	state, _ := callTool(t, server, 2, "mergegrid.select", map[string]any{"range": "A1:B2"})
	if state.Range != "A1:B2" || !state.CanMerge {
		t.Fatalf("unexpected select state %+v", state)
	}
	state, _ = callTool(t, server, 3, "mergegrid.merge", map[string]any{})
	if len(state.Groups) != 1 || state.Groups[0].String() != "(0,0)-(1,1)" {
		t.Fatalf("unexpected groups after merge %v", state.Groups)
	}

	state, _ = callTool(t, server, 4, "mergegrid.select", map[string]any{"from_row": 1, "from_col": 1})
	if state.Range != "A1:B2" {
		t.Fatalf("selecting inside a group must cover the group, got %q", state.Range)
	}
	state, _ = callTool(t, server, 5, "mergegrid.separate", map[string]any{})
	if len(state.Groups) != 0 || state.Layout.Visible() != 12 {
		t.Fatalf("expected unit cells after separate, got %+v", state.Groups)
	}

	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(6, "mergegrid.list_events", map[string]any{"limit": 2}))
	text := toolResultText(t, resp.Result)
	if !strings.Contains(text, `"operation":"select"`) || !strings.Contains(text, `"operation":"separate"`) {
		t.Fatalf("unexpected events payload %s", text)
	}
}

// TestHandlerResetAndGetState verifies reset clamps and get_state reflects it.
func TestHandlerResetAndGetState(t *testing.T) {
	server := newTestServer(t, 2, 2)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	state, _ := callTool(t, server, 2, "mergegrid.reset", map[string]any{"width": 30, "height": 4})
	if state.Width != 26 || state.Height != 4 {
		t.Fatalf("expected clamped 26x4, got %dx%d", state.Width, state.Height)
	}
	state, _ = callTool(t, server, 3, "mergegrid.get_state", map[string]any{})
	if state.Width != 26 || state.Selection != nil {
		t.Fatalf("unexpected state %+v", state)
	}
}

// TestHandlerToolErrors verifies tool failures surface as error results.
func TestHandlerToolErrors(t *testing.T) {
	server := newTestServer(t, 2, 2)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	cases := []struct {
		name   string
		args   map[string]any
		prefix string
	}{
		{name: "mergegrid.merge", args: map[string]any{}, prefix: "no_selection:"},
		{name: "mergegrid.select", args: map[string]any{}, prefix: "invalid_request:"},
		{name: "mergegrid.select", args: map[string]any{"range": "C9"}, prefix: "invalid_request:"},
		{name: "mergegrid.reset", args: map[string]any{"width": -1, "height": 1}, prefix: "invalid_request:"},
	}
	for i, tc := range cases {
		_, resp := callTool(t, server, 10+i, tc.name, tc.args)
		if isError, _ := resp.Result["isError"].(bool); !isError {
			t.Fatalf("%s %v: isError = false, want true", tc.name, tc.args)
		}
		if text := toolResultText(t, resp.Result); !strings.HasPrefix(text, tc.prefix) {
			t.Fatalf("%s %v: text = %q, want prefix %q", tc.name, tc.args, text, tc.prefix)
		}
	}
}

// TestToolResultFromErrorMapping verifies sentinel errors map onto stable prefixes.
func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		prefix string
	}{
		{err: nil, prefix: "unknown error"},
		{err: common.ErrConflict, prefix: "not_merge_closed:"},
		{err: common.ErrServiceUnavailable, prefix: "service_unavailable:"},
		{err: errors.New("boom"), prefix: "internal_error:"},
	}
	for _, tc := range cases {
		result := toolResultFromError(tc.err)
		if !result.IsError {
			t.Fatalf("%v: IsError = false, want true", tc.err)
		}
		text, ok := result.Content[0].(mcp.TextContent)
		if !ok || !strings.HasPrefix(text.Text, tc.prefix) {
			t.Fatalf("%v: unexpected content %#v", tc.err, result.Content)
		}
	}
}

// TestNewHandlerRequiresService verifies a nil grid service is rejected.
func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("NewHandler(nil) error = nil, want error")
	}
	var h *Handler
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
