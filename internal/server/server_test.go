package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{t: t}, false)
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.chapter == nil || s.folder != s.chapter {
		t.Error("folder extractor should fall back to the chapter extractor")
	}
}

func TestHandleRequest(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{t: t}, false)
	ctx := context.Background()

	tests := []struct {
		name      string
		method    string
		wantNil   bool
		wantError int
	}{
		{"initialize", "initialize", false, 0},
		{"initialized notification", "notifications/initialized", true, 0},
		{"tools list", "tools/list", false, 0},
		{"ping", "ping", false, 0},
		{"unknown method", "resources/list", false, -32601},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: 7, Method: tt.method})
			if tt.wantNil {
				if resp != nil {
					t.Fatalf("expected no response, got %+v", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("handleRequest returned nil")
			}
			if resp.ID != 7 {
				t.Errorf("ID: got %v, want 7", resp.ID)
			}
			if tt.wantError != 0 {
				if resp.Error == nil || resp.Error.Code != tt.wantError {
					t.Errorf("error: got %+v, want code %d", resp.Error, tt.wantError)
				}
				return
			}
			if resp.Error != nil {
				t.Errorf("unexpected error: %+v", resp.Error)
			}
		})
	}
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{t: t}, false)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	result := resp.Result.(map[string]interface{})
	tools := result["tools"].([]Tool)
	want := map[string]bool{"panels_extract_folder": true, "panels_extract_chapter": true, "panels_segment_image": true}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for _, tool := range tools {
		if !want[tool.Name] {
			t.Errorf("unexpected tool %s", tool.Name)
		}
		if tool.InputSchema["required"] == nil {
			t.Errorf("%s: schema has no required list", tool.Name)
		}
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{t: t}, false)

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		``,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":"two","method":"ping"}`,
	}, "\n")
	var out bytes.Buffer

	if err := s.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	dec := json.NewDecoder(&out)
	var responses []MCPResponse
	for dec.More() {
		var r MCPResponse
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("bad output: %v", err)
		}
		responses = append(responses, r)
	}

	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}
	if responses[0].ID != float64(1) || responses[0].Error != nil {
		t.Errorf("initialize: got %+v", responses[0])
	}
	info := responses[0].Result.(map[string]interface{})["serverInfo"].(map[string]interface{})
	if info["name"] != "manga-panels" {
		t.Errorf("server name: got %v", info["name"])
	}
	if responses[1].Error == nil || responses[1].Error.Code != -32700 {
		t.Errorf("parse error: got %+v", responses[1])
	}
	if responses[2].ID != "two" || responses[2].Error != nil {
		t.Errorf("ping: got %+v", responses[2])
	}
}

func TestServeCanceled(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{t: t}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`), &out)
	if err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("no response expected after cancel, got %s", out.String())
	}
}
