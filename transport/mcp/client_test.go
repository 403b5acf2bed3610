package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/robogrid/api"
	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/service"
	"github.com/wricardo/robogrid/game/session"
	"github.com/wricardo/robogrid/game/world"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func sampleSnapshot() *engine.Snapshot {
	return &engine.Snapshot{
		Level: engine.LevelView{
			Number:         2,
			Total:          5,
			Name:           "Corridor",
			CompletionHint: "Discover every reachable tile",
		},
		Grid: world.GridSnapshot{
			Width:    3,
			Height:   2,
			FogOfWar: true,
			Known:    []world.Pos{{X: 0, Y: 0}, {X: 1, Y: 0}},
		},
		Robot: engine.RobotView{
			Pos:       world.Pos{X: 1, Y: 0},
			Inventory: []string{"scanner"},
		},
		Credits:    7,
		Turns:      3,
		Discovered: 2,
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]any
	err := client.apiCall(context.Background(), http.MethodGet, "/api/health", nil, &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

func TestClient_apiCall_Errors(t *testing.T) {
	t.Run("unreachable host", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		err := client.apiCall(context.Background(), http.MethodGet, "/api", nil, nil)
		assert.Error(t, err)
	})

	t.Run("JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": `session "nope": session not found`, "code": 404})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), http.MethodGet, "/api", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session not found")
	})

	t.Run("plain error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), http.MethodGet, "/api", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API error: 500")
	})
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:    "test1234",
			Seed:  42,
			State: sampleSnapshot(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]any{"seed": float64(42)}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Created session: test1234")
	assert.Contains(t, text, "Seed: 42")
	assert.Contains(t, text, "Level 2/5: Corridor")
	assert.Equal(t, float64(42), gotBody["seed"])
}

func TestClient_requiredArguments(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
	}{
		{"get_state", client.handleGetState, map[string]any{}},
		{"run_script", client.handleRunScript, map[string]any{"session_id": "abc"}},
		{"reset_level", client.handleResetLevel, map[string]any{}},
		{"goto_level", client.handleGotoLevel, map[string]any{"session_id": "abc"}},
		{"available_functions", client.handleAvailableFunctions, map[string]any{}},
		{"run_history", client.handleRunHistory, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callRequest(tt.name, tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestClient_runScriptStopped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/abc/run" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["script"] != "move(up);\nmove(up);" {
			t.Errorf("unexpected script %q", body["script"])
		}

		json.NewEncoder(w).Encode(service.RunResult{
			Parsed:   2,
			Executed: 1,
			Results: []service.StepInfo{
				{Idx: 1, Call: "move(up)", Message: engine.MsgMoveBlocked, Halt: true},
			},
			Halted:         true,
			StoppedOnStep:  1,
			StopReasonCode: service.StopBlocked,
			LevelBefore:    1,
			LevelAfter:     1,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	args := map[string]any{"session_id": "abc", "script": "move(up);\nmove(up);"}
	result, err := client.handleRunScript(context.Background(), callRequest("run_script", args))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Executed 1/2 commands")
	assert.Contains(t, text, "1. move(up) -> Move blocked")
	assert.Contains(t, text, "STOPPED on step 1: blocked")
	assert.NotContains(t, text, "Now on level")
}

func TestFormatSnapshot(t *testing.T) {
	text := formatSnapshot(sampleSnapshot())

	for _, want := range []string{
		"Level 2/5: Corridor",
		"Goal: Discover every reachable tile",
		"Position: (1,0)",
		"Credits: 7",
		"Inventory: scanner",
		".R?",
		"???",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "LEVEL COMPLETE")
}

func TestFormatRunResult_Completed(t *testing.T) {
	text := formatRunResult(&service.RunResult{
		Parsed:        1,
		Executed:      1,
		Completed:     true,
		NextLevelHint: "Next: doors",
		LevelBefore:   1,
		LevelAfter:    2,
		CreditsDelta:  5,
	})

	assert.Contains(t, text, engine.MsgDefaultAchieve)
	assert.Contains(t, text, "Next: doors")
	assert.Contains(t, text, "Now on level 2")
	assert.Contains(t, text, "Credits +5")
}

func TestFormatHistory(t *testing.T) {
	text := formatHistory(&service.HistoryResponse{
		Runs: []service.ScriptRecord{
			{Kind: service.RecordRun, Level: 3, Source: "move(left);\ngrab();", Summary: "Move executed; Nothing to grab.", At: time.Unix(0, 0).UTC()},
		},
		TotalRuns:  21,
		Page:       1,
		TotalPages: 2,
		HasNext:    true,
	})

	assert.Contains(t, text, "Runs 21 (page 1/2)")
	assert.Contains(t, text, "run on level 3: Move executed; Nothing to grab.")
	assert.Contains(t, text, "  grab();")
	assert.Contains(t, text, "More runs on the next page.")
}

// TestClient_EndToEnd drives the tools against the real REST server
func TestClient_EndToEnd(t *testing.T) {
	levels, err := level.NewManager("")
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(levels), levels)
	ts := httptest.NewServer(api.NewServer(svc, nil))
	defer ts.Close()

	client := NewClient(ts.URL)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, service.CreateOptions{})
	require.NoError(t, err)
	id := info.ID

	result, err := client.handleRunScript(ctx, callRequest("run_script", map[string]any{
		"session_id": id,
		"script":     "move(right);\nmove(down);",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "Position: (2,2)")

	result, err = client.handleGetState(ctx, callRequest("get_state", map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Level 1/")

	result, err = client.handleAvailableFunctions(ctx, callRequest("available_functions", map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "move")

	result, err = client.handleGotoLevel(ctx, callRequest("goto_level", map[string]any{"session_id": id, "level": float64(2)}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Now on level 2")

	result, err = client.handleResetLevel(ctx, callRequest("reset_level", map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Level reset successfully")

	result, err = client.handleRunHistory(ctx, callRequest("run_history", map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Runs 3 ")

	result, err = client.handleListLevels(ctx, callRequest("list_levels", nil))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resultText(t, result), "Levels ("))

	result, err = client.handleListSessions(ctx, callRequest("list_sessions", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), id)

	result, err = client.handleGetState(ctx, callRequest("get_state", map[string]any{"session_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "session not found")
}
