package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/service"
	"github.com/wricardo/robogrid/game/session"
	"github.com/wricardo/robogrid/game/world"
	"github.com/wricardo/robogrid/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	RunScriptFunc  func(ctx context.Context, sessionID, script string) (*service.RunResult, error)
	ResetLevelFunc func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GotoLevelFunc  func(ctx context.Context, sessionID string, number int) (*service.RunResult, error)

	GetStateFunc           func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	AvailableFunctionsFunc func(ctx context.Context, sessionID string) ([]string, error)
	GetHistoryFunc         func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	ListLevelsFunc func(ctx context.Context) ([]*level.Info, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{ID: "test-session", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) RunScript(ctx context.Context, sessionID, script string) (*service.RunResult, error) {
	if m.RunScriptFunc != nil {
		return m.RunScriptFunc(ctx, sessionID, script)
	}
	return &service.RunResult{SessionID: sessionID, State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) ResetLevel(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.ResetLevelFunc != nil {
		return m.ResetLevelFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
}

func (m *MockGameService) GotoLevel(ctx context.Context, sessionID string, number int) (*service.RunResult, error) {
	if m.GotoLevelFunc != nil {
		return m.GotoLevelFunc(ctx, sessionID, number)
	}
	return &service.RunResult{SessionID: sessionID, LevelAfter: number, State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
}

func (m *MockGameService) AvailableFunctions(ctx context.Context, sessionID string) ([]string, error) {
	if m.AvailableFunctionsFunc != nil {
		return m.AvailableFunctionsFunc(ctx, sessionID)
	}
	return []string{"move", "grab"}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Runs:       []service.ScriptRecord{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListLevels(ctx context.Context) ([]*level.Info, error) {
	if m.ListLevelsFunc != nil {
		return m.ListLevelsFunc(ctx)
	}
	return []*level.Info{}, nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService service.GameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func notFound(id string) error {
	return fmt.Errorf("session %q: %w", id, service.ErrSessionNotFound)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with random seed",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					if opts.Seed != nil {
						t.Errorf("Expected no seed, got %d", *opts.Seed)
					}
					return &service.SessionInfo{ID: "sess-123", Seed: 99}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with seed",
			requestBody: map[string]any{"seed": 42},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					if opts.Seed == nil || *opts.Seed != 42 {
						t.Errorf("Expected seed 42, got %v", opts.Seed)
					}
					return &service.SessionInfo{ID: "sess-456", Seed: *opts.Seed}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.Seed != 42 {
					t.Errorf("Expected seed 42, got %d", resp.Seed)
				}
			},
		},
		{
			name:           "Malformed body",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]any
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %v", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now.Add(-30 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		name  string
		query string
		want  []string
		total int
	}{
		{name: "default order", query: "", want: []string{"new", "mid", "old"}},
		{name: "created ascending", query: "?sort=created&order=asc", want: []string{"old", "mid", "new"}},
		{name: "limited", query: "?limit=1", want: []string{"new"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			var ids []string
			for _, s := range resp.Sessions {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), resp.Count)
			assert.Equal(t, 3, resp.Total)
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id != "sess-1" {
				return nil, notFound(id)
			}
			return &service.SessionInfo{ID: id}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			if id != "sess-1" {
				return notFound(id)
			}
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/sessions/sess-1", http.StatusOK},
		{"GET", "/api/sessions/missing", http.StatusNotFound},
		{"DELETE", "/api/sessions/sess-1", http.StatusOK},
		{"DELETE", "/api/sessions/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

// Game Operation Tests

func TestRunScript(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		err            error
		expectedStatus int
	}{
		{name: "runs script", body: map[string]string{"script": "move(right);"}, expectedStatus: http.StatusOK},
		{name: "bad body", body: "[", expectedStatus: http.StatusBadRequest},
		{name: "script too large", body: map[string]string{"script": "x"}, err: fmt.Errorf("%w: too long", service.ErrInvalidScript), expectedStatus: http.StatusBadRequest},
		{name: "unknown session", body: map[string]string{"script": "grab();"}, err: notFound("sess-1"), expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			mockService := &MockGameService{
				RunScriptFunc: func(ctx context.Context, id, script string) (*service.RunResult, error) {
					got = script
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.RunResult{
						SessionID: id,
						Summary:   "Moved right",
						Executed:  1,
						Parsed:    1,
						State:     &engine.Snapshot{Robot: engine.RobotView{Pos: world.Pos{X: 2, Y: 1}}},
					}, nil
				},
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/run", tt.body))
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "move(right);", got)
				var resp service.RunResult
				parseResponse(t, w, &resp)
				assert.Equal(t, "Moved right", resp.Summary)
				assert.Equal(t, world.Pos{X: 2, Y: 1}, resp.State.Robot.Pos)
			}
		})
	}
}

func TestResetAndGotoLevel(t *testing.T) {
	var gotLevel int
	mockService := &MockGameService{
		GotoLevelFunc: func(ctx context.Context, id string, n int) (*service.RunResult, error) {
			gotLevel = n
			if n > 7 {
				return nil, fmt.Errorf("%w: %d", service.ErrInvalidLevel, n)
			}
			return &service.RunResult{LevelAfter: n, State: &engine.Snapshot{}}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s/reset", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var reset map[string]any
	parseResponse(t, w, &reset)
	assert.Equal(t, "Level reset successfully", reset["message"])

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s/level", map[string]int{"level": 3}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, gotLevel)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/s/level", map[string]int{"level": 9}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  service.HistoryOptions
	}{
		{name: "defaults", query: "", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{name: "explicit", query: "?page=2&limit=5&order=asc", want: service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{name: "garbage ignored", query: "?page=-1&limit=abc&order=sideways", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, id string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Runs: []service.ScriptRecord{}}, nil
				},
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/s/history"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateFunctionsAndLevels(t *testing.T) {
	mockService := &MockGameService{
		GetStateFunc: func(ctx context.Context, id string) (*engine.Snapshot, error) {
			return &engine.Snapshot{Credits: 12, Turns: 3}, nil
		},
		ListLevelsFunc: func(ctx context.Context) ([]*level.Info, error) {
			return []*level.Info{{Number: 1, ID: "01_explore_grid"}}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/s/state", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var snap engine.Snapshot
	parseResponse(t, w, &snap)
	assert.Equal(t, 12, snap.Credits)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/s/functions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var fns struct {
		Functions []string `json:"functions"`
	}
	parseResponse(t, w, &fns)
	assert.Equal(t, []string{"move", "grab"}, fns.Functions)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/levels", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "01_explore_grid")

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, notFound(sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// TestEndToEnd drives the real service over HTTP and watches the broadcast
func TestEndToEnd(t *testing.T) {
	levels, err := level.NewManager("")
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(levels), levels)

	server := setupTestServer(t, svc)
	ts := httptest.NewServer(server)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", strings.NewReader(`{"seed": 5}`))
	require.NoError(t, err)
	var info service.SessionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, uint64(5), info.Seed)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + info.ID
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return server.hub.ClientCount(info.ID) == 1 }, time.Second, 5*time.Millisecond)

	body := `{"script": "move(right);\nmove(down);"}`
	resp, err = http.Post(ts.URL+"/api/sessions/"+info.ID+"/run", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	var run service.RunResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, run.Executed)
	assert.Equal(t, world.Pos{X: 2, Y: 2}, run.State.Robot.Pos)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.EventStateUpdate, msg.Event)
	require.NotNil(t, msg.State)
	assert.Equal(t, world.Pos{X: 2, Y: 2}, msg.State.Robot.Pos)

	resp, err = http.Get(ts.URL + "/api/sessions/" + info.ID + "/history")
	require.NoError(t, err)
	var history service.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	resp.Body.Close()
	assert.Equal(t, 1, history.TotalRuns)
}
