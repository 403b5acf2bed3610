package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/robogrid/game/engine"
	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/service"
	"github.com/wricardo/robogrid/logging"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Robogrid",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Robogrid - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Program a robot (R) with a small script and finish each level's goal.
Most levels are won by discovering every reachable tile; some ask for
printed output, collected items or a number of moves.

AVAILABLE TOOLS:
- create_session: Start a new session (optional seed)
- list_sessions / get_session: Inspect sessions
- get_state: Render the board and the robot's status
- run_script: Run a script, one call per line, e.g. move(right);
- reset_level: Reload the current level
- goto_level: Jump to a level by number
- available_functions: Functions callable right now
- list_levels: Describe the level pack
- run_history: Past scripts of a session
- game_instructions: Full rules and function reference

Scripts halt at the first blocked move; rewrite and run again.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionProp := map[string]any{
		"type":        "string",
		"description": "Session ID returned by create_session",
	}

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session starting at level 1",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"seed": map[string]any{
					"type":        "integer",
					"description": "Optional random seed; the same seed and scripts always replay identically",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List active sessions, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get session details: seed, run count and current level",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Render the board and report the robot, credits and level goal",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp},
			Required:   []string{"session_id"},
		},
	}, c.handleGetState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_script",
		Description: "Run a script against the current level. One call per line, e.g. move(right); then grab(); on the next line",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp,
				"script": map[string]any{
					"type":        "string",
					"description": "Script source, one function call per line",
				},
			},
			Required: []string{"session_id", "script"},
		},
	}, c.handleRunScript)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_level",
		Description: "Reload the current level from scratch",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp},
			Required:   []string{"session_id"},
		},
	}, c.handleResetLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "goto_level",
		Description: "Jump to a level by its 1-based number",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp,
				"level": map[string]any{
					"type":        "integer",
					"description": "Level number, starting at 1",
				},
			},
			Required: []string{"session_id", "level"},
		},
	}, c.handleGotoLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "available_functions",
		Description: "List the script functions the robot can call right now",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp},
			Required:   []string{"session_id"},
		},
	}, c.handleAvailableFunctions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_history",
		Description: "Show past scripts of a session with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp,
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Runs per page (default 20, max 100)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunHistory)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "Describe every level in the pack",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, board legend and script function reference",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// toolError logs a failed proxy call and reports it to the agent
func toolError(tool string, err error) *mcp.CallToolResult {
	logging.Log.WithFields(logrus.Fields{"tool": tool}).WithError(err).Debug("tool call failed")
	return mcp.NewToolResultError(err.Error())
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]any{}
	if seed, ok := request.GetArguments()["seed"].(float64); ok && seed >= 0 {
		body["seed"] = uint64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return toolError("create_session", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created session: %s\nSeed: %d\n\n", session.ID, session.Seed)
	if session.State != nil {
		b.WriteString(formatSnapshot(session.State))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Total    int                   `json:"total"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return toolError("list_sessions", err), nil
	}

	if response.Total == 0 {
		return mcp.NewToolResultText("No active sessions. Use create_session to start one."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", response.Total)
	for i := range response.Sessions {
		b.WriteString("- ")
		b.WriteString(formatSessionInfo(&response.Sessions[i]))
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(id, ""), nil, &session); err != nil {
		return toolError("get_session", err), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.Snapshot
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(id, "/state"), nil, &state); err != nil {
		return toolError("get_state", err), nil
	}
	return mcp.NewToolResultText(formatSnapshot(&state)), nil
}

func (c *Client) handleRunScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := request.RequireString("script")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.RunResult
	body := map[string]string{"script": src}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(id, "/run"), body, &result); err != nil {
		return toolError("run_script", err), nil
	}
	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleResetLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(id, "/reset"), nil, &response); err != nil {
		return toolError("reset_level", err), nil
	}

	text := response.Message + "\n\n"
	if response.State != nil {
		text += formatSnapshot(response.State)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleGotoLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := request.GetInt("level", 0)
	if n < 1 {
		return mcp.NewToolResultError("level must be a positive level number"), nil
	}

	var result service.RunResult
	body := map[string]int{"level": n}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(id, "/level"), body, &result); err != nil {
		return toolError("goto_level", err), nil
	}
	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleAvailableFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Functions []string `json:"functions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(id, "/functions"), nil, &response); err != nil {
		return toolError("available_functions", err), nil
	}
	return mcp.NewToolResultText("Available functions: " + strings.Join(response.Functions, ", ")), nil
}

func (c *Client) handleRunHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("page", fmt.Sprint(request.GetInt("page", 1)))
	query.Set("limit", fmt.Sprint(request.GetInt("limit", 20)))

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(id, "/history?"+query.Encode()), nil, &history); err != nil {
		return toolError("run_history", err), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count  int           `json:"count"`
		Levels []*level.Info `json:"levels"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/levels", nil, &response); err != nil {
		return toolError("list_levels", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Levels (%d):\n", response.Count)
	for _, info := range response.Levels {
		fmt.Fprintf(&b, "%2d. %s (%dx%d", info.Number, info.Name, info.Width, info.Height)
		if info.Enemies > 0 {
			fmt.Fprintf(&b, ", %d enemies", info.Enemies)
		}
		if info.Items > 0 {
			fmt.Fprintf(&b, ", %d items", info.Items)
		}
		b.WriteString(")")
		if info.CompletionFlag != "" {
			fmt.Fprintf(&b, " goal: %s", info.CompletionFlag)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Robogrid - Complete Instructions

GAME OBJECTIVE:
Write scripts that steer a robot across a fog-covered grid. Each level has a
goal; unless the level says otherwise the goal is to discover every tile the
robot can reach.

HOW A RUN WORKS:
- Each line of the script holds one call; extra calls on a line are ignored.
- Calls execute top to bottom. A blocked move halts the rest of the script.
- From level 4 onward enemies move after every action. Touching one reloads
  the level with a fresh layout.
- Moving reveals the tiles around the robot. Grabbing collects items in range
  and pays credits for tiles it reveals.

BOARD LEGEND:
  R  robot            E  enemy          e  stunned enemy
  #  obstacle         x  destroyed obstacle (returns after a few turns)
  D  closed door      /  open door
  *  item             ?  unknown tile   .  known floor

FUNCTIONS:
  move(up|down|left|right)    step one tile
  grab()                      collect items and reveal tiles in range
  set_auto_grab(true|false)   grab automatically after each move
  search_all()                sweep the level in a lawnmower pattern
  scan(direction)             reveal tiles ahead (needs a scanner item)
  laser_direction(direction)  stun an enemy or destroy an obstacle ahead
  laser_tile(x, y)            same, at a tile
  open_door(true|false)       open or close the door the robot stands on
  println("text")             print to the output log
  eprintln("text")            print to the error log
  panic("text")               make the robot panic
  skip_level()                go to the next level
  goto_level(n)               jump to level n

STRATEGY TIPS:
- Call get_state after every run to see what was revealed.
- Use available_functions; lasers and scan unlock as the game progresses.
- A halted script keeps the moves made before the halt.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	text := fmt.Sprintf("%s (seed %d, %d runs, last used %s)",
		session.ID, session.Seed, session.Runs, session.LastAccessedAt.Format(time.RFC3339))
	if session.State != nil {
		lv := session.State.Level
		text += fmt.Sprintf(" level %d/%d %s", lv.Number, lv.Total, lv.Name)
	}
	return text
}

func formatSnapshot(state *engine.Snapshot) string {
	var b strings.Builder
	lv := state.Level
	fmt.Fprintf(&b, "Level %d/%d: %s\n", lv.Number, lv.Total, lv.Name)
	if lv.Message != "" {
		fmt.Fprintf(&b, "%s\n", lv.Message)
	}
	if lv.CompletionHint != "" {
		fmt.Fprintf(&b, "Goal: %s\n", lv.CompletionHint)
	}
	if lv.Instructions != "" {
		fmt.Fprintf(&b, "How to finish: %s\n", lv.Instructions)
	}
	if state.Finished {
		b.WriteString("LEVEL COMPLETE\n")
		if lv.NextLevelHint != "" {
			fmt.Fprintf(&b, "%s\n", lv.NextLevelHint)
		}
	}

	fmt.Fprintf(&b, "\nPosition: (%d,%d)  Credits: %d  Turns: %d  Discovered: %d\n",
		state.Robot.Pos.X, state.Robot.Pos.Y, state.Credits, state.Turns, state.Discovered)
	if len(state.Robot.Inventory) > 0 {
		fmt.Fprintf(&b, "Inventory: %s\n", strings.Join(state.Robot.Inventory, ", "))
	}
	if state.Robot.AutoGrab {
		b.WriteString("Auto-grab: on\n")
	}
	if state.EnemiesActive {
		fmt.Fprintf(&b, "Enemies active: %d\n", len(state.Grid.Enemies))
	}

	b.WriteString("\n")
	for _, row := range state.Rows() {
		b.WriteString(row)
		b.WriteString("\n")
	}

	if len(state.Outputs) > 0 {
		fmt.Fprintf(&b, "\nOutput:\n  %s\n", strings.Join(state.Outputs, "\n  "))
	}
	if len(state.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors:\n  %s\n", strings.Join(state.Errors, "\n  "))
	}
	if state.LastResult != "" {
		fmt.Fprintf(&b, "\nLast result: %s\n", state.LastResult)
	}
	return b.String()
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d/%d commands\n", result.Executed, result.Parsed)

	for _, step := range result.Results {
		b.WriteString(formatStepLine(step))
	}

	switch result.StopReasonCode {
	case service.StopBlocked:
		fmt.Fprintf(&b, "\nSTOPPED on step %d: blocked. Rewrite the script to avoid the obstacle.\n", result.StoppedOnStep)
	case service.StopCollision:
		b.WriteString("\nSTOPPED: enemy collision. The level was reloaded with a new layout.\n")
	case service.StopParseMiss:
		b.WriteString("\nNo command recognised. Use one call per line, e.g. move(right);\n")
	case service.StopUnavailable:
		b.WriteString("\nSome functions are not available yet. See available_functions.\n")
	}

	if result.Completed {
		achievement := result.Achievement
		if achievement == "" {
			achievement = engine.MsgDefaultAchieve
		}
		fmt.Fprintf(&b, "\n%s\n", achievement)
		if result.NextLevelHint != "" {
			fmt.Fprintf(&b, "%s\n", result.NextLevelHint)
		}
	}
	if result.LevelAfter != result.LevelBefore {
		fmt.Fprintf(&b, "Now on level %d\n", result.LevelAfter)
	}
	if result.CreditsDelta != 0 {
		fmt.Fprintf(&b, "Credits %+d\n", result.CreditsDelta)
	}

	if result.State != nil {
		b.WriteString("\n")
		b.WriteString(formatSnapshot(result.State))
	}
	return b.String()
}

func formatStepLine(step service.StepInfo) string {
	line := fmt.Sprintf("%d. %s -> %s", step.Idx, step.Call, step.Message)
	if step.Moved {
		line += fmt.Sprintf(" (%d,%d)->(%d,%d)", step.From.X, step.From.Y, step.To.X, step.To.Y)
	}
	if step.AutoGrab != "" {
		line += " [" + step.AutoGrab + "]"
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Runs %d (page %d/%d)\n", history.TotalRuns, history.Page, history.TotalPages)
	for _, rec := range history.Runs {
		fmt.Fprintf(&b, "\n[%s] %s on level %d: %s\n", rec.At.Format(time.RFC3339), rec.Kind, rec.Level, rec.Summary)
		if rec.Source != "" {
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(strings.TrimSpace(rec.Source), "\n", "\n  "))
		}
	}
	if history.HasNext {
		b.WriteString("\nMore runs on the next page.\n")
	}
	return b.String()
}
