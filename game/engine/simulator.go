package engine

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/robogrid/game/script"
	"github.com/wricardo/robogrid/game/world"
	"github.com/wricardo/robogrid/logging"
)

// Step pairs an executed command with its outcome
type Step struct {
	Index   int            `json:"index"`
	Command script.Command `json:"command"`
	Call    string         `json:"call"`
	From    world.Pos      `json:"from"`
	To      world.Pos      `json:"to"`
	Outcome Outcome        `json:"outcome"`
}

// RunResult summarises one submitted script
type RunResult struct {
	Message   string `json:"message"`
	Steps     []Step `json:"steps"`
	Parsed    int    `json:"parsed"`
	Halted    bool   `json:"halted"`
	HaltedAt  int    `json:"halted_at,omitempty"`
	Collision bool   `json:"collision"`
	Completed bool   `json:"completed"`
	NoCommand bool   `json:"no_command,omitempty"`
}

// Run parses src and executes its commands in order. Execution stops at the
// first halting outcome or collision. The per-command messages are joined
// with "; ".
func (g *Game) Run(src string) RunResult {
	cmds := script.Parse(src)
	if len(cmds) == 0 {
		g.lastResult = script.NoCommandsMessage
		return RunResult{Message: script.NoCommandsMessage, NoCommand: true}
	}

	res := RunResult{Parsed: len(cmds)}
	messages := make([]string, 0, len(cmds)+1)
	for i, cmd := range cmds {
		from := g.robot.Pos
		out := g.Execute(cmd)
		res.Steps = append(res.Steps, Step{
			Index:   i + 1,
			Command: cmd,
			Call:    cmd.String(),
			From:    from,
			To:      g.robot.Pos,
			Outcome: out,
		})
		messages = append(messages, out.Message)
		if out.Completed {
			res.Completed = true
		}
		if out.Collision {
			res.Collision = true
			break
		}
		if out.Halt || IsHaltMessage(out.Message) {
			messages = append(messages, MsgHalted)
			res.Halted = true
			res.HaltedAt = i + 1
			break
		}
	}
	res.Message = strings.Join(messages, "; ")
	g.lastResult = res.Message

	logging.Log.WithFields(logrus.Fields{
		"level":     g.Level().ID,
		"commands":  len(cmds),
		"executed":  len(res.Steps),
		"halted":    res.Halted,
		"collision": res.Collision,
		"completed": res.Completed,
	}).Debug("script executed")
	return res
}

// Execute runs a single command, including the enemy tick and completion
// check that follow it.
func (g *Game) Execute(cmd script.Command) Outcome {
	if !g.IsAvailable(cmd.Kind) {
		return Outcome{Message: MsgNotAvailable, Unavailable: true}
	}
	g.UpdateEffects()

	var out Outcome
	switch cmd.Kind {
	case script.Move:
		if !g.finished {
			g.turns++
		}
		out = g.advance(cmd.Dir)
	case script.Grab:
		out = g.grab()
	case script.Scan:
		out = g.scan(cmd.Dir)
	case script.SearchAll:
		out = g.searchAll()
	case script.SetAutoGrab:
		out = g.setAutoGrab(cmd.Flag)
	case script.LaserDirection:
		out = g.laserDirection(cmd.Dir)
	case script.LaserTile:
		out = g.laserTile(cmd.Target)
	case script.OpenDoor:
		out = g.door(cmd.Flag)
	case script.SkipLevel:
		out = g.skipLevel()
	case script.GotoLevel:
		out = g.gotoLevel(cmd.Level)
	case script.Println:
		out = g.printLine(cmd.Text)
	case script.Eprintln:
		out = g.printError(cmd.Text)
	case script.Panic:
		out = g.raisePanic(cmd.Text)
	}
	if out.Collision || out.Reloaded {
		return out
	}

	if out.turn && !out.Halt {
		if collided := g.tick(&out); collided {
			return g.collide()
		}
	}
	g.evaluate(&out)
	return out
}

// advance moves the robot, checks for a collision on arrival and runs the
// implicit grab. It is shared by direct moves and the search sweep.
func (g *Game) advance(dir world.Pos) Outcome {
	out := g.move(dir)
	if !out.Moved {
		return out
	}
	if g.EnemiesActive() && g.grid.CheckEnemyCollision(g.robot.Pos) {
		return g.collide()
	}
	if g.robot.AutoGrab && g.unknownInGrabRange() {
		out.AutoGrab = g.grab().Message
	}
	return out
}

// tick moves the enemies once after a turn-taking action. It reports a
// collision with the robot.
func (g *Game) tick(out *Outcome) bool {
	if !g.EnemiesActive() || g.enemyPaused || g.finished {
		return false
	}
	out.EnemiesMoved = g.grid.MoveEnemies(world.Env{Player: g.robot.Pos, Rand: g.rng}, g.stunned)
	return g.grid.CheckEnemyCollision(g.robot.Pos)
}

// collide reloads the current level from scratch. Credits earned on the
// level are lost; inventory and upgrades are kept. The layout is drawn
// again from the game's random source.
func (g *Game) collide() Outcome {
	g.collisions++
	logging.Log.WithFields(logrus.Fields{
		"level": g.Level().ID,
		"pos":   g.robot.Pos.String(),
	}).Info("enemy collision, reloading level")
	g.Reset()
	return Outcome{Message: MsgCollision, Collision: true}
}

// evaluate checks the completion rule after a settled command
func (g *Game) evaluate(out *Outcome) {
	if g.finished {
		return
	}
	if !g.rule.Satisfied(g.ruleEnv()) {
		return
	}
	g.finished = true
	g.credits += g.discovered
	g.completedIDs = append(g.completedIDs, g.Level().ID)
	out.Completed = true
	out.Achievement = g.Level().AchievementMessage
	if out.Achievement == "" {
		out.Achievement = MsgDefaultAchieve
	}
	out.NextLevelHint = g.Level().NextLevelHint
	logging.Log.WithFields(logrus.Fields{
		"level":   g.Level().ID,
		"turns":   g.turns,
		"credits": g.credits,
	}).Info("level completed")
}

func (g *Game) ruleEnv() RuleEnv {
	return RuleEnv{
		Outputs:     g.outputs,
		Errors:      g.errors,
		Panicked:    g.panicked,
		Inventory:   g.robot.InventorySize(),
		Turns:       g.turns,
		MaxTurns:    g.Level().MaxTurns,
		Credits:     g.credits,
		Discovered:  g.discovered,
		Known:       g.grid.KnownCount(),
		TotalItems:  g.items.Total(),
		ActiveItems: g.items.ActiveCount(),
		AllKnown:    g.grid.AllPassableKnown(),
		Level:       g.levelIndex + 1,
	}
}

// IsHaltMessage reports whether a status message stops a script
func IsHaltMessage(msg string) bool {
	return strings.Contains(msg, MsgUnknownObject) ||
		strings.Contains(msg, "blocked by obstacle") ||
		strings.Contains(msg, "Search blocked")
}
