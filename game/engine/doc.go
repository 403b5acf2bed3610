// Package engine runs robot scripts against a level pack.
//
// A Game owns the current level's Grid, the Robot, the level's items and a
// single seeded random source. Scripts are parsed by package script and
// executed one command at a time; each command may be followed by an enemy
// tick and a completion check.
//
// Usage:
//
//	specs, _ := level.LoadPack(level.Embedded())
//	game, err := engine.NewGame(specs, 42, level.NewResources(""))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res := game.Run("move(right);\ngrab();")
//	fmt.Println(res.Message)
//	snap := game.Snapshot()
//
// Game Rules:
//
// Moving onto a blocker, a closed door or off the grid halts the rest of the
// script. From the fourth level on, enemies move after every turn-taking
// command and touching one reloads the level, losing the credits earned on
// it. Grabbing reveals tiles within grabber range and pays for each one.
// A level finishes when its completion flag is satisfied, or, without a
// flag, when its items are gone or its map is fully known.
package engine
