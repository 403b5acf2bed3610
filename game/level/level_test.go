package level

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/robogrid/game/world"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestParseGridSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"16x10", 16, 10, false},
		{" 8X4 ", 8, 4, false},
		{"16", 0, 0, true},
		{"ax3", 0, 0, true},
		{"3x3x3", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := ParseGridSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestToSpecDefaults(t *testing.T) {
	f, err := ParseFile([]byte(`
name: "Plain"
grid_size: "6x5"
enemies:
  - start_location: [4, 4]
    movement_pattern: vertical
items:
  - name: scanner
    location: [3, 2]
`))
	require.NoError(t, err)

	spec, err := f.ToSpec("plain", testRand())
	require.NoError(t, err)

	assert.Equal(t, "plain", spec.ID)
	assert.Equal(t, world.Pos{X: 1, Y: 1}, spec.Start)
	assert.True(t, spec.FogOfWar)
	assert.Equal(t, 1, spec.IncomePerSquare)
	assert.Equal(t, 0, spec.MaxTurns)
	assert.Equal(t, HazardsAuto, spec.Hazards)
	require.Len(t, spec.Enemies, 1)
	assert.Equal(t, world.Vertical, spec.Enemies[0].Axis)
	assert.True(t, spec.Enemies[0].MovingPositive)
	require.NotNil(t, spec.ScannerAt())
	assert.Equal(t, world.Pos{X: 3, Y: 2}, *spec.ScannerAt())
}

func TestToSpecRandomObstaclesAvoidStart(t *testing.T) {
	f := &File{Name: "Crowded", GridSize: "3x3", Obstacles: intPtr(20)}

	spec, err := f.ToSpec("crowded", testRand())
	require.NoError(t, err)

	assert.Len(t, spec.Blockers, 8, "obstacle count is capped to the free tiles")
	assert.NotContains(t, spec.Blockers, spec.Start)
}

func TestToSpecDeterministic(t *testing.T) {
	f := &File{
		Name:      "Random",
		GridSize:  "10x10",
		Obstacles: intPtr(12),
		Items:     []ItemFile{{Name: "gem", SpawnRandomly: boolPtr(true)}},
	}

	a, err := f.ToSpec("r", testRand())
	require.NoError(t, err)
	b, err := f.ToSpec("r", testRand())
	require.NoError(t, err)

	assert.Equal(t, a.Blockers, b.Blockers)
	assert.Equal(t, a.Items, b.Items)
}

func TestHazardMode(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want Hazards
	}{
		{"plain name", Spec{Name: "Level 2 - Scanner", Hazards: HazardsAuto}, HazardsNone},
		{"level 3 trigger", Spec{Name: "Level 3 - Blockers", Hazards: HazardsAuto}, HazardsObstacles},
		{"level 4 trigger", Spec{Name: "Level 4 - Enemies"}, HazardsObstaclesEnemies},
		{"level 3 trigger checked first", Spec{Name: "Level 3 or Level 4"}, HazardsObstacles},
		{"explicit blockers disable trigger", Spec{Name: "Level 3", Blockers: []world.Pos{{X: 1, Y: 1}}}, HazardsNone},
		{"explicit flag wins", Spec{Name: "Anything", Hazards: HazardsObstacles}, HazardsObstacles},
		{"explicit none", Spec{Name: "Level 4", Hazards: HazardsNone}, HazardsNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.HazardMode())
		})
	}
}

func TestValidateSpec(t *testing.T) {
	valid := func() *Spec {
		return &Spec{Name: "ok", Width: 5, Height: 5, Start: world.Pos{X: 1, Y: 1}}
	}

	tests := []struct {
		name   string
		mutate func(*Spec)
		errMsg string
	}{
		{"valid", func(*Spec) {}, ""},
		{"missing name", func(s *Spec) { s.Name = "" }, "name is required"},
		{"too narrow", func(s *Spec) { s.Width = 1 }, "width must be between"},
		{"start outside", func(s *Spec) { s.Start = world.Pos{X: 5, Y: 0} }, "start"},
		{"start on blocker", func(s *Spec) { s.Blockers = []world.Pos{{X: 1, Y: 1}} }, "is a blocker"},
		{"door outside", func(s *Spec) { s.Doors = []world.Pos{{X: -1, Y: 0}} }, "door"},
		{"enemy on blocker", func(s *Spec) {
			s.Blockers = []world.Pos{{X: 3, Y: 3}}
			s.Enemies = []EnemySpec{{Pos: world.Pos{X: 3, Y: 3}}}
		}, "starts on a blocker"},
		{"item outside", func(s *Spec) {
			s.Items = []ItemSpec{{Name: "gem", Pos: &world.Pos{X: 9, Y: 9}}}
		}, "outside the grid"},
		{"bad hazards", func(s *Spec) { s.Hazards = "lava" }, "unknown hazards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := ValidateSpec(s)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestReachable(t *testing.T) {
	spec := &Spec{
		Name: "walled", Width: 5, Height: 3, Start: world.Pos{X: 0, Y: 0},
		Blockers: []world.Pos{{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}},
		Doors:    []world.Pos{{X: 1, Y: 1}},
	}

	seen := Reachable(spec)

	assert.Len(t, seen, 6)
	assert.True(t, seen[world.Pos{X: 1, Y: 1}], "doors are passable for reachability")
	assert.False(t, seen[world.Pos{X: 3, Y: 0}])
}

func TestLoadPackHonoursOrderFile(t *testing.T) {
	fsys := fstest.MapFS{
		"order.txt": {Data: []byte("# comment\n\nb\na\nmissing\n")},
		"a.yaml":    {Data: []byte("name: A\ngrid_size: 4x4\n")},
		"b.yaml":    {Data: []byte("name: B\ngrid_size: 5x5\n")},
		"c.yaml":    {Data: []byte("name: C\ngrid_size: 5x5\n")},
	}

	specs, errs := LoadPack(fsys)

	require.Len(t, specs, 2)
	assert.Equal(t, "B", specs[0].Name)
	assert.Equal(t, "A", specs[1].Name)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrInvalidLevel))
}

func TestLoadPackAlphabeticalFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"z.yml":   {Data: []byte("name: Z\ngrid_size: 4x4\n")},
		"a.yaml":  {Data: []byte("name: A\ngrid_size: 4x4\n")},
		"bad.yml": {Data: []byte("name: Bad\ngrid_size: nope\n")},
	}

	specs, errs := LoadPack(fsys)

	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].ID)
	assert.Equal(t, "z", specs[1].ID)
	assert.Len(t, errs, 1)
}

func TestEmbeddedPack(t *testing.T) {
	specs, errs := LoadPack(Embedded())

	assert.Empty(t, errs)
	require.Len(t, specs, 7)
	assert.Equal(t, "01_explore_grid", specs[0].ID)
	assert.Equal(t, "Level 4 - Moving Enemies", specs[3].Name)
	assert.Equal(t, "items_collected:1", specs[1].CompletionFlag)

	for _, spec := range specs {
		for _, item := range spec.Items {
			require.NotNil(t, item.Pos, "%s: item %s has no position", spec.ID, item.Name)
			assert.True(t, Reachable(spec)[*item.Pos], "%s: item %s unreachable", spec.ID, item.Name)
		}
	}
}

func TestManager(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "first.yaml"), []byte("name: First\ngrid_size: 6x6\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.yaml"), []byte("name: Second\ngrid_size: 7x7\n"), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Count())
	spec, idx, err := m.Find("SECOND")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 7, spec.Width)

	_, err = m.Get(5)
	assert.ErrorIs(t, err, ErrLevelNotFound)
	_, _, err = m.Find("nope")
	assert.ErrorIs(t, err, ErrLevelNotFound)

	infos := m.List()
	require.Len(t, infos, 2)
	assert.Equal(t, 2, infos[1].Number)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "third.yaml"), []byte("name: Third\ngrid_size: 3x3\n"), 0644))
	require.NoError(t, m.Refresh())
	assert.Equal(t, 3, m.Count())
}

func TestManagerFallsBackToEmbedded(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 7, m.Count())

	_, err = NewManager(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestResources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "patterns"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patterns", "chase.pattern"), []byte("// MOVEMENT_PATTERN: guard\n"), 0644))

	r := NewResources(dir)

	got, err := r.ReadResource("patterns/chase.pattern")
	require.NoError(t, err)
	assert.Contains(t, got, "guard", "directory copy shadows the embedded one")

	got, err = r.ReadResource("items/scanner.item")
	require.NoError(t, err)
	assert.Contains(t, got, "scanner_range")

	_, err = r.ReadResource("../secret")
	assert.ErrorIs(t, err, ErrInvalidResource)

	_, err = r.ReadResource("items/none.item")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
