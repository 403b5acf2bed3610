package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/game/world"
)

type mapLoader map[string]string

func (m mapLoader) ReadResource(name string) (string, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return "", errors.New("missing " + name)
}

func TestParseCapabilities(t *testing.T) {
	content := `// Grabber upgrade
// CAPABILITY: grabber_boost = 2
// CAPABILITY: credits_value = 15
// CAPABILITY: unknown_key = 9
// CAPABILITY: scanner_range = lots

pub fn extend_reach(level: u32) -> u32 {
    level + 1
}

fn boost<T>(x: T) {}
`
	caps := ParseCapabilities(content)

	assert.Equal(t, 2, caps.GrabberBoost)
	assert.Equal(t, 15, caps.CreditsValue)
	assert.Zero(t, caps.ScannerRange)
	assert.Equal(t, []string{"extend_reach", "boost"}, caps.SpecialFunctions)
}

func TestParseCapabilitiesAfterLongLine(t *testing.T) {
	content := "// " + strings.Repeat("x", 1<<20) + "\r\n// CAPABILITY: credits_value = 7\r\n"
	caps := ParseCapabilities(content)
	assert.Equal(t, 7, caps.CreditsValue)
}

func TestParseCapabilitiesDefaults(t *testing.T) {
	caps := ParseCapabilities("")
	assert.Equal(t, Capabilities{CreditsValue: 1}, caps)
}

func TestLoadItems(t *testing.T) {
	spec := &level.Spec{Items: []level.ItemSpec{
		{Name: "gem", Pos: at(1, 1), File: "items/gem.item"},
		{Name: "coin", Pos: at(2, 2), File: "items/gem.item", Capabilities: map[string]string{CapCreditsValue: "15"}},
		{Name: "ghost", File: "items/gem.item"},
		{Name: "rock", Pos: at(3, 3), File: "items/missing.item"},
		{Name: "scanner", Pos: at(4, 4)},
	}}
	loader := mapLoader{"items/gem.item": "// CAPABILITY: credits_value = 20\nfn shine"}

	items := loadItems(spec, loader, NewRobot(world.Pos{}))

	require.Equal(t, 4, items.Total(), "items without a position are not placed")
	all := items.All()
	assert.Equal(t, 20, all[0].Capabilities.CreditsValue)
	assert.Equal(t, 15, all[1].Capabilities.CreditsValue, "inline capabilities override the file")
	assert.Equal(t, 1, all[2].Capabilities.CreditsValue, "unreadable files fall back to defaults")
	assert.Equal(t, 1, all[3].Capabilities.ScannerRange)

	all[1].Collected = true
	assert.NotContains(t, items.Active(), all[1])
	assert.Equal(t, 3, items.ActiveCount())
	assert.Len(t, items.Active(), 3)
}

func TestRobotInventory(t *testing.T) {
	r := NewRobot(world.Pos{X: 2, Y: 2})
	r.AddItem("gem")
	r.AddItem("gem")
	r.AddItem("coin")

	assert.Equal(t, 2, r.InventorySize())
	assert.Equal(t, []string{"coin", "gem"}, r.Inventory())
	assert.True(t, r.InGrabRange(world.Pos{X: 3, Y: 2}))
	assert.False(t, r.InGrabRange(world.Pos{X: 3, Y: 3}))
	assert.Equal(t, BaseScanRange, r.ScannerRange())

	r.SetScannerLevel(3)
	assert.True(t, r.HasItem(ScannerItem))
	assert.Equal(t, 4, r.ScannerRange())
}
