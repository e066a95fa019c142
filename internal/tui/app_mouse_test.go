package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/harmony/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := tabWidthForTest(tab.Name, i == active)
			x := pos + w/2 // midpoint inside this tab
			require.Equal(t, i, a.tabAtX(x), "active=%d x=%d", active, x)
			pos += w + 1 // separator
		}
		require.Equal(t, -1, a.tabAtX(pos+50), "active=%d past the last tab", active)
	}
}

func tabWidthForTest(name string, active bool) int {
	w := len([]rune(name)) + 2 // horizontal padding
	if !active {
		w += 2 // inactive tabs bracket their shortcut letter
	}
	return w
}
