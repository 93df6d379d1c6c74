package cli

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCompletion(t *testing.T) {
	cmd := Completion()

	for _, name := range []string{"lots", "sell", "info"} {
		sub, ok := cmd.Sub[name]
		assert.True(t, ok, "missing %s", name)
		for _, flag := range []string{"f", "file", "telemetry"} {
			_, ok := sub.Flags[flag]
			assert.True(t, ok, "%s lacks --%s", name, flag)
		}
	}

	assert.Equal(t, []string{"30/360us", "act/365f"}, cmd.Sub["info"].Flags["day-count"].Predict(""))
	_, ok := cmd.Sub["sell"].Flags["revenue-account"]
	assert.True(t, ok)
}
