package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCommandError(t *testing.T) {
	t.Run("implements error interface", func(t *testing.T) {
		err := NewCommandError(1)
		assert.Error(t, err)
	})

	t.Run("returns exit code", func(t *testing.T) {
		err := NewCommandError(42)
		assert.Equal(t, err.ExitCode(), 42)
		assert.EqualError(t, err, "command failed with exit code 42")
	})

	t.Run("survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("lots: %w", NewCommandError(3))
		var cmdErr *CommandError
		assert.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, cmdErr.ExitCode(), 3)
	})
}
