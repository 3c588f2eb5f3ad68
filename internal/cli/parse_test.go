package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/footprint/internal/cli"
)

func TestParse_Table(t *testing.T) {
	setupCLITest(t)

	out, _, err := execute(t, "parse", "I drove 10 km to work today")
	require.NoError(t, err)

	assert.Contains(t, out, "driving (transportation)")
	assert.Contains(t, out, "2.10 kg CO₂e")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "Equivalent to driving ~10 km")
	assert.Contains(t, out, "Try walking instead to save 2.10 kg CO₂e.")
}

func TestParse_Saving(t *testing.T) {
	setupCLITest(t)

	out, _, err := execute(t, "parse", "I recycled 2 kg of plastic")
	require.NoError(t, err)
	assert.Contains(t, out, "recycling (waste)")
	assert.Contains(t, out, "saved")
}

func TestParse_JSON(t *testing.T) {
	setupCLITest(t)

	out, _, err := execute(t, "parse", "--output", "json", "I", "walked", "3", "km")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "walking", got["activity"])
	assert.Equal(t, "transportation", got["category"])
	assert.InDelta(t, 0.0, got["total_emission"], 1e-9)
	assert.Equal(t, "low", got["impact_tier"])
	assert.Equal(t, "rules", got["source"])
}

func TestParse_JSONFromConfig(t *testing.T) {
	setupCLITest(t)
	t.Setenv("FOOTPRINT_OUTPUT_FORMAT", "json")

	out, _, err := execute(t, "parse", "I took the bus 5 km")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "config default format should apply: %s", out)
}

func TestParse_NoMatch(t *testing.T) {
	setupCLITest(t)

	out, errOut, err := execute(t, "parse", "I drove somewhere nice")
	require.Error(t, err)
	assert.Equal(t, cli.ExitNoMatch, cli.ExitCode(err))
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Could not recognize an activity")
	assert.Contains(t, errOut, `"I drove 10 km to work"`)
}

func TestParse_Errors(t *testing.T) {
	setupCLITest(t)

	_, _, err := execute(t, "parse")
	require.Error(t, err, "text is required")

	_, _, err = execute(t, "parse", "--output", "xml", "I cycled 8 km")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
