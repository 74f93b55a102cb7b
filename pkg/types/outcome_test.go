package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityText(t *testing.T) {
	for _, a := range []Availability{Unloaded, Loading, Ready, Failed} {
		data, err := json.Marshal(a)
		require.NoError(t, err)

		var back Availability
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, a, back)
	}

	var a Availability
	assert.Error(t, a.UnmarshalText([]byte("booting")))
	assert.Equal(t, "unknown", Availability(9).String())
}

func TestRejectedNeverNilSuggestions(t *testing.T) {
	out := Rejected("Unknown book abbreviation: 'Xyz'", nil)
	assert.False(t, out.IsResolved())
	assert.NotNil(t, out.Suggestions)
	assert.Empty(t, out.Suggestions)

	assert.True(t, Resolved("https://www.churchofjesuschrist.org/study/scriptures/ot/gen/1").IsResolved())
}

func TestCountersJSONKeys(t *testing.T) {
	data, err := json.Marshal(Counters{ReferencesProcessed: 4, TextBlocksProcessed: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"referencesProcessed":4,"textBlocksProcessed":1}`, string(data))
}

func TestTrimInput(t *testing.T) {
	assert.Equal(t, "Alma 32:21", TrimInput("\t Alma 32:21 \n"))
	assert.Empty(t, TrimInput("   "))
}
