package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySetAndGet(t *testing.T) {
	r := NewRegistry()

	set, err := r.Set("SetNTasks", "ntasks", 8, Positive())
	require.NoError(t, err)
	assert.True(t, set)

	v, ok := r.Get("ntasks")
	require.True(t, ok)
	assert.Equal(t, 8, v)
	assert.Equal(t, 1, r.Len())
}

func TestRegistrySetNilRemoves(t *testing.T) {
	r := NewRegistry()
	r.Set("SetQOS", "qos", "normal")

	set, err := r.Set("SetQOS", "qos", nil)
	require.NoError(t, err)
	assert.False(t, set)
	assert.False(t, r.Has("qos"))
}

func TestRegistrySetFalseRemoves(t *testing.T) {
	r := NewRegistry()
	r.Set("SetExclusive", "exclusive", true)

	set, err := r.Set("SetExclusive", "exclusive", false)
	require.NoError(t, err)
	assert.False(t, set)
	assert.False(t, r.Has("exclusive"))
}

func TestRegistryValidationFailureLeavesStateUntouched(t *testing.T) {
	r := NewRegistry()
	r.Set("SetNTasks", "ntasks", 8, Positive())
	before := r.Options()

	set, err := r.Set("SetNTasks", "ntasks", -1, Positive())
	assert.False(t, set)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "SetNTasks", verr.Setter)
	assert.Equal(t, before, r.Options())
}

func TestRegistryFirstFailingRuleWins(t *testing.T) {
	r := NewRegistry()
	first := Rule{Check: func(any) bool { return false }, Message: "first"}
	second := Rule{Check: func(any) bool { return false }, Message: "second"}

	_, err := r.Set("SetThing", "thing", 1, first, second)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "first", verr.Message)
}

func TestRegistryInsertionOrderStable(t *testing.T) {
	r := NewRegistry()
	r.Set("a", "job-name", "x")
	r.Set("b", "partition", "debug")
	r.Set("c", "ntasks", 4)

	// Updating an existing entry keeps its position
	r.Set("a", "job-name", "y")

	opts := r.Options()
	require.Len(t, opts, 3)
	assert.Equal(t, "job-name", opts[0].Name)
	assert.Equal(t, "y", opts[0].Value)
	assert.Equal(t, "partition", opts[1].Name)
	assert.Equal(t, "ntasks", opts[2].Name)
}

func TestRegistrySetFrom(t *testing.T) {
	r := NewRegistry()
	kwargs := map[string]any{"qos": "normal", "bogus": 1}

	set, err := r.SetFrom("SetQOS", kwargs, "qos", "qos")
	require.NoError(t, err)
	assert.True(t, set)
	assert.True(t, r.Has("qos"))
	assert.NotContains(t, kwargs, "qos")

	// Absent key is a no-op
	set, err = r.SetFrom("SetAccount", kwargs, "account", "account")
	require.NoError(t, err)
	assert.False(t, set)

	// Leftovers stay behind for the caller to report
	assert.Equal(t, map[string]any{"bogus": 1}, kwargs)
}

func TestRegistrySetFromPopsRejectedKeys(t *testing.T) {
	r := NewRegistry()
	kwargs := map[string]any{"ntasks": -2}

	_, err := r.SetFrom("SetNTasks", kwargs, "ntasks", "ntasks", Positive())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, kwargs, "rejected key should still be consumed")
	assert.False(t, r.Has("ntasks"))
}

func TestRegistryDelete(t *testing.T) {
	r := NewRegistry()
	r.Set("SetQOS", "qos", "normal")
	assert.True(t, r.Delete("qos"))
	assert.False(t, r.Delete("qos"))
}
