package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krivenko/slurm-factory/errors"
)

func TestDumpHelloWorld(t *testing.T) {
	j := New("hello_world")
	j.SetShell("/bin/bash")
	require.NoError(t, j.SetPartitions("debug"))
	j.SetBody("srun -n ${SLURM_NTASKS} pwd\n")

	script, err := j.Dump()
	require.NoError(t, err)

	want := "#!/bin/bash\n" +
		"#SBATCH --job-name=hello_world\n" +
		"#SBATCH --partition=debug\n" +
		"#SBATCH --parsable\n" +
		"#SBATCH --quiet\n" +
		"srun -n ${SLURM_NTASKS} pwd\n"
	assert.Equal(t, want, script)
}

func TestDumpIsRepeatable(t *testing.T) {
	j := New("stable")
	j.SetShell("/bin/sh")
	j.SetNTasks(4)
	first, err := j.Dump()
	require.NoError(t, err)
	second, err := j.Dump()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNegativeDurationLeavesJobUnchanged(t *testing.T) {
	j := New("t")
	require.NoError(t, j.SetWallTime(time.Hour))
	before := j.Options()

	err := j.SetWallTime(-time.Minute)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "SetWallTime", verr.Setter)
	assert.Equal(t, before, j.Options())

	err = j.SetTimeMin(-time.Minute)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, before, j.Options())
}

func TestMemoryOptionsAreMutuallyExclusive(t *testing.T) {
	j := New("m")
	require.NoError(t, j.SetMemory(2048))

	err := j.SetMemoryPerCPU("512M")
	var xerr *MutuallyExclusiveError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "mem", xerr.A)
	assert.Equal(t, "mem-per-cpu", xerr.B)

	// The other way around
	k := New("m2")
	require.NoError(t, k.SetMemoryPerCPU("512M"))
	err = k.SetMemory(2048)
	require.ErrorAs(t, err, &xerr)

	// Either alone is fine
	assert.True(t, j.registry.Has("mem"))
	assert.True(t, k.registry.Has("mem-per-cpu"))
}

func TestNodeCounts(t *testing.T) {
	j := New("n")

	err := j.SetMaxNodes(32)
	var derr *DependentOptionError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "minnodes", derr.Requires)

	require.NoError(t, j.SetMinNodes(16))
	require.NoError(t, j.SetMaxNodes(32))
	assert.Equal(t, "--nodes=16-32", RenderOption("nodes", mustGet(t, j, "nodes")))

	err = j.SetMaxNodes(8)
	require.ErrorAs(t, err, &derr)

	// Raising the minimum past the maximum drops the stale maximum
	require.NoError(t, j.SetMinNodes(64))
	assert.Equal(t, "--nodes=64", RenderOption("nodes", mustGet(t, j, "nodes")))
}

func TestTimeMinMayNotExceedTime(t *testing.T) {
	j := New("t")
	require.NoError(t, j.SetWallTime(time.Hour))
	require.NoError(t, j.SetTimeMin(30*time.Minute))

	err := j.SetTimeMin(2 * time.Hour)
	var derr *DependentOptionError
	require.ErrorAs(t, err, &derr)

	err = j.SetWallTime(10 * time.Minute)
	require.ErrorAs(t, err, &derr)
}

func TestFilenamePatternOptions(t *testing.T) {
	j := New("f")
	require.NoError(t, j.SetOutput("slurm-%j.out"))
	require.NoError(t, j.SetError("%12usd%17urf"))

	err := j.SetOutput("%k")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "SetOutput", verr.Setter)

	require.Error(t, j.SetError("%0ksd"))
	require.NoError(t, j.SetInput(`always\%fine`))
}

func TestBeginTokens(t *testing.T) {
	j := New("b")
	require.NoError(t, j.SetBegin(BeginToken("midnight")))
	require.NoError(t, j.SetBegin(BeginIn(2*time.Hour)))
	require.NoError(t, j.SetBegin(BeginAt(time.Now().Add(time.Hour))))

	err := j.SetBegin(BeginToken("lunchtime"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	require.Error(t, j.SetBegin(BeginIn(-time.Hour)))
}

func TestRequeueToggle(t *testing.T) {
	j := New("r")
	require.NoError(t, j.SetRequeue(false))
	assert.True(t, j.registry.Has("no-requeue"))
	assert.False(t, j.registry.Has("requeue"))

	require.NoError(t, j.SetRequeue(true))
	assert.True(t, j.registry.Has("requeue"))
	assert.False(t, j.registry.Has("no-requeue"))
}

func TestBodyNormalization(t *testing.T) {
	j := New("b")
	j.SetBody("line one\r\nline two\rline three\n")
	assert.Equal(t, "line one\nline two\nline three\n", j.Body())
}

func TestApply(t *testing.T) {
	j := New("")
	kwargs := map[string]any{
		"name":      "sweep",
		"partition": []string{"debug", "normal"},
		"time":      30 * time.Minute,
		"ntasks":    16,
		"exclusive": true,
		"mem":       "4G",
	}
	require.NoError(t, j.Apply(kwargs))
	assert.Empty(t, kwargs)
	assert.Equal(t, "sweep", j.Name())

	script, err := j.Dump()
	require.NoError(t, err)
	assert.Contains(t, script, "#SBATCH --partition=debug,normal\n")
	assert.Contains(t, script, "#SBATCH --time=30:00\n")
	assert.Contains(t, script, "#SBATCH --exclusive\n")
	assert.Contains(t, script, "#SBATCH --mem=4G\n")
}

func TestApplyReportsUnknownOptions(t *testing.T) {
	j := New("")
	kwargs := map[string]any{
		"ntasks": 4,
		"wibble": 1,
		"wobble": 2,
	}
	err := j.Apply(kwargs)
	var uerr *UnknownOptionError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, []string{"wibble", "wobble"}, uerr.Names)
	// The recognized key was still consumed
	assert.True(t, j.registry.Has("ntasks"))
}

func TestApplyStopsOnFirstSetterFailure(t *testing.T) {
	j := New("")
	kwargs := map[string]any{"ntasks": -4}
	err := j.Apply(kwargs)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, j.registry.Has("ntasks"))
}

type fakeSubmitter struct {
	handle int
	err    error
	seen   []string
}

func (f *fakeSubmitter) Submit(_ context.Context, script string) (int, error) {
	f.seen = append(f.seen, script)
	if f.err != nil {
		return 0, f.err
	}
	return f.handle, nil
}

func TestSubmitSuccess(t *testing.T) {
	j := New("ok")
	sub := &fakeSubmitter{handle: 1234}

	id, err := j.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 1234, id)
	assert.True(t, j.Submitted())

	got, ok := j.JobID()
	require.True(t, ok)
	assert.Equal(t, 1234, got)
}

func TestSubmitFailureLeavesStateUntouched(t *testing.T) {
	j := New("bad")
	sub := &fakeSubmitter{err: errors.New("sbatch: error: invalid partition")}

	_, err := j.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.False(t, j.Submitted())

	_, ok := j.JobID()
	assert.False(t, ok)
}

func TestResubmitIsIndependent(t *testing.T) {
	j := New("twice")
	sub := &fakeSubmitter{handle: 1}

	_, err := j.Submit(context.Background(), sub)
	require.NoError(t, err)

	sub.handle = 2
	id, err := j.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Len(t, sub.seen, 2)
}

func mustGet(t *testing.T, j *Job, name string) any {
	t.Helper()
	v, ok := j.GetOption(name)
	require.True(t, ok)
	return v
}
