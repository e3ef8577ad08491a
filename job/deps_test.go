package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainJobs(t *testing.T) {
	a := New("a")
	b := New("b")
	c := New("c")

	require.NoError(t, ChainJobs([]*Job{a, b, c}, DependAfterOK))

	assert.Empty(t, a.Dependencies())

	bDeps := b.Dependencies()
	require.Len(t, bDeps, 1)
	assert.Equal(t, DependAfterOK, bDeps[0].Kind)
	require.Len(t, bDeps[0].Prereqs, 1)
	assert.Same(t, a, bDeps[0].Prereqs[0].job)

	cDeps := c.Dependencies()
	require.Len(t, cDeps, 1)
	assert.Same(t, b, cDeps[0].Prereqs[0].job)
}

func TestChainJobsSingleElementIsNoOp(t *testing.T) {
	a := New("a")
	require.NoError(t, ChainJobs([]*Job{a}, DependAfterOK))
	assert.Empty(t, a.Dependencies())
}

func TestChainJobsEmptyFails(t *testing.T) {
	assert.Error(t, ChainJobs(nil, DependAfterOK))
}

func TestChainJobsKeepsExistingDependencies(t *testing.T) {
	a := New("a")
	b := New("b")
	require.NoError(t, b.AddDependencies(DependAfterAny, Handle(99)))

	require.NoError(t, ChainJobs([]*Job{a, b}, DependAfterOK))

	deps := b.Dependencies()
	require.Len(t, deps, 2)
	assert.Equal(t, DependAfterAny, deps[0].Kind)
	assert.Equal(t, DependAfterOK, deps[1].Kind)
}

func TestChainJobsAppendsDuplicates(t *testing.T) {
	a := New("a")
	b := New("b")
	jobs := []*Job{a, b}
	require.NoError(t, ChainJobs(jobs, DependAfterOK))
	require.NoError(t, ChainJobs(jobs, DependAfterOK))
	assert.Len(t, b.Dependencies(), 2)
}

func TestAddDependenciesRejectsUnknownKind(t *testing.T) {
	j := New("j")
	err := j.AddDependencies(DependencyKind("whenever"), Handle(1))

	var kerr *InvalidDependencyKindError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "whenever", kerr.Kind)
	assert.Empty(t, j.Dependencies())
}

func TestChainJobsRejectsUnknownKind(t *testing.T) {
	a := New("a")
	b := New("b")
	var kerr *InvalidDependencyKindError
	assert.ErrorAs(t, ChainJobs([]*Job{a, b}, "whenever"), &kerr)
}

func TestDumpRendersHandleDependencies(t *testing.T) {
	j := New("dep")
	j.SetShell("/bin/bash")
	require.NoError(t, j.AddDependencies(DependAfterOK, Handle(101), Handle(102)))
	require.NoError(t, j.AddDependencies(DependAfterNotOK, Handle(103)))

	script, err := j.Dump()
	require.NoError(t, err)
	assert.Contains(t, script, "#SBATCH --dependency=afterok:101:102,afternotok:103\n")
}

func TestDumpRequireAnyUsesQuestionMark(t *testing.T) {
	j := New("dep")
	require.NoError(t, j.AddDependencies(DependAfterOK, Handle(1)))
	require.NoError(t, j.AddDependencies(DependAfterOK, Handle(2)))
	j.DependenciesRequireAny(true)

	script, err := j.Dump()
	require.NoError(t, err)
	assert.Contains(t, script, "--dependency=afterok:1?afterok:2\n")
}

func TestDumpSingletonDependency(t *testing.T) {
	j := New("one")
	require.NoError(t, j.AddDependencies(DependSingleton))

	script, err := j.Dump()
	require.NoError(t, err)
	assert.Contains(t, script, "#SBATCH --dependency=singleton\n")
}

func TestDumpFailsOnUnsubmittedLivePrerequisite(t *testing.T) {
	a := New("first")
	b := New("second")
	require.NoError(t, ChainJobs([]*Job{a, b}, DependAfterOK))

	_, err := b.Dump()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
}

func TestDumpResolvesSubmittedPrerequisite(t *testing.T) {
	a := New("first")
	b := New("second")
	require.NoError(t, ChainJobs([]*Job{a, b}, DependAfterOK))

	_, err := a.Submit(context.Background(), &fakeSubmitter{handle: 555})
	require.NoError(t, err)

	script, err := b.Dump()
	require.NoError(t, err)
	assert.Contains(t, script, "#SBATCH --dependency=afterok:555\n")
}
