package job

import (
	"strconv"
	"strings"

	"github.com/krivenko/slurm-factory/errors"
)

// DependencyKind is one of the relations sbatch accepts in --dependency.
type DependencyKind string

const (
	// DependAfter runs the job once the prerequisites have started.
	DependAfter DependencyKind = "after"
	// DependAfterOK runs the job once the prerequisites finished successfully.
	DependAfterOK DependencyKind = "afterok"
	// DependAfterAny runs the job once the prerequisites terminated, however.
	DependAfterAny DependencyKind = "afterany"
	// DependAfterNotOK runs the job once the prerequisites have failed.
	DependAfterNotOK DependencyKind = "afternotok"
	// DependExpand allocates resources to expand the prerequisite job.
	DependExpand DependencyKind = "expand"
	// DependSingleton runs one job of this name and user at a time.
	DependSingleton DependencyKind = "singleton"
)

var dependencyKinds = map[DependencyKind]struct{}{
	DependAfter:      {},
	DependAfterOK:    {},
	DependAfterAny:   {},
	DependAfterNotOK: {},
	DependExpand:     {},
	DependSingleton:  {},
}

// Prereq is a prerequisite job: either a live document or a previously
// captured numeric handle.
type Prereq struct {
	job    *Job
	handle int
}

// Ref makes a prerequisite out of a live job document. The document must be
// submitted before any dependent referencing it is dumped or submitted.
func Ref(j *Job) Prereq { return Prereq{job: j} }

// Handle makes a prerequisite out of a captured job handle.
func Handle(id int) Prereq { return Prereq{handle: id} }

// resolve returns the numeric handle behind the prerequisite.
func (p Prereq) resolve() (int, error) {
	if p.job == nil {
		return p.handle, nil
	}
	id, ok := p.job.JobID()
	if !ok {
		return 0, errors.Newf("job %q has no handle yet; submit prerequisites before their dependents", p.job.Name())
	}
	return id, nil
}

// Dependency relates a job to a list of prerequisites under one kind.
type Dependency struct {
	Kind    DependencyKind
	Prereqs []Prereq
}

// render resolves the prerequisites into kind:handle:handle form.
// Singleton renders without handles.
func (d Dependency) render() (string, error) {
	parts := []string{string(d.Kind)}
	for _, p := range d.Prereqs {
		id, err := p.resolve()
		if err != nil {
			return "", errors.Wrapf(err, "cannot render %s dependency", d.Kind)
		}
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ":"), nil
}

// AddDependencies appends prerequisites under kind to the job's dependency
// set. kind must be one of the enumerated dependency kinds.
func (j *Job) AddDependencies(kind DependencyKind, prereqs ...Prereq) error {
	if _, ok := dependencyKinds[kind]; !ok {
		return &InvalidDependencyKindError{Kind: string(kind)}
	}
	j.deps = append(j.deps, Dependency{Kind: kind, Prereqs: prereqs})
	return nil
}

// Dependencies returns the job's dependency set.
func (j *Job) Dependencies() []Dependency {
	return j.deps
}

// DependenciesRequireAny toggles whether any single satisfied prerequisite
// suffices (true) or all must be satisfied (false, the default). Consumed by
// the scheduler, not interpreted locally.
func (j *Job) DependenciesRequireAny(flag bool) {
	j.depsRequireAny = flag
}

// renderDependencies joins the rendered dependency clauses with ',' (all
// must be satisfied) or '?' (any one suffices).
func (j *Job) renderDependencies() (string, error) {
	clauses := make([]string, 0, len(j.deps))
	for _, d := range j.deps {
		clause, err := d.render()
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	sep := ","
	if j.depsRequireAny {
		sep = "?"
	}
	return strings.Join(clauses, sep), nil
}

// ChainJobs links jobs into a linear chain: each job after the first gains a
// dependency of kind on its immediate predecessor. A single-element sequence
// is a no-op. Existing dependencies are left alone; repeated invocations
// append duplicate entries, which sbatch tolerates.
func ChainJobs(jobs []*Job, kind DependencyKind) error {
	if len(jobs) == 0 {
		return errors.New("cannot chain an empty job sequence")
	}
	if _, ok := dependencyKinds[kind]; !ok {
		return &InvalidDependencyKindError{Kind: string(kind)}
	}
	for i := 1; i < len(jobs); i++ {
		if err := jobs[i].AddDependencies(kind, Ref(jobs[i-1])); err != nil {
			return err
		}
	}
	return nil
}
