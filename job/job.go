// Package job builds SLURM batch-job descriptions.
//
// A Job holds an ordered registry of validated sbatch options and a script
// body. Named setters validate values and enforce cross-option invariants;
// Dump renders the full script text; Submit hands it to a Submitter for the
// external sbatch round trip.
package job

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"
)

// Submitter delivers a rendered script to the batch scheduler and returns
// the numeric handle it assigned.
type Submitter interface {
	Submit(ctx context.Context, script string) (int, error)
}

// Job is a SLURM batch-job description under construction. The zero value is
// not usable; create jobs with New. A Job is not safe for concurrent
// mutation, but independent Jobs share nothing.
type Job struct {
	registry *Registry
	body     string
	shell    string

	deps           []Dependency
	depsRequireAny bool

	submitted bool
	jobID     int
}

// New creates an empty job description. A non-empty name becomes the
// job-name option. The interpreter line defaults to $SHELL, falling back to
// /bin/bash.
func New(name string) *Job {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	j := &Job{registry: NewRegistry(), shell: shell}
	if name != "" {
		j.registry.Set("New", "job-name", name)
	}
	return j
}

// Name returns the job-name option, or "" when unset.
func (j *Job) Name() string {
	if v, ok := j.registry.Get("job-name"); ok {
		return v.(string)
	}
	return ""
}

// SetShell overrides the interpreter used on the #! line.
func (j *Job) SetShell(path string) {
	j.shell = path
}

// Options returns a snapshot of the stored options in insertion order.
func (j *Job) Options() []Option {
	return j.registry.Options()
}

// GetOption returns the stored value for a directive name.
func (j *Job) GetOption(name string) (any, bool) {
	return j.registry.Get(name)
}

// ClearOption removes a directive, reporting whether it was present.
func (j *Job) ClearOption(name string) bool {
	return j.registry.Delete(name)
}

// SetName sets or (with "") clears the job name.
func (j *Job) SetName(name string) error {
	if name == "" {
		j.registry.Delete("job-name")
		return nil
	}
	_, err := j.registry.Set("SetName", "job-name", name)
	return err
}

// SetPartitions requests one or more partitions for the job.
func (j *Job) SetPartitions(names ...string) error {
	if len(names) == 0 {
		j.registry.Delete("partition")
		return nil
	}
	for _, n := range names {
		if n == "" {
			return &ValidationError{Setter: "SetPartitions", Message: "partition name must not be empty"}
		}
	}
	_, err := j.registry.Set("SetPartitions", "partition", names)
	return err
}

// SetWallTime sets the time limit. The limit may not be shorter than an
// already-set time-min.
func (j *Job) SetWallTime(d time.Duration) error {
	if d < 0 {
		return &ValidationError{Setter: "SetWallTime", Message: "must be a non-negative duration"}
	}
	if v, ok := j.registry.Get("time-min"); ok && v.(time.Duration) > d {
		return &DependentOptionError{Option: "time", Requires: "time-min", Message: "time limit must not be below the minimum time limit"}
	}
	_, err := j.registry.Set("SetWallTime", "time", d)
	return err
}

// SetTimeMin sets the minimum acceptable time limit. It may not exceed an
// already-set time limit.
func (j *Job) SetTimeMin(d time.Duration) error {
	if v, ok := j.registry.Get("time"); ok && d > v.(time.Duration) {
		return &DependentOptionError{Option: "time-min", Requires: "time", Message: "minimum time limit must not exceed the time limit"}
	}
	_, err := j.registry.Set("SetTimeMin", "time-min", d, NonNegativeDuration())
	return err
}

// SetMinNodes requests at least n nodes, preserving a previously set
// maximum when still consistent.
func (j *Job) SetMinNodes(n int) error {
	if n <= 0 {
		return &ValidationError{Setter: "SetMinNodes", Message: "must be a positive integer"}
	}
	rng := NodeRange{Min: n}
	if v, ok := j.registry.Get("nodes"); ok {
		if prev := v.(NodeRange); prev.Max >= n {
			rng.Max = prev.Max
		}
	}
	_, err := j.registry.Set("SetMinNodes", "nodes", rng)
	return err
}

// SetMaxNodes caps the node count. A minimum must already be present and may
// not exceed n.
func (j *Job) SetMaxNodes(n int) error {
	if n <= 0 {
		return &ValidationError{Setter: "SetMaxNodes", Message: "must be a positive integer"}
	}
	v, ok := j.registry.Get("nodes")
	if !ok {
		return &DependentOptionError{Option: "maxnodes", Requires: "minnodes", Message: "set a minimum node count first"}
	}
	rng := v.(NodeRange)
	if n < rng.Min {
		return &DependentOptionError{Option: "maxnodes", Requires: "minnodes", Message: "maximum node count must not be below the minimum"}
	}
	rng.Max = n
	_, err := j.registry.Set("SetMaxNodes", "nodes", rng)
	return err
}

// SetExclusive requests (or with false releases) exclusive node access.
func (j *Job) SetExclusive(on bool) error {
	_, err := j.registry.Set("SetExclusive", "exclusive", on)
	return err
}

// SetMemory sets the real memory required per node: a positive integer
// (megabytes) or a string like "4G". Mutually exclusive with mem-per-cpu.
func (j *Job) SetMemory(size any) error {
	if j.registry.Has("mem-per-cpu") {
		return &MutuallyExclusiveError{A: "mem", B: "mem-per-cpu"}
	}
	_, err := j.registry.Set("SetMemory", "mem", size, MemorySize())
	return err
}

// SetMemoryPerCPU sets the memory required per allocated CPU. Mutually
// exclusive with mem.
func (j *Job) SetMemoryPerCPU(size any) error {
	if j.registry.Has("mem") {
		return &MutuallyExclusiveError{A: "mem", B: "mem-per-cpu"}
	}
	_, err := j.registry.Set("SetMemoryPerCPU", "mem-per-cpu", size, MemorySize())
	return err
}

// SetNTasks sets the number of tasks to run.
func (j *Job) SetNTasks(n int) error {
	_, err := j.registry.Set("SetNTasks", "ntasks", n, Positive())
	return err
}

// SetCPUsPerTask sets the CPU count per task.
func (j *Job) SetCPUsPerTask(n int) error {
	_, err := j.registry.Set("SetCPUsPerTask", "cpus-per-task", n, Positive())
	return err
}

// SetNTasksPerNode caps tasks per node.
func (j *Job) SetNTasksPerNode(n int) error {
	_, err := j.registry.Set("SetNTasksPerNode", "ntasks-per-node", n, Positive())
	return err
}

// SetNTasksPerCore caps tasks per core.
func (j *Job) SetNTasksPerCore(n int) error {
	_, err := j.registry.Set("SetNTasksPerCore", "ntasks-per-core", n, Positive())
	return err
}

// SetMinCPUs sets the minimum CPU count per node.
func (j *Job) SetMinCPUs(n int) error {
	_, err := j.registry.Set("SetMinCPUs", "mincpus", n, Positive())
	return err
}

// SetReservation allocates resources from a named reservation.
func (j *Job) SetReservation(name string) error {
	_, err := j.registry.Set("SetReservation", "reservation", name, ReservationName())
	return err
}

// SetConstraint restricts eligible nodes with a feature-constraint
// expression.
func (j *Job) SetConstraint(expr string) error {
	_, err := j.registry.Set("SetConstraint", "constraint", expr, ConstraintExpr())
	return err
}

// SetGres requests generic consumable resources.
func (j *Job) SetGres(specs ...Gres) error {
	if len(specs) == 0 {
		j.registry.Delete("gres")
		return nil
	}
	for _, g := range specs {
		if g.Name == "" {
			return &ValidationError{Setter: "SetGres", Message: "gres name must not be empty"}
		}
		if g.Count < 0 {
			return &ValidationError{Setter: "SetGres", Message: "gres count must not be negative"}
		}
		if g.Type != "" && g.Count == 0 {
			return &ValidationError{Setter: "SetGres", Message: "typed gres requires a count"}
		}
	}
	_, err := j.registry.Set("SetGres", "gres", specs)
	return err
}

// SetLicenses requests remote licenses.
func (j *Job) SetLicenses(specs ...License) error {
	if len(specs) == 0 {
		j.registry.Delete("licenses")
		return nil
	}
	for _, l := range specs {
		if l.Name == "" {
			return &ValidationError{Setter: "SetLicenses", Message: "license name must not be empty"}
		}
		if l.Count < 0 {
			return &ValidationError{Setter: "SetLicenses", Message: "license count must not be negative"}
		}
	}
	_, err := j.registry.Set("SetLicenses", "licenses", specs)
	return err
}

// SetQOS requests a quality of service.
func (j *Job) SetQOS(name string) error {
	_, err := j.registry.Set("SetQOS", "qos", nonEmpty(name))
	return err
}

// SetAccount charges the job to an account.
func (j *Job) SetAccount(name string) error {
	_, err := j.registry.Set("SetAccount", "account", nonEmpty(name))
	return err
}

// SetBegin defers the job until the given eligibility time.
func (j *Job) SetBegin(b Begin) error {
	if b.Token != "" {
		if err := validateBeginToken(b.Token); err != nil {
			return err
		}
	} else if b.At.IsZero() && b.In < 0 {
		return &ValidationError{Setter: "SetBegin", Message: "relative begin time must not be negative"}
	}
	_, err := j.registry.Set("SetBegin", "begin", b)
	return err
}

func validateBeginToken(token string) error {
	for _, t := range BeginTokens {
		if t == token {
			return nil
		}
	}
	return &ValidationError{Setter: "SetBegin", Message: "unrecognized begin token " + token}
}

// SetDeadline asks the scheduler to drop the job if it cannot finish before
// the given point in time.
func (j *Job) SetDeadline(t time.Time) error {
	if t.IsZero() {
		j.registry.Delete("deadline")
		return nil
	}
	_, err := j.registry.Set("SetDeadline", "deadline", t)
	return err
}

// SetImmediate requests immediate allocation or failure.
func (j *Job) SetImmediate(on bool) error {
	_, err := j.registry.Set("SetImmediate", "immediate", on)
	return err
}

// SetRequeue marks the job as eligible (true) or ineligible (false) for
// requeueing after node failure or preemption. The zero state leaves the
// cluster default in effect; use ClearOption to return to it.
func (j *Job) SetRequeue(on bool) error {
	if on {
		j.registry.Delete("no-requeue")
		_, err := j.registry.Set("SetRequeue", "requeue", true)
		return err
	}
	j.registry.Delete("requeue")
	_, err := j.registry.Set("SetRequeue", "no-requeue", true)
	return err
}

// SetHold submits the job in a held state.
func (j *Job) SetHold(on bool) error {
	_, err := j.registry.Set("SetHold", "hold", on)
	return err
}

// SetSignal asks sbatch to signal the job before its time limit.
func (j *Job) SetSignal(s Signal) error {
	if s.Sig == "" {
		j.registry.Delete("signal")
		return nil
	}
	if s.Seconds < 0 || s.Seconds > 0xffff {
		return &ValidationError{Setter: "SetSignal", Message: "signal countdown must be between 0 and 65535 seconds"}
	}
	_, err := j.registry.Set("SetSignal", "signal", s)
	return err
}

// SetOpenMode selects truncate or append for output and error files.
func (j *Job) SetOpenMode(m OpenMode) error {
	_, err := j.registry.Set("SetOpenMode", "open-mode", m)
	return err
}

// SetOutput redirects standard output to a pattern-validated file name.
func (j *Job) SetOutput(pattern string) error {
	_, err := j.registry.Set("SetOutput", "output", nonEmpty(pattern), FilenamePattern())
	return err
}

// SetError redirects standard error to a pattern-validated file name.
func (j *Job) SetError(pattern string) error {
	_, err := j.registry.Set("SetError", "error", nonEmpty(pattern), FilenamePattern())
	return err
}

// SetInput connects standard input to a pattern-validated file name.
func (j *Job) SetInput(pattern string) error {
	_, err := j.registry.Set("SetInput", "input", nonEmpty(pattern), FilenamePattern())
	return err
}

// SetWorkdir sets the working directory of the batch script.
func (j *Job) SetWorkdir(dir string) error {
	_, err := j.registry.Set("SetWorkdir", "workdir", nonEmpty(dir))
	return err
}

// SetMailUser directs state-change notification mail to the given address.
func (j *Job) SetMailUser(address string) error {
	_, err := j.registry.Set("SetMailUser", "mail-user", nonEmpty(address), ValidEmail())
	return err
}

// Mail event types accepted by SetMailTypes.
var mailTypes = []string{
	"NONE", "BEGIN", "END", "FAIL", "REQUEUE", "ALL", "STAGE_OUT",
	"TIME_LIMIT", "TIME_LIMIT_90", "TIME_LIMIT_80", "TIME_LIMIT_50", "ARRAY_TASKS",
}

// SetMailTypes selects which state changes trigger notification mail.
func (j *Job) SetMailTypes(types ...string) error {
	if len(types) == 0 {
		j.registry.Delete("mail-type")
		return nil
	}
	rule := OneOf(mailTypes...)
	for _, t := range types {
		if !rule.Check(t) {
			return &ValidationError{Setter: "SetMailTypes", Message: rule.Message}
		}
	}
	_, err := j.registry.Set("SetMailTypes", "mail-type", types)
	return err
}

// SetSwitches caps the number of leaf switches for the allocation, with an
// optional maximum wait time for that topology.
func (j *Job) SetSwitches(s Switches) error {
	if s.Count <= 0 {
		return &ValidationError{Setter: "SetSwitches", Message: "switch count must be a positive integer"}
	}
	if s.MaxWait < 0 {
		return &ValidationError{Setter: "SetSwitches", Message: "switch wait time must not be negative"}
	}
	_, err := j.registry.Set("SetSwitches", "switches", s)
	return err
}

// nonEmpty maps "" to nil so Set treats an empty string as removal.
func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SetBody sets the script body verbatim, normalizing line endings to \n.
func (j *Job) SetBody(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	j.body = strings.ReplaceAll(text, "\r", "\n")
}

// Body returns the normalized script body.
func (j *Job) Body() string {
	return j.body
}

// Dump renders the full script: interpreter line, one #SBATCH directive per
// stored option in insertion order, the dependency directive when present,
// the parsable and quiet control directives, then the body. Pure function of
// the current state; callable repeatedly. It fails only when a dependency
// references a live job that has no handle yet.
func (j *Job) Dump() (string, error) {
	var b strings.Builder
	b.WriteString("#!" + j.shell + "\n")
	for _, opt := range j.registry.Options() {
		b.WriteString("#SBATCH " + RenderOption(opt.Name, opt.Value) + "\n")
	}
	if len(j.deps) > 0 {
		deps, err := j.renderDependencies()
		if err != nil {
			return "", err
		}
		b.WriteString("#SBATCH --dependency=" + deps + "\n")
	}
	b.WriteString("#SBATCH --parsable\n")
	b.WriteString("#SBATCH --quiet\n")
	b.WriteString(j.body)
	return b.String(), nil
}

// Submit renders the job and hands it to the submitter. On success the
// returned handle is stored and the job is marked submitted; on failure the
// submission state is left untouched. Submitting again performs a fresh,
// independent submission.
func (j *Job) Submit(ctx context.Context, s Submitter) (int, error) {
	script, err := j.Dump()
	if err != nil {
		return 0, err
	}
	id, err := s.Submit(ctx, script)
	if err != nil {
		return 0, err
	}
	j.jobID = id
	j.submitted = true
	return id, nil
}

// Submitted reports whether the job has been accepted by the scheduler.
func (j *Job) Submitted() bool {
	return j.submitted
}

// JobID returns the handle assigned at submission.
func (j *Job) JobID() (int, bool) {
	return j.jobID, j.submitted
}

// Apply consumes a keyword-style option map, popping every recognized key
// and routing it through the corresponding setter. Keys left over when all
// appliers have run are reported as an UnknownOptionError. On the first
// setter failure the map is left with the remaining keys still in place.
func (j *Job) Apply(kwargs map[string]any) error {
	for _, a := range appliers {
		value, ok := kwargs[a.key]
		if !ok {
			continue
		}
		delete(kwargs, a.key)
		if err := a.apply(j, value); err != nil {
			return err
		}
	}
	if len(kwargs) > 0 {
		names := make([]string, 0, len(kwargs))
		for k := range kwargs {
			names = append(names, k)
		}
		sort.Strings(names)
		return &UnknownOptionError{Names: names}
	}
	return nil
}
