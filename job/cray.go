package job

import "context"

// CrayJob wraps a Job for Cray systems, adding the network option. Network
// counted resources require exclusive node access, so dumping a CrayJob with
// a network set forces the exclusive flag first.
type CrayJob struct {
	*Job
}

// NewCray creates an empty Cray job description.
func NewCray(name string) *CrayJob {
	return &CrayJob{Job: New(name)}
}

// SetNetwork requests system- or blade-scoped network resources.
func (c *CrayJob) SetNetwork(kind string) error {
	if kind == "" {
		c.registry.Delete("network")
		return nil
	}
	_, err := c.registry.Set("SetNetwork", "network", kind, OneOf("system", "blade"))
	return err
}

// Dump renders the script, forcing exclusive access when a network resource
// is requested.
func (c *CrayJob) Dump() (string, error) {
	c.forceExclusive()
	return c.Job.Dump()
}

// Submit renders via the Cray rules and hands the script to the submitter.
func (c *CrayJob) Submit(ctx context.Context, s Submitter) (int, error) {
	c.forceExclusive()
	return c.Job.Submit(ctx, s)
}

func (c *CrayJob) forceExclusive() {
	if c.registry.Has("network") {
		c.registry.Set("SetNetwork", "exclusive", true)
	}
}
