// Package sbatch talks to the external SLURM submission executable.
//
// The Client feeds rendered scripts to sbatch on stdin and parses the
// --parsable response into a numeric job handle. The executable is located
// lazily: nothing fails until an operation actually needs to run it.
package sbatch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/krivenko/slurm-factory/config"
	"github.com/krivenko/slurm-factory/errors"
	"github.com/krivenko/slurm-factory/logger"
)

// SubmissionError reports a failed submission round trip: a non-zero exit
// status or an unparsable response. Output carries the captured diagnostic
// text verbatim.
type SubmissionError struct {
	Reason string
	Output string
}

func (e *SubmissionError) Error() string {
	if out := strings.TrimSpace(e.Output); out != "" {
		return fmt.Sprintf("%s:\n%s", e.Reason, out)
	}
	return e.Reason
}

// ExecutableNotFoundError reports that no submission executable is
// configured and none could be discovered on $PATH.
type ExecutableNotFoundError struct {
	Name string
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("could not locate %q executable", e.Name)
}

// Client submits scripts through the sbatch executable. The zero value
// discovers sbatch on $PATH; use New to pin a path or pass extra arguments.
type Client struct {
	path      string
	extraArgs []string
	log       *zap.SugaredLogger
}

// New creates a client. An empty path means "discover sbatch on $PATH when
// first needed". extraArgs are appended to every sbatch invocation.
func New(path string, extraArgs ...string) *Client {
	return &Client{path: path, extraArgs: extraArgs, log: logger.Named("sbatch")}
}

// NewFromConfig builds a client from the loaded configuration, splitting
// sbatch.extra_args with shell quoting rules.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	args, err := shellquote.Split(cfg.Sbatch.ExtraArgs)
	if err != nil {
		return nil, errors.Wrap(err, "malformed sbatch.extra_args")
	}
	return New(cfg.Sbatch.Path, args...), nil
}

// executable resolves the sbatch path, discovering it on $PATH when not
// pinned. Resolution is deferred to here so constructing a Client on a
// machine without SLURM stays legal.
func (c *Client) executable() (string, error) {
	if c.path != "" {
		return c.path, nil
	}
	path, err := exec.LookPath("sbatch")
	if err != nil {
		return "", &ExecutableNotFoundError{Name: "sbatch"}
	}
	return path, nil
}

var handleRe = regexp.MustCompile(`^[0-9]+$`)

// Submit feeds the script to sbatch and returns the handle the scheduler
// assigned. The round trip blocks until sbatch exits; wrap ctx for
// timeouts. Failures are never retried here.
func (c *Client) Submit(ctx context.Context, script string) (int, error) {
	exe, err := c.executable()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, exe, c.extraArgs...)
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, &SubmissionError{
			Reason: fmt.Sprintf("%s exited abnormally (%v)", exe, err),
			Output: stderr.String() + stdout.String(),
		}
	}

	handle, err := parseHandle(stdout.String())
	if err != nil {
		return 0, err
	}
	c.log.Debugw("submitted batch job", "handle", handle)
	return handle, nil
}

// parseHandle extracts the job handle from a --parsable response: a single
// line containing only decimal digits.
func parseHandle(out string) (int, error) {
	line := strings.TrimSpace(out)
	if !handleRe.MatchString(line) {
		return 0, &SubmissionError{Reason: "unparsable sbatch response", Output: out}
	}
	handle, err := strconv.Atoi(line)
	if err != nil {
		return 0, &SubmissionError{Reason: "unparsable sbatch response", Output: out}
	}
	return handle, nil
}
