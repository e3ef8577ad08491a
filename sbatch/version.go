package sbatch

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/krivenko/slurm-factory/errors"
)

// VersionToken is one dotted-or-dashed component of the scheduler version.
// Numeric components are parsed to integers; pre-release suffixes stay text.
type VersionToken struct {
	Number  int
	Text    string
	Numeric bool
}

func (t VersionToken) String() string {
	if t.Numeric {
		return strconv.Itoa(t.Number)
	}
	return t.Text
}

// VersionInfo is the parsed response of `sbatch --version`.
type VersionInfo struct {
	Product string // e.g. "slurm"
	Raw     string // version string as reported, e.g. "17.02.1-2"
	Tokens  []VersionToken
}

func (v VersionInfo) String() string {
	return v.Product + " " + v.Raw
}

// SemVer exposes the version for constraint checks. Dashed suffixes parse as
// semver pre-release identifiers.
func (v VersionInfo) SemVer() (*semver.Version, error) {
	sv, err := semver.NewVersion(v.Raw)
	if err != nil {
		return nil, errors.Wrapf(err, "scheduler version %q is not semver-comparable", v.Raw)
	}
	return sv, nil
}

// ParseVersion parses a single-line version response of the form
// `<product> <dotted-and-dashed version>`.
func ParseVersion(line string) (VersionInfo, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return VersionInfo{}, errors.Newf("malformed version response %q", line)
	}

	raw := fields[len(fields)-1]
	info := VersionInfo{
		Product: strings.Join(fields[:len(fields)-1], " "),
		Raw:     raw,
	}
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == '.' || r == '-' }) {
		if n, err := strconv.Atoi(part); err == nil {
			info.Tokens = append(info.Tokens, VersionToken{Number: n, Numeric: true})
		} else {
			info.Tokens = append(info.Tokens, VersionToken{Text: part})
		}
	}
	if len(info.Tokens) == 0 {
		return VersionInfo{}, errors.Newf("malformed version response %q", line)
	}
	return info, nil
}

// Version queries the submission executable for the scheduler version.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	exe, err := c.executable()
	if err != nil {
		return VersionInfo{}, err
	}

	out, err := exec.CommandContext(ctx, exe, "--version").Output()
	if err != nil {
		return VersionInfo{}, errors.Wrapf(err, "%s --version failed", exe)
	}
	return ParseVersion(string(out))
}

// Supports reports whether the scheduler version satisfies a semver
// constraint such as ">= 17.02".
func (c *Client) Supports(ctx context.Context, constraint string) (bool, error) {
	cons, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, errors.Wrapf(err, "malformed version constraint %q", constraint)
	}
	info, err := c.Version(ctx)
	if err != nil {
		return false, err
	}
	sv, err := info.SemVer()
	if err != nil {
		return false, err
	}
	return cons.Check(sv), nil
}
