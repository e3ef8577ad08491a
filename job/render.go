package job

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OpenMode selects how sbatch opens output and error files.
type OpenMode int

const (
	OpenModeTruncate OpenMode = iota
	OpenModeAppend
)

func (m OpenMode) String() string {
	if m == OpenModeAppend {
		return "append"
	}
	return "truncate"
}

// Gres is a generic consumable resource request. Count 0 means a bare name;
// Type is optional.
type Gres struct {
	Name  string
	Count int
	Type  string
}

func (g Gres) String() string {
	switch {
	case g.Type != "":
		return fmt.Sprintf("%s:%s:%d", g.Name, g.Type, g.Count)
	case g.Count > 0:
		return fmt.Sprintf("%s:%d", g.Name, g.Count)
	default:
		return g.Name
	}
}

// License is a remote license request. Count 0 means a bare name.
type License struct {
	Name  string
	Count int
}

func (l License) String() string {
	if l.Count > 0 {
		return fmt.Sprintf("%s:%d", l.Name, l.Count)
	}
	return l.Name
}

// NodeRange is a node count request. Max 0 means exactly Min nodes.
type NodeRange struct {
	Min int
	Max int
}

func (n NodeRange) String() string {
	if n.Max > 0 {
		return fmt.Sprintf("%d-%d", n.Min, n.Max)
	}
	return strconv.Itoa(n.Min)
}

// Signal describes a signal sbatch sends before the time limit is reached.
// Sig is a signal name or number; Seconds is the countdown before the limit;
// ShellOnly delivers only to the batch shell.
type Signal struct {
	Sig       string
	Seconds   int
	ShellOnly bool
}

func (s Signal) String() string {
	var b strings.Builder
	if s.ShellOnly {
		b.WriteString("B:")
	}
	b.WriteString(s.Sig)
	if s.Seconds > 0 {
		fmt.Fprintf(&b, "@%d", s.Seconds)
	}
	return b.String()
}

// Switches requests a maximum switch count for the job allocation, with an
// optional maximum time to wait for it.
type Switches struct {
	Count   int
	MaxWait time.Duration
}

func (s Switches) String() string {
	if s.MaxWait > 0 {
		return fmt.Sprintf("%d@%s", s.Count, FormatDuration(s.MaxWait))
	}
	return strconv.Itoa(s.Count)
}

// BeginTokens is the literal time vocabulary sbatch accepts verbatim.
var BeginTokens = []string{"midnight", "noon", "fika", "teatime", "today", "tomorrow"}

// Begin is an eligibility time for a job: an absolute point in time, a
// duration from now, or one of the literal tokens in BeginTokens. Exactly one
// field is meaningful; constructors enforce that.
type Begin struct {
	At    time.Time
	In    time.Duration
	Token string
}

// BeginAt defers the job until an absolute point in time.
func BeginAt(t time.Time) Begin { return Begin{At: t} }

// BeginIn defers the job by a duration from now.
func BeginIn(d time.Duration) Begin { return Begin{In: d} }

// BeginToken defers the job until a literal sbatch time token.
func BeginToken(token string) Begin { return Begin{Token: token} }

func (b Begin) String() string {
	switch {
	case b.Token != "":
		return b.Token
	case !b.At.IsZero():
		return b.At.Format("2006-01-02T15:04:05")
	case b.In%(24*time.Hour) == 0 && b.In > 0:
		return fmt.Sprintf("now+%ddays", int(b.In/(24*time.Hour)))
	default:
		return fmt.Sprintf("now+%d", int(b.In/time.Second))
	}
}

// FormatDuration renders a duration the way sbatch time specifications
// expect: MM:SS under an hour, HH:MM:SS under a day, D-HH:MM:SS beyond.
// Minutes and seconds are always zero-padded; a leading day count is not.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
}

// RenderOption turns one registry entry into a directive argument. Boolean
// true renders the flag-only form; everything else renders --name=<value>
// with type-specific formatting. Total over every value the registry can
// legally hold; unrecognized values fall back to their default string form.
func RenderOption(name string, value any) string {
	if b, ok := value.(bool); ok && b {
		return "--" + name
	}
	return fmt.Sprintf("--%s=%s", name, formatValue(value))
}

func formatValue(value any) string {
	switch v := value.(type) {
	case time.Duration:
		return FormatDuration(v)
	case time.Time:
		return v.Format("2006-01-02T15:04:05")
	case []string:
		return strings.Join(v, ",")
	case []Gres:
		return joinStringers(v)
	case []License:
		return joinStringers(v)
	default:
		// NodeRange, Signal, Switches, Begin and OpenMode all carry their
		// sbatch syntax in String; so does anything else worth storing.
		return fmt.Sprintf("%v", v)
	}
}

func joinStringers[T fmt.Stringer](items []T) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ",")
}
