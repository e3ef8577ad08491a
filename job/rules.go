package job

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// Rule is a reusable validation predicate with a failure message. Setters run
// rules against a candidate value before storing it; the first failing rule
// aborts the set with a ValidationError carrying Message.
type Rule struct {
	Check   func(value any) bool
	Message string
}

// Positive accepts strictly positive integers. Node, task and core counts
// all use it.
func Positive() Rule {
	return Rule{
		Check: func(v any) bool {
			n, ok := v.(int)
			return ok && n > 0
		},
		Message: "must be a positive integer",
	}
}

// NonNegativeDuration accepts durations >= 0.
func NonNegativeDuration() Rule {
	return Rule{
		Check: func(v any) bool {
			d, ok := v.(time.Duration)
			return ok && d >= 0
		},
		Message: "must be a non-negative duration",
	}
}

// Matches accepts strings matching the given pattern.
func Matches(re *regexp.Regexp, message string) Rule {
	return Rule{
		Check: func(v any) bool {
			s, ok := v.(string)
			return ok && re.MatchString(s)
		},
		Message: message,
	}
}

var memorySizeRe = regexp.MustCompile(`^[0-9]+[KMGT]$`)

// MemorySize accepts a positive integer (megabytes) or a string of the form
// <digits><K|M|G|T>.
func MemorySize() Rule {
	return Rule{
		Check: func(v any) bool {
			switch x := v.(type) {
			case int:
				return x > 0
			case string:
				return memorySizeRe.MatchString(x)
			default:
				return false
			}
		},
		Message: "must be a positive integer or a string of the form <digits><K|M|G|T>",
	}
}

var reservationRe = regexp.MustCompile(`^[a-z0-9_-]*$`)

// ReservationName accepts lowercase alphanumeric reservation names with
// underscores and dashes.
func ReservationName() Rule {
	return Matches(reservationRe, "reservation name may contain only [a-z0-9_-]")
}

// Constraint expressions combine feature tags with ',' (all of), '|' (or),
// '&' (and), or a bracketed matching-OR group. Each tag may carry a *<count>
// suffix. One grammar per expression; mixing separators is rejected.
var constraintRes = func() []*regexp.Regexp {
	elem := `\w+(\*[0-9]+)?`
	return []*regexp.Regexp{
		regexp.MustCompile(`^` + elem + `(,` + elem + `)*$`),
		regexp.MustCompile(`^` + elem + `(\|` + elem + `)*$`),
		regexp.MustCompile(`^` + elem + `(&` + elem + `)*$`),
		regexp.MustCompile(`^\[` + elem + `(\|` + elem + `)*\]$`),
	}
}()

// ConstraintExpr accepts constraint expressions in one of the four grammars
// sbatch understands.
func ConstraintExpr() Rule {
	return Rule{
		Check: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			for _, re := range constraintRes {
				if re.MatchString(s) {
					return true
				}
			}
			return false
		},
		Message: "malformed constraint expression",
	}
}

// filename placeholder conversion characters recognized by sbatch
const filenameConversions = "%AaJjNnstux"

// validFilenamePattern scans s for '%' characters. Every unescaped '%' must
// start a placeholder %<digits...><conversion>; a backslash escapes the
// following character unconditionally.
func validFilenamePattern(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // escaped character, always accepted
		case '%':
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j >= len(s) || !strings.ContainsRune(filenameConversions, rune(s[j])) {
				return false
			}
			i = j
		}
	}
	return true
}

// FilenamePattern accepts sbatch filename patterns: literal text with
// %<digits?><one of % A a J j N n s t u x> placeholders.
func FilenamePattern() Rule {
	return Rule{
		Check: func(v any) bool {
			s, ok := v.(string)
			return ok && validFilenamePattern(s)
		},
		Message: "invalid filename pattern",
	}
}

// ValidEmail accepts RFC 5322 addresses.
func ValidEmail() Rule {
	return Rule{
		Check: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			addr, err := mail.ParseAddress(s)
			return err == nil && strings.Contains(addr.Address, "@")
		},
		Message: "must be a valid e-mail address",
	}
}

// OneOf accepts any of the listed string tokens.
func OneOf(tokens ...string) Rule {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return Rule{
		Check: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			_, ok = set[s]
			return ok
		},
		Message: "must be one of: " + strings.Join(tokens, ", "),
	}
}
