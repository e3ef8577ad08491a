package job

import (
	"time"
)

// applier routes one keyword-map key to a named setter. The keys mirror the
// sbatch long-option vocabulary with underscores, the way batch descriptions
// are usually written down in config files.
type applier struct {
	key   string
	apply func(j *Job, value any) error
}

var appliers = []applier{
	{"name", applyString("name", (*Job).SetName)},
	{"partition", func(j *Job, v any) error {
		names, ok := asStringSlice(v)
		if !ok {
			return badValue("partition", "must be a string or a list of strings")
		}
		return j.SetPartitions(names...)
	}},
	{"time", applyDuration("time", (*Job).SetWallTime)},
	{"time_min", applyDuration("time_min", (*Job).SetTimeMin)},
	{"minnodes", applyInt("minnodes", (*Job).SetMinNodes)},
	{"maxnodes", applyInt("maxnodes", (*Job).SetMaxNodes)},
	{"exclusive", applyBool("exclusive", (*Job).SetExclusive)},
	{"mem", func(j *Job, v any) error { return j.SetMemory(v) }},
	{"mem_per_cpu", func(j *Job, v any) error { return j.SetMemoryPerCPU(v) }},
	{"ntasks", applyInt("ntasks", (*Job).SetNTasks)},
	{"cpus_per_task", applyInt("cpus_per_task", (*Job).SetCPUsPerTask)},
	{"ntasks_per_node", applyInt("ntasks_per_node", (*Job).SetNTasksPerNode)},
	{"ntasks_per_core", applyInt("ntasks_per_core", (*Job).SetNTasksPerCore)},
	{"mincpus", applyInt("mincpus", (*Job).SetMinCPUs)},
	{"reservation", applyString("reservation", (*Job).SetReservation)},
	{"constraint", applyString("constraint", (*Job).SetConstraint)},
	{"gres", func(j *Job, v any) error {
		specs, ok := v.([]Gres)
		if !ok {
			return badValue("gres", "must be a list of gres specs")
		}
		return j.SetGres(specs...)
	}},
	{"licenses", func(j *Job, v any) error {
		specs, ok := v.([]License)
		if !ok {
			return badValue("licenses", "must be a list of license specs")
		}
		return j.SetLicenses(specs...)
	}},
	{"qos", applyString("qos", (*Job).SetQOS)},
	{"account", applyString("account", (*Job).SetAccount)},
	{"begin", func(j *Job, v any) error {
		switch x := v.(type) {
		case Begin:
			return j.SetBegin(x)
		case time.Time:
			return j.SetBegin(BeginAt(x))
		case time.Duration:
			return j.SetBegin(BeginIn(x))
		case string:
			return j.SetBegin(BeginToken(x))
		default:
			return badValue("begin", "must be a time, duration, or literal time token")
		}
	}},
	{"deadline", func(j *Job, v any) error {
		t, ok := v.(time.Time)
		if !ok {
			return badValue("deadline", "must be a point in time")
		}
		return j.SetDeadline(t)
	}},
	{"immediate", applyBool("immediate", (*Job).SetImmediate)},
	{"requeue", applyBool("requeue", (*Job).SetRequeue)},
	{"hold", applyBool("hold", (*Job).SetHold)},
	{"signal", func(j *Job, v any) error {
		s, ok := v.(Signal)
		if !ok {
			return badValue("signal", "must be a signal spec")
		}
		return j.SetSignal(s)
	}},
	{"open_mode", func(j *Job, v any) error {
		switch x := v.(type) {
		case OpenMode:
			return j.SetOpenMode(x)
		case string:
			switch x {
			case "append":
				return j.SetOpenMode(OpenModeAppend)
			case "truncate":
				return j.SetOpenMode(OpenModeTruncate)
			}
		}
		return badValue("open_mode", `must be "append" or "truncate"`)
	}},
	{"output", applyString("output", (*Job).SetOutput)},
	{"error", applyString("error", (*Job).SetError)},
	{"input", applyString("input", (*Job).SetInput)},
	{"workdir", applyString("workdir", (*Job).SetWorkdir)},
	{"mail_user", applyString("mail_user", (*Job).SetMailUser)},
	{"mail_types", func(j *Job, v any) error {
		types, ok := asStringSlice(v)
		if !ok {
			return badValue("mail_types", "must be a string or a list of strings")
		}
		return j.SetMailTypes(types...)
	}},
	{"switches", func(j *Job, v any) error {
		s, ok := v.(Switches)
		if !ok {
			return badValue("switches", "must be a switches spec")
		}
		return j.SetSwitches(s)
	}},
	{"body", func(j *Job, v any) error {
		s, ok := v.(string)
		if !ok {
			return badValue("body", "must be a string")
		}
		j.SetBody(s)
		return nil
	}},
}

func badValue(key, message string) error {
	return &ValidationError{Setter: key, Message: message}
}

func applyString(key string, set func(*Job, string) error) func(*Job, any) error {
	return func(j *Job, v any) error {
		s, ok := v.(string)
		if !ok {
			return badValue(key, "must be a string")
		}
		return set(j, s)
	}
}

func applyInt(key string, set func(*Job, int) error) func(*Job, any) error {
	return func(j *Job, v any) error {
		n, ok := v.(int)
		if !ok {
			return badValue(key, "must be an integer")
		}
		return set(j, n)
	}
}

func applyBool(key string, set func(*Job, bool) error) func(*Job, any) error {
	return func(j *Job, v any) error {
		b, ok := v.(bool)
		if !ok {
			return badValue(key, "must be a boolean")
		}
		return set(j, b)
	}
}

func applyDuration(key string, set func(*Job, time.Duration) error) func(*Job, any) error {
	return func(j *Job, v any) error {
		d, ok := v.(time.Duration)
		if !ok {
			return badValue(key, "must be a duration")
		}
		return set(j, d)
	}
}

func asStringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case string:
		return []string{x}, true
	case []string:
		return x, true
	default:
		return nil, false
	}
}
