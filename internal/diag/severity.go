package diag

// Severity ranks a diagnostic. Anything that Blocks marks its unit as
// failed: the driver emits no code for it and the CLI exits non-zero.
type Severity uint8

const (
	SevInfo Severity = iota
	// SevWarning is reported but leaves the unit's code intact.
	SevWarning
	SevError
)

var severityLabels = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

// Blocks reports whether s fails the unit it is attached to.
func (s Severity) Blocks() bool { return s >= SevError }

func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "UNKNOWN"
}
