package artifact

import (
	"strings"
	"time"
)

// Mode identifies the provenance of a deployment record.
type Mode string

const (
	// ModeReal marks a record written by a real, irreversibly-broadcast
	// deployment.
	ModeReal Mode = "real"

	// ModeDryRun marks a record written by a simulated deployment. Dry-run
	// records nest under an extra path segment in the broadcast tree.
	ModeDryRun Mode = "dry-run"
)

// Address is a hex-encoded account address as it appears in a deployment
// record (0x-prefixed, 40 hex digits).
type Address string

// ZeroAddress is the all-zero address. Resolution treats it as "no value".
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// IsZero reports whether the address is empty or all zero digits.
// Addresses compare case-insensitively; broadcast tooling is inconsistent
// about checksummed casing.
func (a Address) IsZero() bool {
	if a == "" {
		return true
	}
	s := strings.TrimPrefix(strings.ToLower(string(a)), "0x")
	for _, c := range s {
		if c != '0' {
			return false
		}
	}
	return true
}

// CreationEvent is one contract creation recorded in a deployment record.
// SequenceIndex is the event's position in the record's transaction list and
// orders creations within a single run.
type CreationEvent struct {
	Name          string
	Address       Address
	SequenceIndex int
}

// Artifact is the parsed form of one deployment record. Immutable once
// parsed; a later run with the same (step, chain) key supersedes the record
// on disk rather than merging into it.
type Artifact struct {
	StepID         string
	ChainID        uint64
	Mode           Mode
	CreationEvents []CreationEvent
	CapturedAt     time.Time
}
