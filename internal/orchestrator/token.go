package orchestrator

import "github.com/google/uuid"

// RunTokenGenerator generates unique run tokens for correlating step
// records, ledger rows, and log lines of one orchestrator run.
type RunTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 run tokens. Time ordering
// makes ledger listings sort naturally by creation time.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator always returns the same token. For tests that need
// deterministic run identity.
type FixedGenerator struct {
	Token string
}

// Generate returns the fixed token.
func (g FixedGenerator) Generate() string {
	return g.Token
}
