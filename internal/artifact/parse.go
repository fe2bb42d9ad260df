package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// txTypeCreate is the transaction type tag that marks a contract creation.
// Records also contain CALL and CREATE2 entries; only creations contribute
// creation events (CREATE2 is still a creation).
const (
	txTypeCreate  = "CREATE"
	txTypeCreate2 = "CREATE2"
)

// rawRecord mirrors the on-disk record layout. Pointer fields distinguish
// "absent" from "zero value" so missing required fields are reported as
// schema errors instead of silently defaulting.
type rawRecord struct {
	Transactions *[]rawTransaction `json:"transactions"`
	Chain        *json.Number      `json:"chain"`
	Timestamp    *json.Number      `json:"timestamp"`
}

type rawTransaction struct {
	TransactionType *string `json:"transactionType"`
	ContractName    string  `json:"contractName"`
	ContractAddress Address `json:"contractAddress"`
}

// Parse reads and validates the deployment record at path, returning it as
// an Artifact tagged with the given step and provenance mode.
//
// Structural validation is strict: a missing transactions list, a missing or
// unparsable chain ID, or a creation entry without a name or address all
// fail with SCHEMA_ERROR. Non-creation transactions are skipped; their
// positions still count toward sequence indices so that creation ordering
// matches the record's transaction ordering.
func Parse(path, stepID string, mode Mode) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, NewSchemaError(path, "cannot read record", err)
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var raw rawRecord
	if err := dec.Decode(&raw); err != nil {
		return Artifact{}, NewSchemaError(path, "record is not valid JSON", err)
	}

	if raw.Chain == nil {
		return Artifact{}, NewSchemaError(path, "record missing chain field", nil)
	}
	chainID, err := parseUint(*raw.Chain)
	if err != nil {
		return Artifact{}, NewSchemaError(path, fmt.Sprintf("unparsable chain field %q", raw.Chain.String()), err)
	}

	if raw.Transactions == nil {
		return Artifact{}, NewSchemaError(path, "record missing transactions field", nil)
	}

	var capturedAt time.Time
	if raw.Timestamp != nil {
		ts, err := parseUint(*raw.Timestamp)
		if err != nil {
			return Artifact{}, NewSchemaError(path, fmt.Sprintf("unparsable timestamp field %q", raw.Timestamp.String()), err)
		}
		capturedAt = time.Unix(int64(ts), 0).UTC()
	}

	a := Artifact{
		StepID:     stepID,
		ChainID:    chainID,
		Mode:       mode,
		CapturedAt: capturedAt,
	}

	for i, tx := range *raw.Transactions {
		if tx.TransactionType == nil {
			return Artifact{}, NewSchemaError(path, fmt.Sprintf("transaction %d missing transactionType", i), nil)
		}
		if *tx.TransactionType != txTypeCreate && *tx.TransactionType != txTypeCreate2 {
			continue
		}
		if tx.ContractName == "" {
			return Artifact{}, NewSchemaError(path, fmt.Sprintf("creation at index %d missing contractName", i), nil)
		}
		if tx.ContractAddress == "" {
			return Artifact{}, NewSchemaError(path, fmt.Sprintf("creation at index %d missing contractAddress", i), nil)
		}
		a.CreationEvents = append(a.CreationEvents, CreationEvent{
			Name:          tx.ContractName,
			Address:       tx.ContractAddress,
			SequenceIndex: i,
		})
	}

	return a, nil
}

// parseUint parses a JSON number as an unsigned integer. Records written by
// some tool versions carry numeric fields as decimal strings; json.Number
// covers both spellings.
func parseUint(n json.Number) (uint64, error) {
	v, err := n.Int64()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return uint64(v), nil
}
