// Package loader reads ledger files (YAML or JSON) into validated entries.
//
// A file is either a sequence of records or a mapping with a
// "transactions" key holding that sequence. Each record must carry
// bank_name, month, receiver, category and amount.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"housebudget/internal/core"
)

var ErrUnsupportedLayout = errors.New("ledger file must be a list of records or a mapping with a 'transactions' list")

// Result holds the outcome of loading a batch.
type Result struct {
	Accepted []core.Entry
	Rejected []core.Rejection
}

type wrapped struct {
	Transactions []core.Candidate `yaml:"transactions"`
}

// ParseCandidates decodes raw records without validating them. JSON input
// is accepted since it is valid YAML.
func ParseCandidates(data []byte) ([]core.Candidate, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		var out []core.Candidate
		if err := node.Content[0].Decode(&out); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return out, nil
	case yaml.MappingNode:
		var w wrapped
		if err := node.Content[0].Decode(&w); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return w.Transactions, nil
	default:
		return nil, ErrUnsupportedLayout
	}
}

// Load parses and validates every record in r. Invalid records are
// reported in Result.Rejected and do not stop the rest of the batch.
func Load(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read ledger: %w", err)
	}
	candidates, err := ParseCandidates(data)
	if err != nil {
		return Result{}, err
	}
	accepted, rejected := core.ValidateCandidates(candidates)
	return Result{Accepted: accepted, Rejected: rejected}, nil
}

// LoadFile is Load on the file at path.
func LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
