// Package sequence generates human-facing document numbers. Numbers are
// snowflake-backed so they are unique and time-sortable without a database
// round trip; the prefix identifies the document kind at a glance.
package sequence

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Document number prefixes.
const (
	PrefixContract   = "CN"
	PrefixBatch      = "B"
	PrefixRemittance = "RM"
)

// Generator mints prefixed document numbers from a snowflake node.
type Generator struct {
	node *snowflake.Node
}

// New creates a generator for the given node id (0..1023). Every process
// writing numbers against the same backend needs a distinct node id.
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}
	return &Generator{node: node}, nil
}

// Next returns the next number for the given prefix, e.g. "CN-1879...".
func (g *Generator) Next(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, g.node.Generate().String())
}

// NextContract returns a contract number.
func (g *Generator) NextContract() string { return g.Next(PrefixContract) }

// NextBatch returns a batch number.
func (g *Generator) NextBatch() string { return g.Next(PrefixBatch) }

// NextRemittance returns a remittance number.
func (g *Generator) NextRemittance() string { return g.Next(PrefixRemittance) }
