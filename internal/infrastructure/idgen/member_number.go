package idgen

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MemberNumberPrefix is prepended to every allocated member number
const MemberNumberPrefix = "JR"

// SnowflakeGenerator implements domain.MemberNumberGenerator. Numbers are
// unique per node, so every replica needs its own node id.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeGenerator creates a generator for node (0-1023)
func NewSnowflakeGenerator(node int64) (domain.MemberNumberGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &SnowflakeGenerator{node: n}, nil
}

// Next implements domain.MemberNumberGenerator
func (g *SnowflakeGenerator) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return MemberNumberPrefix + g.node.Generate().Base36(), nil
}
