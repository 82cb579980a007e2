package idutil

import (
	"github.com/bwmarrin/snowflake"
)

// Generator produces time-ordered int64 ids. Ledger rows use them so that
// ordering by id is ordering by creation.
type Generator interface {
	Next() int64
}

type snowflakeGenerator struct {
	node *snowflake.Node
}

func NewSnowflakeGenerator(nodeID int64) (*snowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &snowflakeGenerator{node: node}, nil
}

func (g *snowflakeGenerator) Next() int64 {
	return g.node.Generate().Int64()
}

// TimeOf returns the unix milliseconds embedded in a snowflake id.
func TimeOf(id int64) int64 {
	return snowflake.ParseInt64(id).Time()
}
