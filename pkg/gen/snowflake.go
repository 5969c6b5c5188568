package gen

import (
	"resellops/pkg/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("gen",
	fx.Provide(NewNode),
)

// NewNode builds the process-wide snowflake node from the configured node ID.
func NewNode(cfg *config.Config) (*snowflake.Node, error) {
	nodeID := cfg.Snowflake.NodeID
	if nodeID == 0 {
		nodeID = 1
	}
	return snowflake.NewNode(nodeID)
}
