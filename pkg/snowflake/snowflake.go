package snowflake

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Node 分布式ID生成节点
type Node struct {
	node *snowflake.Node
}

// NewNode 创建ID生成节点，machineID取值范围 0-1023
func NewNode(machineID int64) (*Node, error) {
	node, err := snowflake.NewNode(machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Node{node: node}, nil
}

// Generate 生成全局唯一ID
func (n *Node) Generate() int64 {
	return n.node.Generate().Int64()
}
