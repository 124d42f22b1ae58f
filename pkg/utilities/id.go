package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// SnowflakeNodeFromEnv returns the node id configured in SNOWFLAKE_NODE, or 1
// when the variable is missing or not an integer.
func SnowflakeNodeFromEnv() int64 {
	v := os.Getenv("SNOWFLAKE_NODE")
	if v == "" {
		return 1
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 1
	}
	return id
}

// InitSnowflake sets up the process-wide snowflake node. Only the first call
// has an effect; later calls return the result of the first one.
func InitSnowflake(nodeID int64) error {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return nodeErr
}

// NewSnowflakeInt64 returns the next id from the shared snowflake node,
// initialising it from the environment when InitSnowflake was never called.
// Ids from one node are unique and strictly increasing.
func NewSnowflakeInt64() (int64, error) {
	if err := InitSnowflake(SnowflakeNodeFromEnv()); err != nil {
		return 0, err
	}
	return node.Generate().Int64(), nil
}
