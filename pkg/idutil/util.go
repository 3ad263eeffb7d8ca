package idutil

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var (
	once sync.Once
	node *snowflake.Node
)

// Init sets the snowflake node of this process. Processes writing to the same
// database must use distinct node ids.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})

	return err
}

// NextSeq returns an id that strictly increases within the process. It is
// used both as a primary key and as an ordering column.
func NextSeq() int64 {
	once.Do(func() {
		node, _ = snowflake.NewNode(0)
	})

	return node.Generate().Int64()
}

// SeqTime is the creation time encoded in a sequence number.
func SeqTime(seq int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(seq).Time())
}

func NewProjectID() string {
	return uuid.NewString()
}
