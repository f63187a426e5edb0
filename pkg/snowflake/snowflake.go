package snowflake

import (
	"errors"
	"time"

	sf "github.com/bwmarrin/snowflake"
)

var node *sf.Node

// Init must be called once at startup with this instance's machine id.
func Init(machineID int64) (err error) {
	st, err := time.Parse("2006-01-02", "2025-01-01")
	if err != nil {
		return err
	}
	sf.Epoch = st.UnixNano() / 1000000
	node, err = sf.NewNode(machineID)
	return
}

// GetID returns a new unique id.
func GetID() (uint64, error) {
	if node == nil {
		return 0, errors.New("snowflake not initialized; call Init")
	}
	return uint64(node.Generate().Int64()), nil
}
