package utils

import (
	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"
)

// PoolSize bounds receivers plus background loops
const PoolSize = 10000

// Pool runs per-connection receivers and background loops
var Pool *ants.Pool

func init() { //nolint
	NewPool(PoolSize)
}

// NewPool replaces the global pool with a new one of the given size.
// Submit fails with ants.ErrPoolOverload once every worker is busy.
func NewPool(n int) {
	p, err := ants.NewPool(n, ants.WithNonblocking(true))
	if err != nil {
		log.Fatalf("[pool] create pool failed %v", err)
	}
	Pool = p
}
