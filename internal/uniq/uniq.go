// Package uniq issues identifiers that are unique for the life of the process.
package uniq

import (
	"strconv"
	"sync/atomic"
)

var counter uint64

// Name returns prefix + "_" + a process-wide sequence number. Safe for
// concurrent use; no two calls ever return the same string for one prefix.
func Name(prefix string) string {
	n := atomic.AddUint64(&counter, 1) - 1
	return prefix + "_" + strconv.FormatUint(n, 10)
}
