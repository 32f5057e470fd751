package wsconn

import (
	"sync/atomic"

	"github.com/gobwas/pool/pbytes"
)

// Pool allocates byte buffers for frame payloads.
type Pool interface {
	// Get returns buffer of exactly n bytes length or nil if there is no
	// memory for it.
	Get(n int) []byte

	// Put releases buffer returned by Get. The buffer must be passed with
	// its length as returned by Get.
	Put(p []byte)
}

// DefaultPool is the Pool used by connections when Config.Pool is nil. It
// has no memory limit.
var DefaultPool Pool = NewBudgetPool(0)

// BudgetPool is a Pool that reuses buffers with pbytes and limits the
// amount of bytes handed out at the same time.
type BudgetPool struct {
	limit int64
	inUse int64
}

// NewBudgetPool creates BudgetPool which never has more than limit bytes
// in use. Zero limit means no limit.
func NewBudgetPool(limit int64) *BudgetPool {
	return &BudgetPool{limit: limit}
}

// Get implements Pool.
func (b *BudgetPool) Get(n int) []byte {
	if v := atomic.AddInt64(&b.inUse, int64(n)); b.limit > 0 && v > b.limit {
		atomic.AddInt64(&b.inUse, -int64(n))
		return nil
	}
	return pbytes.GetLen(n)
}

// Put implements Pool.
func (b *BudgetPool) Put(p []byte) {
	if p == nil {
		return
	}
	atomic.AddInt64(&b.inUse, -int64(len(p)))
	pbytes.Put(p)
}

// InUse returns the number of bytes currently handed out.
func (b *BudgetPool) InUse() int64 {
	return atomic.LoadInt64(&b.inUse)
}
