package router

import (
	"strconv"
	"strings"

	"order_desk/internal/model"
	"order_desk/internal/sequence"

	"github.com/gin-gonic/gin"
)

// 已知序列的起始值与展示前缀
var knownSequences = map[string]struct {
	start  int64
	prefix string
}{
	sequence.CustomerCounter:      {sequence.CustomerStart, ""},
	sequence.OrderCounter:         {sequence.OrderStart, model.OrderPrefix},
	sequence.PurchaseOrderCounter: {sequence.PurchaseOrderStart, model.PurchaseOrderPrefix},
}

// nextSequence 手工发一个编号（补录单据时使用）。未知序列默认从 101 开始。
func nextSequence(alloc *sequence.Allocator) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.Param("name"))
		var req struct {
			Start *int64 `json:"start" binding:"omitempty,min=1"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}

		start, prefix := sequence.DefaultStart, ""
		if k, ok := knownSequences[name]; ok {
			start, prefix = k.start, k.prefix
		}
		if req.Start != nil {
			start = *req.Start
		}

		n, err := alloc.Next(c.Request.Context(), name, start)
		if err != nil {
			fail(c, err)
			return
		}
		data := gin.H{"name": name, "value": n}
		if prefix != "" {
			data["display"] = prefix + strconv.FormatInt(n, 10)
		}
		ok(c, data)
	}
}

// peekSequence 查询最近发出的编号，从未发过为 0。
func peekSequence(alloc *sequence.Allocator) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.Param("name"))
		n, err := alloc.Peek(c.Request.Context(), name)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"name": name, "last_issued": n})
	}
}
