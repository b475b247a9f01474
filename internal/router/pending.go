package router

import (
	"strings"

	"order_desk/internal/middleware"
	"order_desk/internal/pending"
	"order_desk/internal/promotion"

	"github.com/gin-gonic/gin"
)

// X-Agent-Id / X-Agent-Email 由业务员端应用携带
const (
	agentIDHeader    = "X-Agent-Id"
	agentEmailHeader = "X-Agent-Email"
)

// submitPending 业务员提交待审核订单。
func submitPending(svc *pending.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pending.SubmitInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		agentID := strings.TrimSpace(c.GetHeader(agentIDHeader))
		agentEmail := strings.TrimSpace(c.GetHeader(agentEmailHeader))

		p, err := svc.Submit(c.Request.Context(), req, agentID, agentEmail)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, p)
	}
}

func listPending(svc *pending.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), c.Query("agent_id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, list)
	}
}

// rejectPending 驳回：直接删除，不生成订单。
func rejectPending(svc *pending.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := svc.Reject(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"id": id, "status": "rejected"})
	}
}

// promotePending 转正。同一 pending 只能成功一次，之后返回 404。
func promotePending(p *promotion.Promoter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := p.Promote(c.Request.Context(), c.Param("id"), middleware.Actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, res)
	}
}
