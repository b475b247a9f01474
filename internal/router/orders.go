package router

import (
	"order_desk/internal/middleware"
	"order_desk/internal/orders"

	"github.com/gin-gonic/gin"
)

func listOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := page(c)
		list, err := svc.List(c.Request.Context(), orders.ListFilter{
			CustomerID: c.Query("customer_id"),
			Status:     c.Query("status"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, list)
	}
}

// getOrder :id 可以是存储主键或 OM- 编号。
func getOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, o)
	}
}

func updateOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, middleware.Actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, o)
	}
}
