package router

import (
	"fmt"

	"order_desk/internal/balance"
	"order_desk/internal/customers"
	"order_desk/internal/middleware"
	"order_desk/internal/orders"

	"github.com/gin-gonic/gin"
)

// maxBalanceBatch 单次批量查询余额的客户数上限
const maxBalanceBatch = 500

func listCustomers(svc *customers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := page(c)
		list, err := svc.List(c.Request.Context(), customers.ListFilter{
			Status: c.Query("status"),
			Query:  c.Query("q"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, list)
	}
}

func createCustomer(svc *customers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req customers.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		cu, err := svc.Create(c.Request.Context(), req, middleware.Actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, cu)
	}
}

func getCustomer(svc *customers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cu, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, cu)
	}
}

func updateCustomer(svc *customers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req customers.UpdateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		cu, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, cu)
	}
}

// customerBalance 单个客户余额：正数欠款，负数预存。
func customerBalance(svc *customers.Service, calc *balance.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		cu, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		b, err := calc.Balance(c.Request.Context(), cu.ID)
		if err != nil {
			fail(c, err)
			return
		}
		amount, side := balance.Describe(b)
		ok(c, balance.Row{CustomerID: cu.ID, Balance: b, Amount: amount, Side: side})
	}
}

// customerBalances 批量余额，单行失败写在该行的 error 字段。
func customerBalances(calc *balance.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CustomerIDs []string `json:"customer_ids" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if len(req.CustomerIDs) > maxBalanceBatch {
			badRequest(c, fmt.Errorf("at most %d customer_ids per request", maxBalanceBatch))
			return
		}
		ok(c, calc.Balances(c.Request.Context(), req.CustomerIDs))
	}
}

// recordPayment 登记收款或调整（adjustment 为冲减）。
func recordPayment(customerSvc *customers.Service, orderSvc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orders.PaymentInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		cu, err := customerSvc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		req.CustomerID = cu.ID

		p, err := orderSvc.RecordPayment(c.Request.Context(), req, middleware.Actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, p)
	}
}
