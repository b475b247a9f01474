package router

import (
	"order_desk/internal/catalog"
	"order_desk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func listProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListProducts(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, list)
	}
}

func createProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.ProductInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		p, err := svc.CreateProduct(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, p)
	}
}

func getProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, p)
	}
}

func listSuppliers(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListSuppliers(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, list)
	}
}

func getSupplier(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sup, err := svc.GetSupplier(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, sup)
	}
}

func createSupplier(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.SupplierInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s, err := svc.CreateSupplier(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, s)
	}
}

func listPurchaseOrders(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListPurchaseOrders(c.Request.Context(), c.Query("supplier_id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, list)
	}
}

// getPurchaseOrder :id 可以是存储主键或 PO- 编号。
func getPurchaseOrder(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		po, err := svc.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, po)
	}
}

func createPurchaseOrder(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.PurchaseOrderInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		po, err := svc.CreatePurchaseOrder(c.Request.Context(), req, middleware.Actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, po)
	}
}
