package router

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"order_desk/internal/apperr"
	"order_desk/internal/balance"
	"order_desk/internal/catalog"
	"order_desk/internal/config"
	"order_desk/internal/customers"
	"order_desk/internal/middleware"
	"order_desk/internal/orders"
	"order_desk/internal/pending"
	"order_desk/internal/promotion"
	"order_desk/internal/sequence"
	rediskey "order_desk/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps 路由依赖。Redis 可为 nil：此时不限流、不记录转正提示，watch 接口返回 503。
type Deps struct {
	DB     *gorm.DB
	Redis  *rd.Client
	Config config.AppConfig
}

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, d Deps) {
	cfg := d.Config

	alloc := sequence.NewAllocator(d.DB)
	customerSvc := customers.NewService(d.DB, alloc)
	pendingSvc := pending.NewService(d.DB)
	orderSvc := orders.NewService(d.DB)
	catalogSvc := catalog.NewService(d.DB, alloc)
	calc := balance.NewCalculator(balance.NewGormSource(d.DB), cfg.BalanceConcurrency)

	var state promotion.StateStore
	var events EventReader
	if d.Redis != nil {
		state = rediskey.NewPromotionState(d.Redis, cfg.PromotionStateTTL)
		events = rediskey.NewEventStream(d.Redis, cfg.OrderEventStream)
	}
	promoter := promotion.NewPromoter(d.DB, customerSvc, alloc, state)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// 业务员录单不要求管理令牌
	r.POST("/api/pending-orders", submitPending(pendingSvc))

	admin := r.Group("/api", middleware.AdminOnly(cfg.AdminToken))

	// Sequences
	admin.POST("/sequences/:name/next", nextSequence(alloc))
	admin.GET("/sequences/:name", peekSequence(alloc))

	// Pending orders
	admin.GET("/pending-orders", listPending(pendingSvc))
	admin.DELETE("/pending-orders/:id", rejectPending(pendingSvc))
	admin.POST("/pending-orders/:id/promote",
		middleware.RedisRateLimit(d.Redis, "promote", cfg.PromoteRateLimit, cfg.PromoteRateWindow),
		promotePending(promoter))

	// Customers
	admin.GET("/customers", listCustomers(customerSvc))
	admin.POST("/customers", createCustomer(customerSvc))
	admin.POST("/customers/balances", customerBalances(calc))
	admin.GET("/customers/:id", getCustomer(customerSvc))
	admin.PUT("/customers/:id", updateCustomer(customerSvc))
	admin.GET("/customers/:id/balance", customerBalance(customerSvc, calc))
	admin.POST("/customers/:id/payments", recordPayment(customerSvc, orderSvc))

	// Orders
	admin.GET("/orders", listOrders(orderSvc))
	admin.GET("/orders/watch", watchOrders(events))
	admin.GET("/orders/:id", getOrder(orderSvc))
	admin.PATCH("/orders/:id/status", updateOrderStatus(orderSvc))

	// Catalog
	admin.GET("/products", listProducts(catalogSvc))
	admin.POST("/products", createProduct(catalogSvc))
	admin.GET("/products/:id", getProduct(catalogSvc))
	admin.GET("/suppliers", listSuppliers(catalogSvc))
	admin.POST("/suppliers", createSupplier(catalogSvc))
	admin.GET("/suppliers/:id", getSupplier(catalogSvc))
	admin.GET("/purchase-orders", listPurchaseOrders(catalogSvc))
	admin.POST("/purchase-orders", createPurchaseOrder(catalogSvc))
	admin.GET("/purchase-orders/:id", getPurchaseOrder(catalogSvc))
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": data})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
}

// fail 按错误分类映射 HTTP 状态码。
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"code": status, "msg": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAllocation), errors.Is(err, apperr.ErrDownstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrCommit):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// page 解析 limit/offset，非法值按 0 处理（由下游取默认）。
func page(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
