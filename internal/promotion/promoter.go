// Package promotion 把业务员提交的 pending 订单转为正式订单。
//
// 流程：取 pending → 校验客户身份字段 → 按 WhatsApp 复用或新建客户 →
// 分配订单号 → 单事务内「建订单 + 删 pending + 写 outbox」。
// 事务要么全部生效，要么全部回滚；pending 一旦被删，重复调用只会得到 NotFound。
package promotion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"order_desk/internal/apperr"
	"order_desk/internal/model"
	"order_desk/internal/sequence"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CustomerResolver 按快照复用或新建客户。
type CustomerResolver interface {
	Resolve(ctx context.Context, snap model.CustomerSnapshot, actor string) (*model.Customer, bool, error)
}

// IDAllocator 分配带前缀的展示编号。
type IDAllocator interface {
	NextDisplay(ctx context.Context, name string, start int64, prefix string) (string, error)
}

// StateStore 记录 pending id → 订单号，用于重复转正时给出更明确的提示。可为 nil。
type StateStore interface {
	PutPromoted(ctx context.Context, pendingID, orderID string) error
	GetPromoted(ctx context.Context, pendingID string) (string, bool, error)
}

var errPendingGone = errors.New("pending order no longer exists")

// Result 转正结果。
type Result struct {
	Order           *model.Order    `json:"order"`
	Customer        *model.Customer `json:"customer"`
	CustomerCreated bool            `json:"customer_created"`
}

type Promoter struct {
	db        *gorm.DB
	customers CustomerResolver
	alloc     IDAllocator
	state     StateStore
	now       func() time.Time
}

func NewPromoter(db *gorm.DB, customers CustomerResolver, alloc IDAllocator, state StateStore) *Promoter {
	return &Promoter{
		db:        db,
		customers: customers,
		alloc:     alloc,
		state:     state,
		now:       time.Now,
	}
}

// Promote 执行一次转正。actor 为发起操作的管理员标识，写入 created_by。
func (p *Promoter) Promote(ctx context.Context, pendingID, actor string) (*Result, error) {
	// 1. 取 pending
	pending, err := p.loadPending(ctx, pendingID)
	if err != nil {
		return nil, err
	}

	// 2. 校验身份字段，失败时不做任何写入
	snap := pending.Customer.Data()
	if strings.TrimSpace(snap.FullName) == "" {
		return nil, apperr.Invalid("customer.full_name", "is required")
	}
	if strings.TrimSpace(snap.WhatsAppNo) == "" {
		return nil, apperr.Invalid("customer.whatsapp_no", "is required")
	}

	// 3. 复用或新建客户
	customer, created, err := p.customers.Resolve(ctx, snap, actor)
	if err != nil {
		return nil, fmt.Errorf("resolve customer for pending order %s: %w", pendingID, err)
	}

	// 4. 订单号
	displayID, err := p.alloc.NextDisplay(ctx, sequence.OrderCounter, sequence.OrderStart, model.OrderPrefix)
	if err != nil {
		return nil, fmt.Errorf("allocate order id for pending order %s: %w", pendingID, err)
	}

	// 5. 构造正式订单，明细与金额原样拷贝
	order := buildOrder(pending, customer, displayID, actor, p.now())

	// 6. 原子提交
	if err := p.commit(ctx, pending.ID, order); err != nil {
		return nil, err
	}

	if p.state != nil {
		if err := p.state.PutPromoted(ctx, pending.ID, order.OrderID); err != nil {
			log.Printf("promotion state put pending=%s: %v", pending.ID, err)
		}
	}
	log.Printf("promoted pending=%s order=%s customer=%d created=%v", pending.ID, order.OrderID, customer.CustomCustomerID, created)

	return &Result{Order: order, Customer: customer, CustomerCreated: created}, nil
}

func (p *Promoter) loadPending(ctx context.Context, pendingID string) (*model.PendingOrder, error) {
	if strings.TrimSpace(pendingID) == "" {
		return nil, apperr.Invalid("pending_id", "is required")
	}
	var pending model.PendingOrder
	err := p.db.WithContext(ctx).Where("id = ?", pendingID).Take(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if p.state != nil {
			if orderID, ok, serr := p.state.GetPromoted(ctx, pendingID); serr == nil && ok {
				return nil, apperr.NotFoundf("pending order %s already promoted as %s", pendingID, orderID)
			} else if serr != nil {
				log.Printf("promotion state get pending=%s: %v", pendingID, serr)
			}
		}
		return nil, apperr.NotFoundf("pending order %s already processed or missing", pendingID)
	}
	if err != nil {
		return nil, fmt.Errorf("load pending order %s: %w", pendingID, err)
	}
	return &pending, nil
}

func buildOrder(pending *model.PendingOrder, customer *model.Customer, displayID, actor string, now time.Time) *model.Order {
	order := &model.Order{
		OrderID:         displayID,
		CustomerID:      customer.ID,
		Customer:        datatypes.NewJSONType(customer.Snapshot()),
		Items:           append(datatypes.JSONSlice[model.LineItem](nil), pending.Items...),
		Subtotal:        pending.Subtotal,
		Discount:        pending.Discount,
		TotalAmount:     pending.FinalAmount,
		PaymentStatus:   model.PaymentPending,
		Source:          model.SourceAgent,
		SourcePendingID: pending.ID,
		AgentID:         pending.AgentID,
		CreatedBy:       actor,
		DeliveryDate:    pending.DeliveryDate,
		Urgent:          pending.Urgent,
		Remarks:         pending.Remarks,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.AppendStatus(model.StatusOrderReceived, actor, now)
	return order
}

func (p *Promoter) commit(ctx context.Context, pendingID string, order *model.Order) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return &apperr.CommitError{Op: "create order " + order.OrderID, Err: err}
		}

		res := tx.Where("id = ?", pendingID).Delete(&model.PendingOrder{})
		if res.Error != nil {
			return &apperr.CommitError{Op: "delete pending order " + pendingID, Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &apperr.CommitError{Op: "delete pending order " + pendingID, Err: errPendingGone}
		}

		event, err := model.NewOrderEvent(model.EventOrderCreated, order, model.OrderCreatedPayload{
			CustomerID:  order.CustomerID,
			Items:       order.Items,
			TotalAmount: order.TotalAmount,
			Source:      order.Source,
		})
		if err != nil {
			return &apperr.CommitError{Op: "build order event", Err: err}
		}
		if err := tx.Create(event).Error; err != nil {
			return &apperr.CommitError{Op: "write order event", Err: err}
		}
		return nil
	})
	if err != nil && !errors.Is(err, apperr.ErrCommit) {
		return &apperr.CommitError{Op: "commit transaction", Err: err}
	}
	return err
}
