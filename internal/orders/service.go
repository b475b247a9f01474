package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order_desk/internal/apperr"
	"order_desk/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// ListFilter 订单列表条件。
type ListFilter struct {
	CustomerID string
	Status     string
	Limit      int
	Offset     int
}

// PaymentInput 收款/调整录入。Amount 恒为正数，调整类按借记存为负数。
type PaymentInput struct {
	CustomerID string          `json:"-"`
	OrderID    string          `json:"order_id"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Kind       string          `json:"kind"`
	Note       string          `json:"note"`
	PaidAt     *time.Time      `json:"paid_at"`
}

// Get 按存储主键或展示编号（OM-xxxx）取订单。
func (s *Service) Get(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Where("id = ? OR order_id = ?", id, id).Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("order %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List 按创建时间倒序。
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.Order, error) {
	q := s.db.WithContext(ctx).Model(&model.Order{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	var list []model.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// UpdateStatus 变更订单状态并追加状态流水，同一事务写 outbox。状态未变化时直接返回。
func (s *Service) UpdateStatus(ctx context.Context, id, status, actor string) (*model.Order, error) {
	status = strings.TrimSpace(status)
	if !model.ValidOrderStatus(status) {
		return nil, apperr.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	var out model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? OR order_id = ?", id, id).
			Take(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order %s", id)
			}
			return err
		}
		if out.Status == status {
			return nil
		}

		from := out.Status
		now := s.now()
		out.AppendStatus(status, actor, now)
		out.UpdatedAt = now
		if err := tx.Model(&model.Order{}).Where("id = ?", out.ID).Updates(map[string]any{
			"status":         out.Status,
			"status_history": out.StatusHistory,
			"updated_at":     now,
		}).Error; err != nil {
			return err
		}

		event, err := model.NewOrderEvent(model.EventOrderStatusChanged, &out, model.StatusChangedPayload{
			From: from,
			To:   status,
			By:   actor,
		})
		if err != nil {
			return err
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordPayment 记录收款或调整。关联订单的收款同时累加订单已付金额并刷新付款状态。
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput, actor string) (*model.Payment, error) {
	if in.CustomerID == "" {
		return nil, apperr.Invalid("customer_id", "is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Invalid("amount", "must be > 0")
	}
	if in.Kind == "" {
		in.Kind = model.PaymentKindPayment
	}
	signed := in.Amount
	switch in.Kind {
	case model.PaymentKindPayment:
	case model.PaymentKindAdjustment:
		signed = in.Amount.Neg()
	default:
		return nil, apperr.Invalid("kind", "must be payment or adjustment")
	}

	p := &model.Payment{
		CustomerID: in.CustomerID,
		OrderID:    in.OrderID,
		AmountPaid: signed,
		Kind:       in.Kind,
		Note:       strings.TrimSpace(in.Note),
		CreatedBy:  actor,
	}
	if in.PaidAt != nil {
		p.PaidAt = *in.PaidAt
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Customer
		if err := tx.Where("id = ?", in.CustomerID).Take(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("customer %s", in.CustomerID)
			}
			return err
		}

		if in.OrderID != "" {
			var o model.Order
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND customer_id = ?", in.OrderID, in.CustomerID).
				Take(&o).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("order %s for customer %s", in.OrderID, in.CustomerID)
				}
				return err
			}
			if in.Kind == model.PaymentKindPayment {
				paid := o.AmountPaid.Add(in.Amount)
				if err := tx.Model(&model.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
					"amount_paid":    paid,
					"payment_status": model.DerivePaymentStatus(o.TotalAmount, paid),
					"updated_at":     s.now(),
				}).Error; err != nil {
					return err
				}
			}
		}

		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
