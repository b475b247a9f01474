// Package pending 管理业务员提交的待确认订单：录入、查看、驳回。
// 转正见 promotion 包。
package pending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order_desk/internal/apperr"
	"order_desk/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SubmitInput 业务员提交内容。
type SubmitInput struct {
	Customer     model.CustomerSnapshot `json:"customer"`
	Items        []model.LineItem       `json:"items" binding:"required,min=1"`
	Discount     decimal.Decimal        `json:"discount"`
	DeliveryDate *time.Time             `json:"delivery_date"`
	Urgent       bool                   `json:"urgent"`
	Remarks      string                 `json:"remarks"`
}

// Submit 保存一条 pending 订单。小计由明细金额汇总，喷绘明细补算面积。
// 客户字段不在这里强校验，转正时再校验。
func (s *Service) Submit(ctx context.Context, in SubmitInput, agentID, agentEmail string) (*model.PendingOrder, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Invalid("items", "at least one item is required")
	}
	subtotal := decimal.Zero
	items := make([]model.LineItem, 0, len(in.Items))
	for i, it := range in.Items {
		it.ProductName = strings.TrimSpace(it.ProductName)
		if it.ProductName == "" {
			return nil, apperr.Invalid(fmt.Sprintf("items[%d].product_name", i), "is required")
		}
		if it.Quantity <= 0 {
			return nil, apperr.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be > 0")
		}
		if it.Type == "" {
			it.Type = model.ItemTypeQty
		}
		if it.IsSqFt() {
			it.PrintSqFt = it.SqFt()
		}
		subtotal = subtotal.Add(it.Amount)
		items = append(items, it)
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(subtotal) {
		return nil, apperr.Invalid("discount", "must be between 0 and subtotal")
	}

	p := &model.PendingOrder{
		AgentID:      agentID,
		AgentEmail:   agentEmail,
		Customer:     datatypes.NewJSONType(in.Customer),
		Items:        items,
		Subtotal:     subtotal,
		Discount:     in.Discount,
		FinalAmount:  subtotal.Sub(in.Discount),
		DeliveryDate: in.DeliveryDate,
		Urgent:       in.Urgent,
		Remarks:      strings.TrimSpace(in.Remarks),
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// List 按提交时间先后列出，agentID 为空时列出全部。
func (s *Service) List(ctx context.Context, agentID string) ([]model.PendingOrder, error) {
	q := s.db.WithContext(ctx).Model(&model.PendingOrder{})
	if agentID != "" {
		q = q.Where("agent_id = ?", agentID)
	}
	var list []model.PendingOrder
	err := q.Order("submitted_at ASC").Find(&list).Error
	return list, err
}

// Get 取单条 pending。
func (s *Service) Get(ctx context.Context, id string) (*model.PendingOrder, error) {
	var p model.PendingOrder
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("pending order %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Reject 删除 pending。与进行中的转正竞争时，先提交者生效，后者得到 NotFound。
func (s *Service) Reject(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PendingOrder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("pending order %s already processed or missing", id)
	}
	return nil
}
