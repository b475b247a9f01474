package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"order_desk/internal/apperr"
	"order_desk/internal/model"
	"order_desk/internal/sequence"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IDAllocator 客户号分配。
type IDAllocator interface {
	Next(ctx context.Context, name string, start int64) (int64, error)
}

type Service struct {
	db    *gorm.DB
	alloc IDAllocator
}

func NewService(db *gorm.DB, alloc IDAllocator) *Service {
	return &Service{db: db, alloc: alloc}
}

// CreateInput 管理员直接录入客户。
type CreateInput struct {
	FullName       string          `json:"full_name" binding:"required"`
	WhatsAppNo     string          `json:"whatsapp_no" binding:"required"`
	ContactNo      string          `json:"contact_no"`
	BillingAddress string          `json:"billing_address"`
	CreditAllowed  bool            `json:"credit_allowed"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
}

// UpdateInput 仅更新非 nil 字段。
type UpdateInput struct {
	FullName       *string          `json:"full_name"`
	ContactNo      *string          `json:"contact_no"`
	BillingAddress *string          `json:"billing_address"`
	Status         *string          `json:"status"`
	CreditAllowed  *bool            `json:"credit_allowed"`
	CreditLimit    *decimal.Decimal `json:"credit_limit"`
}

// ListFilter 列表查询条件，Query 对姓名/WhatsApp 做前缀匹配。
type ListFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}

// FindByWhatsApp 按 WhatsApp 号精确查找，只取一条。
func (s *Service) FindByWhatsApp(ctx context.Context, whatsappNo string) (*model.Customer, error) {
	var c model.Customer
	err := s.db.WithContext(ctx).
		Where("whatsapp_no = ?", strings.TrimSpace(whatsappNo)).
		Order("created_at ASC").
		Limit(1).
		Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		return nil, apperr.NotFoundf("customer with whatsapp %s", whatsappNo)
	}
	return &c, nil
}

// Resolve 按 WhatsApp 号复用已有客户；不存在则分配客户号并新建。
// 已有客户原样返回，不用快照覆盖其字段。
// 先查后建没有唯一约束兜底，并发转正同一新号码可能建出两条客户。
func (s *Service) Resolve(ctx context.Context, snap model.CustomerSnapshot, actor string) (*model.Customer, bool, error) {
	existing, err := s.FindByWhatsApp(ctx, snap.WhatsAppNo)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup customer: %w", err)
	}

	c, err := s.create(ctx, &model.Customer{
		FullName:       strings.TrimSpace(snap.FullName),
		WhatsAppNo:     strings.TrimSpace(snap.WhatsAppNo),
		ContactNo:      strings.TrimSpace(snap.ContactNo),
		BillingAddress: strings.TrimSpace(snap.Address),
		CreatedBy:      actor,
	})
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// Create 管理员直接新建客户，WhatsApp 号已存在时拒绝。
func (s *Service) Create(ctx context.Context, in CreateInput, actor string) (*model.Customer, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.WhatsAppNo = strings.TrimSpace(in.WhatsAppNo)
	if in.FullName == "" {
		return nil, apperr.Invalid("full_name", "is required")
	}
	if in.WhatsAppNo == "" {
		return nil, apperr.Invalid("whatsapp_no", "is required")
	}
	if in.CreditLimit.IsNegative() {
		return nil, apperr.Invalid("credit_limit", "must not be negative")
	}
	if _, err := s.FindByWhatsApp(ctx, in.WhatsAppNo); err == nil {
		return nil, apperr.Invalid("whatsapp_no", "customer already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	return s.create(ctx, &model.Customer{
		FullName:       in.FullName,
		WhatsAppNo:     in.WhatsAppNo,
		ContactNo:      strings.TrimSpace(in.ContactNo),
		BillingAddress: strings.TrimSpace(in.BillingAddress),
		CreditAllowed:  in.CreditAllowed,
		CreditLimit:    in.CreditLimit,
		CreatedBy:      actor,
	})
}

func (s *Service) create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	displayID, err := s.alloc.Next(ctx, sequence.CustomerCounter, sequence.CustomerStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrCustomerCreate, err)
	}
	c.CustomCustomerID = displayID
	c.Status = model.CustomerActive
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("%w: save customer: %w", apperr.ErrCustomerCreate, err)
	}
	return c, nil
}

// Get 按存储主键取客户。
func (s *Service) Get(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("customer %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List 按创建时间倒序列出客户。
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.Customer, error) {
	q := s.db.WithContext(ctx).Model(&model.Customer{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if qs := strings.TrimSpace(f.Query); qs != "" {
		q = q.Where("full_name LIKE ? OR whatsapp_no LIKE ?", qs+"%", qs+"%")
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	var list []model.Customer
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// Update 修改客户资料，WhatsApp 号作为去重键不允许修改。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Customer, error) {
	updates := map[string]any{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, apperr.Invalid("full_name", "must not be empty")
		}
		updates["full_name"] = name
	}
	if in.ContactNo != nil {
		updates["contact_no"] = strings.TrimSpace(*in.ContactNo)
	}
	if in.BillingAddress != nil {
		updates["billing_address"] = strings.TrimSpace(*in.BillingAddress)
	}
	if in.Status != nil {
		if *in.Status != model.CustomerActive && *in.Status != model.CustomerInactive {
			return nil, apperr.Invalid("status", "must be active or inactive")
		}
		updates["status"] = *in.Status
	}
	if in.CreditAllowed != nil {
		updates["credit_allowed"] = *in.CreditAllowed
	}
	if in.CreditLimit != nil {
		if in.CreditLimit.IsNegative() {
			return nil, apperr.Invalid("credit_limit", "must not be negative")
		}
		updates["credit_limit"] = *in.CreditLimit
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return c, nil
	}
	if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
