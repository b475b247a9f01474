// Package catalog 商品、供应商与采购单的基础读写。
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"order_desk/internal/apperr"
	"order_desk/internal/model"
	"order_desk/internal/sequence"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IDAllocator 采购单号分配。
type IDAllocator interface {
	NextDisplay(ctx context.Context, name string, start int64, prefix string) (string, error)
}

type Service struct {
	db    *gorm.DB
	alloc IDAllocator
}

func NewService(db *gorm.DB, alloc IDAllocator) *Service {
	return &Service{db: db, alloc: alloc}
}

type ProductInput struct {
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit"`
	Stock        int64           `json:"stock" binding:"min=0"`
	SaleRate     decimal.Decimal `json:"sale_rate"`
	PurchaseRate decimal.Decimal `json:"purchase_rate"`
}

type SupplierInput struct {
	Name      string `json:"name" binding:"required"`
	ContactNo string `json:"contact_no"`
	Address   string `json:"address"`
	GSTNo     string `json:"gst_no"`
}

type PurchaseOrderInput struct {
	SupplierID string               `json:"supplier_id" binding:"required"`
	Items      []model.PurchaseItem `json:"items" binding:"required,min=1"`
	OrderDate  *time.Time           `json:"order_date"`
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if in.Stock < 0 {
		return nil, apperr.Invalid("stock", "must not be negative")
	}
	unit := in.Unit
	if unit == "" {
		unit = model.ItemTypeQty
	}
	var dup int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).Where("name = ?", name).Count(&dup).Error; err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, apperr.Invalid("name", "product already exists")
	}
	p := &model.Product{
		Name:         name,
		Unit:         unit,
		Stock:        in.Stock,
		SaleRate:     in.SaleRate,
		PurchaseRate: in.PurchaseRate,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	var list []model.Product
	err := s.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("product %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) (*model.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	sup := &model.Supplier{
		Name:      name,
		ContactNo: strings.TrimSpace(in.ContactNo),
		Address:   strings.TrimSpace(in.Address),
		GSTNo:     strings.ToUpper(strings.TrimSpace(in.GSTNo)),
	}
	if err := s.db.WithContext(ctx).Create(sup).Error; err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	var sup model.Supplier
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&sup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("supplier %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	var list []model.Supplier
	err := s.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

// CreatePurchaseOrder 校验供应商后分配 PO 编号并保存，金额由明细汇总。
func (s *Service) CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput, actor string) (*model.PurchaseOrder, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Invalid("items", "at least one item is required")
	}
	var sup model.Supplier
	if err := s.db.WithContext(ctx).Where("id = ?", in.SupplierID).Take(&sup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("supplier %s", in.SupplierID)
		}
		return nil, err
	}

	total := decimal.Zero
	items := make([]model.PurchaseItem, 0, len(in.Items))
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductName) == "" || it.Quantity <= 0 {
			return nil, apperr.Invalid("items", "product_name and positive quantity are required")
		}
		if it.Amount.IsZero() {
			it.Amount = it.Rate.Mul(decimal.NewFromInt(it.Quantity))
		}
		total = total.Add(it.Amount)
		items = append(items, it)
	}

	number, err := s.alloc.NextDisplay(ctx, sequence.PurchaseOrderCounter, sequence.PurchaseOrderStart, model.PurchaseOrderPrefix)
	if err != nil {
		return nil, err
	}

	po := &model.PurchaseOrder{
		PONumber:    number,
		SupplierID:  sup.ID,
		Items:       items,
		TotalAmount: total,
		Status:      model.POStatusNew,
		OrderDate:   time.Now(),
		CreatedBy:   actor,
	}
	if in.OrderDate != nil {
		po.OrderDate = *in.OrderDate
	}
	if err := s.db.WithContext(ctx).Create(po).Error; err != nil {
		return nil, err
	}
	return po, nil
}

func (s *Service) ListPurchaseOrders(ctx context.Context, supplierID string) ([]model.PurchaseOrder, error) {
	q := s.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if supplierID != "" {
		q = q.Where("supplier_id = ?", supplierID)
	}
	var list []model.PurchaseOrder
	err := q.Order("order_date DESC").Find(&list).Error
	return list, err
}

// GetPurchaseOrder 按存储主键或 PO 编号取采购单。
func (s *Service) GetPurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := s.db.WithContext(ctx).Where("id = ? OR po_number = ?", id, id).Take(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("purchase order %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &po, nil
}
