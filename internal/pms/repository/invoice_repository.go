package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// CreateWithItems 同事务写入账单与明细
func (r *InvoiceRepository) CreateWithItems(ctx context.Context, invoice *entity.Invoice, items []entity.InvoiceItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		return tx.Create(&items).Error
	})
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("Contract.Unit").
		Preload("Contract.Tenant").
		Preload("Items").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &invoice, nil
}

// ExistsForPeriod 检查合同在指定账期是否已出账
func (r *InvoiceRepository) ExistsForPeriod(ctx context.Context, contractID string, period time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("contract_id = ? AND period = ? AND status <> ?", contractID, period, entity.InvoiceStatusVoided).
		Count(&count).Error
	return count > 0, err
}

func (r *InvoiceRepository) List(ctx context.Context, status string, period *time.Time, page, pageSize int) ([]entity.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Invoice{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if period != nil {
		query = query.Where("period = ?", *period)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []entity.Invoice
	err := query.
		Preload("Contract").
		Preload("Contract.Unit").
		Preload("Contract.Tenant").
		Order("invoice_no ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error
	return invoices, total, err
}

// ListByPeriod 返回某账期全部账单（报表用，不分页）
func (r *InvoiceRepository) ListByPeriod(ctx context.Context, period time.Time) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("Contract.Unit").
		Preload("Contract.Tenant").
		Preload("Items").
		Where("period = ?", period).
		Order("invoice_no ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// MarkOverdue 批量把逾期未付账单置为 overdue
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("status = ? AND due_date < ?", entity.InvoiceStatusPending, now).
		Update("status", entity.InvoiceStatusOverdue)
	return result.RowsAffected, result.Error
}
