package entity

import "time"

// 账单状态
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusVoided  = "voided"
)

// Invoice 月度账单
// Period 取账期当月一号（UTC）
type Invoice struct {
	ID         string     `json:"id" gorm:"primaryKey;size:32"`
	InvoiceNo  string     `json:"invoice_no" gorm:"size:32;not null;uniqueIndex"`
	ContractID string     `json:"contract_id" gorm:"size:32;not null;index:idx_invoices_contract_period,unique"`
	Period     time.Time  `json:"period" gorm:"not null;index:idx_invoices_contract_period,unique"`
	Amount     float64    `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status     string     `json:"status" gorm:"size:16;not null;default:pending"`
	DueDate    time.Time  `json:"due_date" gorm:"not null"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Contract *Contract     `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
	Items    []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem 账单明细行（租金 + 各计费项目）
type InvoiceItem struct {
	ID            string  `json:"id" gorm:"primaryKey;size:32"`
	InvoiceID     string  `json:"invoice_id" gorm:"size:32;not null;index"`
	ItemType      string  `json:"item_type" gorm:"size:16;not null"`
	UtilityTypeID *string `json:"utility_type_id,omitempty" gorm:"size:32"`
	Description   string  `json:"description" gorm:"size:128"`
	Quantity      float64 `json:"quantity" gorm:"type:numeric(12,4);default:1"`
	UnitPrice     float64 `json:"unit_price" gorm:"type:numeric(12,4);not null"`
	Amount        float64 `json:"amount" gorm:"type:numeric(12,2);not null"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// 账单明细类型
const (
	InvoiceItemRent    = "rent"
	InvoiceItemUtility = "utility"
)
