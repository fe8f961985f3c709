package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/notify"
	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"go.uber.org/zap"
)

// BillingService 月度账单服务
type BillingService struct {
	invoiceRepo  *repository.InvoiceRepository
	contractRepo *repository.ContractRepository
	notifier     *notify.FeishuWebhook
	logger       *zap.Logger
}

// NewBillingService 创建账单服务
func NewBillingService(invoiceRepo *repository.InvoiceRepository, contractRepo *repository.ContractRepository, notifier *notify.FeishuWebhook, logger *zap.Logger) *BillingService {
	return &BillingService{
		invoiceRepo:  invoiceRepo,
		contractRepo: contractRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// GenerateResult 出账结果
type GenerateResult struct {
	Period    string `json:"period"`
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// ParsePeriod 解析 YYYY-MM 账期，返回当月一号（UTC）
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, fmt.Errorf("period must be formatted as YYYY-MM: %w", err)
	}
	return t.UTC(), nil
}

// GeneratePeriod 为指定账期的全部生效合同出账。
// 已出账的合同跳过（合同 × 账期唯一），单个失败不影响其余。
func (s *BillingService) GeneratePeriod(ctx context.Context, period time.Time) (*GenerateResult, error) {
	periodStart := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	contracts, err := s.contractRepo.ListActiveInPeriod(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	result := &GenerateResult{Period: periodStart.Format("2006-01")}
	for i := range contracts {
		contract := &contracts[i]

		exists, err := s.invoiceRepo.ExistsForPeriod(ctx, contract.ID, periodStart)
		if err != nil {
			result.Failed++
			s.logger.Error("check existing invoice failed",
				zap.String("contract_id", contract.ID), zap.Error(err))
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		if err := s.generateForContract(ctx, contract, periodStart); err != nil {
			result.Failed++
			s.logger.Error("generate invoice failed",
				zap.String("contract_id", contract.ID),
				zap.String("period", result.Period),
				zap.Error(err))
			continue
		}
		result.Generated++
	}

	s.logger.Info("billing period generated",
		zap.String("period", result.Period),
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	_ = s.notifier.SendCard(ctx, notify.NewBillingRunCard(
		result.Period, result.Generated, result.Skipped, result.Failed))
	return result, nil
}

// generateForContract 出单条账单：租金行 + 单元挂接的计费项目行
func (s *BillingService) generateForContract(ctx context.Context, contract *entity.Contract, period time.Time) error {
	items := []entity.InvoiceItem{
		{
			ID:          newID(),
			ItemType:    entity.InvoiceItemRent,
			Description: fmt.Sprintf("Rent %s", period.Format("2006-01")),
			Quantity:    1,
			UnitPrice:   contract.MonthlyRent,
			Amount:      contract.MonthlyRent,
		},
	}
	total := contract.MonthlyRent

	if contract.Unit != nil {
		for _, uu := range contract.Unit.Utilities {
			if uu.UtilityType == nil || uu.UtilityType.Status != "active" {
				continue
			}
			// 用量计费的项目出账时按基价占位，抄表后在明细上修正
			items = append(items, entity.InvoiceItem{
				ID:            newID(),
				ItemType:      entity.InvoiceItemUtility,
				UtilityTypeID: &uu.UtilityTypeID,
				Description:   uu.UtilityType.TypeName,
				Quantity:      1,
				UnitPrice:     uu.UtilityType.UnitPrice,
				Amount:        uu.UtilityType.UnitPrice,
			})
			total += uu.UtilityType.UnitPrice
		}
	}

	invoice := &entity.Invoice{
		ID:         newID(),
		InvoiceNo:  fmt.Sprintf("INV-%s-%s", period.Format("200601"), newID()[:6]),
		ContractID: contract.ID,
		Period:     period,
		Amount:     total,
		Status:     entity.InvoiceStatusPending,
		DueDate:    period.AddDate(0, 0, 14),
	}
	return s.invoiceRepo.CreateWithItems(ctx, invoice, items)
}

// Get 按 ID 获取账单
func (s *BillingService) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// List 账单列表
func (s *BillingService) List(ctx context.Context, status string, period *time.Time, page, pageSize int) ([]entity.Invoice, int64, error) {
	return s.invoiceRepo.List(ctx, status, period, page, pageSize)
}

// MarkPaid 登记收款
func (s *BillingService) MarkPaid(ctx context.Context, id string) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == entity.InvoiceStatusPaid {
		return invoice, nil
	}
	if invoice.Status == entity.InvoiceStatusVoided {
		return nil, fmt.Errorf("voided invoice cannot be paid")
	}

	now := time.Now()
	invoice.Status = entity.InvoiceStatusPaid
	invoice.PaidAt = &now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// MarkOverdue 把到期未付的账单批量置为逾期
func (s *BillingService) MarkOverdue(ctx context.Context) (int64, error) {
	return s.invoiceRepo.MarkOverdue(ctx, time.Now())
}
