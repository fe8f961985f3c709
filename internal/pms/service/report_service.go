package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportService 报表导出服务（入住率 / 账期汇总）
type ReportService struct {
	occupancy   *OccupancyService
	invoiceRepo *repository.InvoiceRepository
}

// NewReportService 创建报表服务
func NewReportService(occupancy *OccupancyService, invoiceRepo *repository.InvoiceRepository) *ReportService {
	return &ReportService{occupancy: occupancy, invoiceRepo: invoiceRepo}
}

// OccupancyXLSX 导出入住率报表 Excel
func (s *ReportService) OccupancyXLSX(ctx context.Context) ([]byte, error) {
	report, err := s.occupancy.Report(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "occupancy"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Building", "Level", "Total Units", "Occupied", "Vacant", "Occupancy Rate", "Used Area (sqm)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, b := range report.Buildings {
		for _, lv := range b.Levels {
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s %s", b.BuildingCode, b.BuildingName))
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), lv.LevelName)
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), lv.TotalUnits)
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), lv.OccupiedUnits)
			_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), lv.VacantUnits)
			_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("%.1f%%", lv.OccupancyRate*100))
			row++
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s subtotal", b.BuildingCode))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.TotalUnits)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.OccupiedUnits)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.TotalUnits-b.OccupiedUnits)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("%.1f%%", b.OccupancyRate*100))
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), b.UsedArea)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OccupancyPDF 导出入住率报表 PDF
func (s *ReportService) OccupancyPDF(ctx context.Context) ([]byte, error) {
	report, err := s.occupancy.Report(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Occupancy Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	for _, b := range report.Buildings {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s %s - %d/%d occupied (%.1f%%), used area %.2f sqm",
			b.BuildingCode, b.BuildingName, b.OccupiedUnits, b.TotalUnits, b.OccupancyRate*100, b.UsedArea))
		pdf.Ln(7)

		pdf.CellFormat(60, 6, "Level", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Units", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Occupied", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Rate", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, lv := range b.Levels {
			pdf.CellFormat(60, 6, lv.LevelName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", lv.TotalUnits), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", lv.OccupiedUnits), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.1f%%", lv.OccupancyRate*100), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BillingXLSX 导出账期汇总 Excel
func (s *ReportService) BillingXLSX(ctx context.Context, period time.Time) ([]byte, error) {
	invoices, err := s.invoiceRepo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "billing"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Invoice No", "Unit", "Tenant", "Amount", "Status", "Due Date", "Paid At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	var total, paid float64
	for i, inv := range invoices {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inv.InvoiceNo)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), invoiceUnitNumber(&inv))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), invoiceTenantName(&inv))
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inv.Amount)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), inv.Status)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), inv.DueDate.Format("2006-01-02"))
		if inv.PaidAt != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), inv.PaidAt.Format("2006-01-02"))
		}
		total += inv.Amount
		if inv.Status == entity.InvoiceStatusPaid {
			paid += inv.Amount
		}
	}

	sumRow := len(invoices) + 3
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", sumRow), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", sumRow), total)
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", sumRow+1), "Collected")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", sumRow+1), paid)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BillingPDF 导出账期汇总 PDF
func (s *ReportService) BillingPDF(ctx context.Context, period time.Time) ([]byte, error) {
	invoices, err := s.invoiceRepo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Billing Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", period.Format("2006-01")))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Invoice No", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Unit", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Tenant", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	var total float64
	for i := range invoices {
		inv := &invoices[i]
		pdf.CellFormat(45, 6, inv.InvoiceNo, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, invoiceUnitNumber(inv), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, invoiceTenantName(inv), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", inv.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, inv.Status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		total += inv.Amount
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %.2f", total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func invoiceUnitNumber(inv *entity.Invoice) string {
	if inv.Contract != nil && inv.Contract.Unit != nil {
		return inv.Contract.Unit.UnitNumber
	}
	return ""
}

func invoiceTenantName(inv *entity.Invoice) string {
	if inv.Contract != nil && inv.Contract.Tenant != nil {
		return inv.Contract.Tenant.Name
	}
	return ""
}
