package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报表导出处理器
type ReportHandler struct {
	reportSvc  *service.ReportService
	billingSvc *service.BillingService
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reportSvc *service.ReportService, billingSvc *service.BillingService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, billingSvc: billingSvc}
}

// Occupancy 导出入住率报表
// GET /reports/occupancy?format=xlsx|pdf
func (h *ReportHandler) Occupancy(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")

	var (
		data []byte
		err  error
	)
	switch format {
	case "xlsx":
		data, err = h.reportSvc.OccupancyXLSX(c.Request.Context())
	case "pdf":
		data, err = h.reportSvc.OccupancyPDF(c.Request.Context())
	default:
		BadRequest(c, "format must be xlsx or pdf")
		return
	}
	if err != nil {
		InternalError(c, "generate occupancy report failed")
		return
	}

	writeAttachment(c, fmt.Sprintf("occupancy-%s.%s", time.Now().Format("20060102"), format), format, data)
}

// Billing 导出账期汇总
// GET /reports/billing?period=YYYY-MM&format=xlsx|pdf
func (h *ReportHandler) Billing(c *gin.Context) {
	period, err := service.ParsePeriod(c.Query("period"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	format := c.DefaultQuery("format", "xlsx")

	var data []byte
	switch format {
	case "xlsx":
		data, err = h.reportSvc.BillingXLSX(c.Request.Context(), period)
	case "pdf":
		data, err = h.reportSvc.BillingPDF(c.Request.Context(), period)
	default:
		BadRequest(c, "format must be xlsx or pdf")
		return
	}
	if err != nil {
		InternalError(c, "generate billing report failed")
		return
	}

	writeAttachment(c, fmt.Sprintf("billing-%s.%s", period.Format("2006-01"), format), format, data)
}

func writeAttachment(c *gin.Context, filename, format string, data []byte) {
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
