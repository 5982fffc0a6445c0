package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prithwish249/qr-attendence/internal/export"
	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/services"
	"github.com/prithwish249/qr-attendence/internal/utils"
)

type ReportHandler struct {
	attendance *services.AttendanceService
}

func NewReportHandler(attendance *services.AttendanceService) *ReportHandler {
	return &ReportHandler{attendance: attendance}
}

// Export streams today's report as a CSV or XLSX attachment.
func (h *ReportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		utils.RespondValidationError(c, "format must be csv or xlsx")
		return
	}

	records, err := h.attendance.TodayReport(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case "csv":
		payload, err = export.CSV(records)
		contentType = "text/csv"
	case "xlsx":
		payload, err = export.XLSX(records)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not build export", nil))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(models.Today(), format)+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
