package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prithwish249/qr-attendence/internal/services"
	"github.com/prithwish249/qr-attendence/internal/utils"
)

type AttendanceHandler struct {
	attendance *services.AttendanceService
}

func NewAttendanceHandler(attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Submit records a scan. The legacy contract carried username and token as
// query parameters, so that shape is kept.
func (h *AttendanceHandler) Submit(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	token := strings.TrimSpace(c.Query("token"))
	if username == "" || token == "" {
		utils.RespondValidationError(c, "username and token are required")
		return
	}

	result, err := h.attendance.Submit(c.Request.Context(), username, token)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, result)
}

func (h *AttendanceHandler) Today(c *gin.Context) {
	records, err := h.attendance.TodayReport(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, records)
}

func (h *AttendanceHandler) ByUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondValidationError(c, "id must be an integer")
		return
	}

	logs, err := h.attendance.HistoryByUser(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// History rows expose only date and time.
	type entry struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	out := make([]entry, 0, len(logs))
	for _, log := range logs {
		out = append(out, entry{Date: log.Date, Time: log.Time})
	}
	utils.RespondOK(c, out)
}
