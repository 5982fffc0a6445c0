package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prithwish249/qr-attendence/internal/qr"
	"github.com/prithwish249/qr-attendence/internal/services"
	"github.com/prithwish249/qr-attendence/internal/utils"
)

type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Create(c *gin.Context) {
	result, err := h.sessions.CreateToday(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, result)
}

func (h *SessionHandler) GetToday(c *gin.Context) {
	session, err := h.sessions.GetToday(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, session)
}

func (h *SessionHandler) DeleteToday(c *gin.Context) {
	message, err := h.sessions.DeleteToday(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, message)
}

// QRCode serves today's token as a downloadable PNG.
func (h *SessionHandler) QRCode(c *gin.Context) {
	session, err := h.sessions.GetToday(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	png, err := qr.EncodePNG(session.QRCodeToken)
	if err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not render QR code", nil))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attendance_qr_`+session.Date+`.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
