package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// FocusResult is the body of GET /api/focus.
type FocusResult struct {
	Date   string `json:"date"`
	Week   int    `json:"week"`
	Domain string `json:"domain"`
}

func (s *Server) healthHandler(c *gin.Context) {
	writeJSONResponse(c, http.StatusOK, models.Success(nil))
}

// chatHandler answers one tagged chat request.
func (s *Server) chatHandler(c *gin.Context) {
	req, err := models.DecodeChatRequest(c.Request.Body)
	if err != nil {
		slog.Warn("Server.chatHandler: invalid request", "error", err)
		writeJSONResponse(c, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	resp, err := s.conv.Turn(c.Request.Context(), req)
	if err != nil {
		writeError(c, "chatHandler", err)
		return
	}
	if resp.Kind == models.ChatResponseNoMatch {
		writeJSONResponse(c, http.StatusOK, models.NoMatch(resp))
		return
	}
	writeJSONResponse(c, http.StatusOK, models.Success(resp))
}

// selectHandler runs the selector on a raw snapshot, without deriving any field.
func (s *Server) selectHandler(c *gin.Context) {
	var snap models.ParticipantSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		slog.Warn("Server.selectHandler: failed to decode JSON", "error", err)
		writeJSONResponse(c, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if strings.TrimSpace(snap.Domain) == "" {
		writeError(c, "selectHandler", models.ErrMissingDomain)
		return
	}
	result := s.conv.Select(snap)
	if !result.Found {
		writeJSONResponse(c, http.StatusOK, models.NoMatch(result))
		return
	}
	writeJSONResponse(c, http.StatusOK, models.Success(result))
}

func (s *Server) nudgeHandler(c *gin.Context) {
	var req models.NudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Server.nudgeHandler: failed to decode JSON", "error", err)
		writeJSONResponse(c, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	resp, err := s.conv.Nudge(c.Request.Context(), req)
	if err != nil {
		writeError(c, "nudgeHandler", err)
		return
	}
	if resp.Kind == models.ChatResponseNoMatch {
		writeJSONResponse(c, http.StatusOK, models.NoMatch(resp))
		return
	}
	writeJSONResponse(c, http.StatusOK, models.SuccessWithMessage("Message sent successfully", resp))
}

func (s *Server) focusHandler(c *gin.Context) {
	date := c.DefaultQuery("date", s.conv.Today())
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		writeError(c, "focusHandler", models.ErrInvalidDate)
		return
	}
	_, week := t.ISOWeek()
	writeJSONResponse(c, http.StatusOK, models.Success(FocusResult{
		Date:   date,
		Week:   week,
		Domain: s.conv.WeeklyFocus(t),
	}))
}

func (s *Server) recordCheckInHandler(c *gin.Context) {
	var in models.CheckIn
	if err := c.ShouldBindJSON(&in); err != nil {
		slog.Warn("Server.recordCheckInHandler: failed to decode JSON", "error", err)
		writeJSONResponse(c, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	saved, err := s.conv.RecordCheckIn(c.Request.Context(), in)
	if err != nil {
		writeError(c, "recordCheckInHandler", err)
		return
	}
	slog.Info("Server.recordCheckInHandler: check-in recorded", "participantID", saved.ParticipantID, "date", saved.Date)
	writeJSONResponse(c, http.StatusCreated, models.Recorded(saved))
}

func (s *Server) checkInHistoryHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONResponse(c, http.StatusBadRequest, models.Error(fmt.Sprintf("invalid limit %q", raw)))
			return
		}
		limit = n
	}
	history, err := s.conv.Store().CheckInHistory(c.Request.Context(), c.Param("participant"), limit)
	if err != nil {
		writeError(c, "checkInHistoryHandler", err)
		return
	}
	if history == nil {
		history = []models.CheckIn{}
	}
	writeJSONResponse(c, http.StatusOK, models.Success(history))
}

func (s *Server) lastCheckInHandler(c *gin.Context) {
	last, err := s.conv.Store().LastCheckIn(c.Request.Context(), c.Param("participant"))
	if err != nil {
		writeError(c, "lastCheckInHandler", err)
		return
	}
	writeJSONResponse(c, http.StatusOK, models.Success(last))
}

func (s *Server) checkInForDateHandler(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeError(c, "checkInForDateHandler", models.ErrInvalidDate)
		return
	}
	checkIn, err := s.conv.Store().GetCheckIn(c.Request.Context(), c.Param("participant"), date)
	if err != nil {
		writeError(c, "checkInForDateHandler", err)
		return
	}
	writeJSONResponse(c, http.StatusOK, models.Success(checkIn))
}

func (s *Server) clearCheckInsHandler(c *gin.Context) {
	participant := c.Param("participant")
	if err := s.conv.Store().ClearCheckIns(c.Request.Context(), participant); err != nil {
		writeError(c, "clearCheckInsHandler", err)
		return
	}
	writeJSONResponse(c, http.StatusOK, models.SuccessWithMessage("Check-ins cleared", nil))
}
