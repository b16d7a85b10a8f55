package http

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/in"
	"github.com/peacemind-dev/psy-schedule-board/internal/utils"
)

type ScheduleBoardController struct {
	useCase in.ScheduleBoardUseCase
	cfg     *config.Config
}

func NewScheduleBoardController(useCase in.ScheduleBoardUseCase, cfg *config.Config) *ScheduleBoardController {
	return &ScheduleBoardController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *ScheduleBoardController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/board", c.getBoard)
		api.GET("/board/schedule", c.getSchedule)
		api.GET("/board/catalog", c.getCatalog)
		api.GET("/board/blocked", c.getBlocked)

		api.PUT("/doctors/:doctorId/name", c.renameDoctor)
		api.PUT("/doctors/:doctorId/slots/:slotIndex/field", c.setSlotField)
		api.PUT("/doctors/:doctorId/slots/:slotIndex/status", c.setSlotStatus)
		api.PUT("/doctors/:doctorId/slots/:slotIndex/start-date", c.setSlotStartDate)
		api.POST("/doctors/:doctorId/slots/:slotIndex/move", c.moveSlot)
		api.POST("/blocks/toggle", c.toggleBlock)
	}
}

type RenameDoctorRequest struct {
	Name string `json:"name"`
}

type SetSlotFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type SetSlotStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SetSlotStartDateRequest struct {
	StartDate string `json:"startDate"`
}

type MoveSlotRequest struct {
	Day  string `json:"day" binding:"required"`
	Time string `json:"time" binding:"required"`
	Room int    `json:"room" binding:"required"`
}

type ToggleBlockRequest struct {
	Day  string `json:"day" binding:"required"`
	Room int    `json:"room" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// Снимок доски плюс счетчик сеансов по каждому слоту.
// Счет идет от начала текущего дня, чтобы номер недели не менялся
// в течение дня
func (c *ScheduleBoardController) getBoard(ctx *gin.Context) {
	snapshot := c.useCase.Snapshot()

	sessions := make(map[string]domain.SessionProgress)
	// Даты начала парсятся как UTC, сравниваем в той же шкале
	asOf := utils.StartCurrentDay(time.Now().UTC())
	for _, doc := range snapshot.Doctors {
		for _, slot := range doc.Slots {
			sessions[slot.ID] = domain.SessionCount(slot, asOf)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"doctors":         snapshot.Doctors,
		"outpatientSlots": snapshot.OutpatientSlots,
		"version":         snapshot.Version,
		"sessions":        sessions,
	})
}

func (c *ScheduleBoardController) getSchedule(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"schedule": c.useCase.Schedule(),
	})
}

func (c *ScheduleBoardController) getCatalog(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"therapyTypes":   domain.TherapyTypes,
		"days":           domain.Days,
		"rooms":          domain.Rooms,
		"morningSlots":   domain.MorningSlots,
		"afternoonSlots": domain.AfternoonSlots,
		"allSlots":       domain.AllSlots,
	})
}

// Подсказка для выпадающих списков: занята ли ячейка под амбулаторный прием
func (c *ScheduleBoardController) getBlocked(ctx *gin.Context) {
	room, err := strconv.Atoi(ctx.DefaultQuery("room", "0"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room format"})
		return
	}

	blocked := c.useCase.IsBlocked(ctx.Query("day"), room, ctx.Query("time"))
	ctx.JSON(http.StatusOK, gin.H{"blocked": blocked})
}

func (c *ScheduleBoardController) renameDoctor(ctx *gin.Context) {
	var req RenameDoctorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Неизвестный врач дает тихий no-op, статус тот же
	c.useCase.RenameDoctor(ctx.Request.Context(), ctx.Param("doctorId"), req.Name)
	ctx.Status(http.StatusNoContent)
}

func (c *ScheduleBoardController) setSlotField(ctx *gin.Context) {
	slotIndex, err := strconv.Atoi(ctx.Param("slotIndex"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot index format"})
		return
	}

	var req SetSlotFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validSlotFieldValue(req.Field, req.Value) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field value"})
		return
	}

	c.useCase.SetSlotField(ctx.Request.Context(), ctx.Param("doctorId"), slotIndex, req.Field, req.Value)
	ctx.Status(http.StatusNoContent)
}

// Значения приходят из выпадающих списков, все вне каталога считается битым запросом.
// Пустая строка допустима везде, кроме типа: это снятие значения
func validSlotFieldValue(field, value string) bool {
	switch field {
	case "type":
		return domain.IsTherapyType(value)
	case "day":
		return value == "" || domain.IsDay(value)
	case "time":
		return value == "" || domain.IsTimeSlot(value)
	case "room":
		if value == "" {
			return true
		}
		room, err := strconv.Atoi(value)
		return err == nil && domain.IsRoom(room)
	default:
		return false
	}
}

func (c *ScheduleBoardController) setSlotStatus(ctx *gin.Context) {
	slotIndex, err := strconv.Atoi(ctx.Param("slotIndex"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot index format"})
		return
	}

	var req SetSlotStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !domain.IsSlotStatus(req.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot status"})
		return
	}

	c.useCase.SetSlotStatus(ctx.Request.Context(), ctx.Param("doctorId"), slotIndex, domain.SlotStatus(req.Status))
	ctx.Status(http.StatusNoContent)
}

func (c *ScheduleBoardController) setSlotStartDate(ctx *gin.Context) {
	slotIndex, err := strconv.Atoi(ctx.Param("slotIndex"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot index format"})
		return
	}

	var req SetSlotStartDateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.useCase.SetSlotStartDate(ctx.Request.Context(), ctx.Param("doctorId"), slotIndex, req.StartDate)
	ctx.Status(http.StatusNoContent)
}

func (c *ScheduleBoardController) moveSlot(ctx *gin.Context) {
	slotIndex, err := strconv.Atoi(ctx.Param("slotIndex"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot index format"})
		return
	}

	var req MoveSlotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Перенос всегда в конкретную ячейку сетки
	if !domain.IsDay(req.Day) || !domain.IsTimeSlot(req.Time) || !domain.IsRoom(req.Room) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grid cell"})
		return
	}

	c.useCase.MoveSlot(ctx.Request.Context(), ctx.Param("doctorId"), slotIndex, req.Day, req.Time, req.Room)
	ctx.Status(http.StatusNoContent)
}

func (c *ScheduleBoardController) toggleBlock(ctx *gin.Context) {
	var req ToggleBlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !domain.IsDay(req.Day) || !domain.IsTimeSlot(req.Time) || !domain.IsRoom(req.Room) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grid cell"})
		return
	}

	c.useCase.ToggleOutpatientBlock(ctx.Request.Context(), req.Day, req.Room, req.Time)
	ctx.Status(http.StatusNoContent)
}

func (c *ScheduleBoardController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(username), []byte(c.cfg.Auth.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(password), []byte(c.cfg.Auth.Password)) != 1 {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Next()
	}
}
