package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
)

type createReservationRequest struct {
	BoxID     string    `json:"box_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Notes     string    `json:"notes"`
}

func (s *Server) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	res, err := s.reservationSvc.Create(c.Request.Context(), reservationdomain.CreateRequest{
		BoxID:     strings.TrimSpace(req.BoxID),
		ClientID:  clientID(c),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (s *Server) ListReservations(c *gin.Context) {
	var status *reservationdomain.Status
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st := reservationdomain.Status(strings.ToUpper(raw))
		status = &st
	}
	items, err := s.reservationSvc.ListByClient(c.Request.Context(), clientID(c), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetReservation(c *gin.Context) {
	res, err := s.reservationSvc.Get(c.Request.Context(), c.Param("id"), clientID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) UpdateReservation(c *gin.Context) {
	var req reservationdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	res, err := s.reservationSvc.Update(c.Request.Context(), c.Param("id"), clientID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) ExtendReservation(c *gin.Context) {
	var req reservationdomain.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.reservationSvc.Extend(c.Request.Context(), c.Param("id"), clientID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) CancelReservation(c *gin.Context) {
	res, err := s.reservationSvc.Cancel(c.Request.Context(), c.Param("id"), clientID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

type accessBoxRequest struct {
	AccessCode string `json:"access_code"`
}

func (s *Server) AccessBox(c *gin.Context) {
	var req accessBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.reservationSvc.AccessBox(c.Request.Context(), c.Param("id"), clientID(c), strings.TrimSpace(req.AccessCode))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
