package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
)

func (s *Server) ListWarehouses(c *gin.Context) {
	items, err := s.warehouseSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetWarehouse(c *gin.Context) {
	w, err := s.warehouseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": w})
}

func (s *Server) ListWarehouseBoxes(c *gin.Context) {
	items, err := s.boxSvc.ListWarehouseBoxes(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) UpsertWarehouse(c *gin.Context) {
	var req warehousedomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	admin := adminID(c)
	if strings.TrimSpace(admin) == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	w, err := s.warehouseSvc.Upsert(c.Request.Context(), admin, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": w})
}
