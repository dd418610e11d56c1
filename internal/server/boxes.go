package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
)

func (s *Server) SearchBoxes(c *gin.Context) {
	req := boxdomain.SearchRequest{
		WarehouseID: strings.TrimSpace(c.Query("warehouse_id")),
	}
	if raw := strings.TrimSpace(c.Query("box_type")); raw != "" {
		boxType := boxdomain.BoxType(raw)
		req.BoxType = &boxType
	}
	if features := strings.TrimSpace(c.Query("features")); features != "" {
		req.Features = strings.Split(features, ",")
	}

	var err error
	if req.MinSize, err = parseFloatParam(c, "min_size"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.MaxSize, err = parseFloatParam(c, "max_size"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.MaxPrice, err = parseFloatParam(c, "max_price"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.StartDate, err = parseTimeParam(c, "start_date"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.EndDate, err = parseTimeParam(c, "end_date"); err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.boxSvc.Search(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetBox(c *gin.Context) {
	b, err := s.boxSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": b})
}

func (s *Server) UpsertBox(c *gin.Context) {
	var req boxdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	admin := adminID(c)
	if admin == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	b, err := s.boxSvc.Upsert(c.Request.Context(), admin, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": b})
}

func (s *Server) GetUsageHistory(c *gin.Context) {
	entries, err := s.usageSvc.History(c.Request.Context(), c.Param("id"), clientID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
