package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/warebox/warebox/internal/pricing/domain"
)

func (s *Server) QuotePrice(c *gin.Context) {
	var req pricingdomain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	quote, err := s.pricingSvc.Quote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quote})
}
