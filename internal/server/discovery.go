package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) FindAlternatives(c *gin.Context) {
	start, err := parseTimeParam(c, "start_date")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	end, err := parseTimeParam(c, "end_date")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if start == nil || end == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.altFinder.FindAlternatives(c.Request.Context(), c.Param("id"), *start, *end)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetRecommendations(c *gin.Context) {
	result, err := s.recEngine.Recommend(c.Request.Context(), clientID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    result.Recommendations,
		"profile": result.Profile,
	})
}
