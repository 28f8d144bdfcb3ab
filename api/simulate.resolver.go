package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/mingdom/folio/internal/portfolio"
)

type simulateRequest struct {
	// SPYChanges are fractional index moves, e.g. -0.1 for -10%.
	// Empty means the default -30%..+30% grid.
	SPYChanges []float64 `json:"spyChanges"`
}

type simulateResponse struct {
	Points []portfolio.SimulationPoint `json:"points"`
}

func (m *ApiHandler) simulate(c *gin.Context) {
	snapshot := m.getSnapshot()
	if snapshot == nil {
		returnErrorJsonCode(fmt.Errorf("no portfolio loaded"), c, 404)
		return
	}

	// An empty body means the default grid.
	var requestBody simulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil && !errors.Is(err, io.EOF) {
		returnErrorJson(fmt.Errorf("failed to read request body: %w", err), c)
		return
	}

	for _, change := range requestBody.SPYChanges {
		if change <= -1 {
			returnErrorJsonCode(fmt.Errorf("spy change %v would take the index below zero", change), c, 400)
			return
		}
	}

	points := m.PortfolioHandler.Simulate(snapshot, requestBody.SPYChanges)

	c.JSON(200, simulateResponse{Points: points})
}
