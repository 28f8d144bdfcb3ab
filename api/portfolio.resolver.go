package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mingdom/folio/internal/domain"
)

type loadPortfolioResponse struct {
	Summary  domain.PortfolioSummary `json:"summary"`
	Groups   int                     `json:"groups"`
	Excluded int                     `json:"excluded"`
}

// loadPortfolio ingests a brokerage CSV export. The file arrives either
// as a multipart "file" field or as the raw request body.
func (m *ApiHandler) loadPortfolio(c *gin.Context) {
	var snapshotReader = c.Request.Body

	if file, err := c.FormFile("file"); err == nil {
		opened, err := file.Open()
		if err != nil {
			returnErrorJson(fmt.Errorf("failed to open uploaded file: %w", err), c)
			return
		}
		defer opened.Close()
		snapshotReader = opened
	}

	snapshot, err := m.PortfolioHandler.LoadFromCSV(c.Request.Context(), snapshotReader)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	m.setSnapshot(snapshot)

	c.JSON(200, loadPortfolioResponse{
		Summary:  snapshot.Summary,
		Groups:   len(snapshot.Groups),
		Excluded: len(snapshot.Summary.Excluded),
	})
}

func (m *ApiHandler) portfolioSummary(c *gin.Context) {
	snapshot := m.getSnapshot()
	if snapshot == nil {
		returnErrorJsonCode(fmt.Errorf("no portfolio loaded"), c, 404)
		return
	}

	c.JSON(200, snapshot.Summary)
}

func (m *ApiHandler) portfolioGroups(c *gin.Context) {
	snapshot := m.getSnapshot()
	if snapshot == nil {
		returnErrorJsonCode(fmt.Errorf("no portfolio loaded"), c, 404)
		return
	}

	c.JSON(200, gin.H{
		"loadedAt": snapshot.LoadedAt,
		"groups":   snapshot.Groups,
		"cashLike": snapshot.CashLike,
	})
}
