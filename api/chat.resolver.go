package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (m *ApiHandler) chat(c *gin.Context) {
	if m.GptRepository == nil {
		returnErrorJsonCode(fmt.Errorf("chat is not configured: missing gpt api key"), c, 503)
		return
	}

	snapshot := m.getSnapshot()
	if snapshot == nil {
		returnErrorJsonCode(fmt.Errorf("no portfolio loaded"), c, 404)
		return
	}

	var requestBody chatRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(fmt.Errorf("failed to read request body: %w", err), c)
		return
	}
	if requestBody.Question == "" {
		returnErrorJsonCode(fmt.Errorf("question is required"), c, 400)
		return
	}

	answer, err := m.GptRepository.AskPortfolioQuestion(c.Request.Context(), snapshot.Summary, requestBody.Question)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, chatResponse{Answer: answer})
}
