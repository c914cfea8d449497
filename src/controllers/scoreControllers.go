package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BioMart/BioMart-Backend/src/services"
	"github.com/gin-gonic/gin"
)

type ScoreController struct {
	service *services.ScoreService
}

func NewScoreController(service *services.ScoreService) *ScoreController {
	return &ScoreController{service: service}
}

// filterFromQuery builds a ScoreFilter from the request query parameters:
// from/to (YYYY-MM-DD), serverName, modality, channel, reId, rqType,
// limit/offset.
func filterFromQuery(c *gin.Context) (services.ScoreFilter, error) {
	var filter services.ScoreFilter

	if from := c.Query("from"); from != "" {
		d, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
		}
		filter.From = &d
	}
	if to := c.Query("to"); to != "" {
		d, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
		}
		filter.To = &d
	}

	for query, target := range map[string]**string{
		"serverName": &filter.ServerName,
		"modality":   &filter.Modality,
		"channel":    &filter.Channel,
		"reId":       &filter.ReId,
		"rqType":     &filter.RqType,
	} {
		if v := c.Query(query); v != "" {
			value := v
			*target = &value
		}
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("invalid limit parameter")
		}
		filter.Limit = limit
	} else {
		// keep unpaged dashboard queries from dragging the whole mart over
		filter.Limit = 1000
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("invalid offset parameter")
		}
		filter.Offset = offset
	}

	return filter, nil
}

func (sc *ScoreController) GetScores(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	scores, err := sc.service.GetScores(filter)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, scores)
}

func (sc *ScoreController) GetScoreByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid ID format"})
		return
	}

	score, err := sc.service.GetScoreByID(id)
	if err != nil {
		if services.IsNotFound(err) {
			c.JSON(404, gin.H{"error": "Score not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, score)
}

func (sc *ScoreController) GetScoreSummary(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	summary, err := sc.service.GetScoreSummary(filter)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, summary)
}

// ExportScoreSummary streams the (modality, channel) summary as an .xlsx
// attachment.
func (sc *ScoreController) ExportScoreSummary(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	data, err := sc.service.ExportSummaryExcel(filter)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("scores_summary_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
