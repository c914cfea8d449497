package controllers

import (
	"strings"

	"github.com/BioMart/BioMart-Backend/src/dtos"
	"github.com/BioMart/BioMart-Backend/src/services"
	"github.com/gin-gonic/gin"
)

type IngestController struct {
	ingest    *services.IngestService
	state     *services.StateService
	collector *services.CollectService
}

func NewIngestController(ingest *services.IngestService, state *services.StateService, collector *services.CollectService) *IngestController {
	return &IngestController{ingest: ingest, state: state, collector: collector}
}

// RunIngest triggers one pipeline pass: parse pending logs, load pending
// batches into the mart.
func (ic *IngestController) RunIngest(c *gin.Context) {
	result, err := ic.ingest.RunPipeline()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, result)
}

// RunCollect triggers one SFTP collection pass over the configured servers.
func (ic *IngestController) RunCollect(c *gin.Context) {
	if ic.collector == nil {
		c.JSON(503, gin.H{"error": "No SSH servers configured"})
		return
	}

	downloaded, err := ic.collector.CollectFromServers()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, dtos.CollectRunResultDTO{FilesDownloaded: downloaded})
}

// UploadLog ingests a single .log file posted as multipart form data
// (fields: file, serverName) straight into the mart.
func (ic *IngestController) UploadLog(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(400, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".log") {
		c.JSON(400, gin.H{"error": "File must be a .log file"})
		return
	}

	serverName := c.PostForm("serverName")

	inserted, err := ic.ingest.IngestUploadedLog(serverName, header.Filename, file)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(201, gin.H{"rowsInserted": inserted, "sourceFile": header.Filename})
}

// GetProcessedFiles returns the processed-file ledger.
func (ic *IngestController) GetProcessedFiles(c *gin.Context) {
	files, err := ic.state.ListProcessedFiles()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, files)
}
