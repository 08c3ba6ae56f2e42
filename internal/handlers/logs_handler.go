package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/itmade/itmade-api/pkg/logger"
	"github.com/itmade/itmade-api/pkg/metrics"
	"go.uber.org/zap"
)

// frontendService tags browser log lines in the shared log pipeline
const frontendService = "itmade-web"

type LogsHandler struct {
	out io.Writer
	mu  sync.Mutex
}

type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level" binding:"required,oneof=debug info warn error"`
	Message   string                 `json:"message" binding:"required,max=2000"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type LogBatchRequest struct {
	Logs []LogEntry `json:"logs" binding:"required,max=100,dive"`
}

// NewLogsHandler writes frontend log lines to out, typically a rotated frontend.log
func NewLogsHandler(out io.Writer) *LogsHandler {
	return &LogsHandler{out: out}
}

func (h *LogsHandler) ReceiveFrontendLogs(c *gin.Context) {
	var req LogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(req.Logs) == 0 {
		respondError(c, http.StatusBadRequest, "No logs provided", nil)
		return
	}

	if err := h.writeLogs(req.Logs, c.ClientIP()); err != nil {
		logger.Error("Failed to write frontend logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to write logs", err)
		return
	}

	metrics.FrontendLogsReceived.Add(float64(len(req.Logs)))
	logger.Debug("Received frontend logs", zap.Int("count", len(req.Logs)))
	c.JSON(http.StatusOK, gin.H{"success": true, "received": len(req.Logs)})
}

func (h *LogsHandler) writeLogs(logs []LogEntry, clientIP string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	encoder := json.NewEncoder(h.out)
	for _, entry := range logs {
		// Reformat log entry to match backend format
		logLine := make(map[string]interface{}, len(entry.Context)+5)
		for k, v := range entry.Context {
			logLine[k] = v
		}
		logLine["ts"] = entry.Timestamp
		logLine["level"] = entry.Level
		logLine["msg"] = entry.Message
		logLine["service"] = frontendService
		logLine["client_ip"] = clientIP

		if err := encoder.Encode(logLine); err != nil {
			return fmt.Errorf("failed to encode log entry: %w", err)
		}
	}

	return nil
}
