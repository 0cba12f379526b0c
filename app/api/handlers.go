package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultItemLimit = 50

// Handler serves the read-only JSON API over the persisted run results.
type Handler struct {
	itemReader ItemReader
	ruleReader RuleReader
	version    string
	startedAt  time.Time
}

func NewHandler(itemReader ItemReader, ruleReader RuleReader, version string) *Handler {
	return &Handler{
		itemReader: itemReader,
		ruleReader: ruleReader,
		version:    version,
		startedAt:  time.Now(),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

func (h *Handler) Stats(c *gin.Context) {
	items, err := h.itemReader.GetItemCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read item count"})
		return
	}
	relations, err := h.itemReader.GetRelationCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read relation count"})
		return
	}
	ruleCount, err := h.ruleReader.GetRuleCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read rule count"})
		return
	}

	c.JSON(http.StatusOK, statsResponse{
		Items:     items,
		Relations: relations,
		Rules:     ruleCount,
	})
}

func (h *Handler) Items(c *gin.Context) {
	limit := defaultItemLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	items, err := h.itemReader.GetMatchedItems(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read items"})
		return
	}

	response := make([]itemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, itemResponse{
			Source:         item.Source,
			Category:       item.Category,
			Title:          item.Title,
			Link:           item.Link,
			Description:    item.Description,
			PublishedAt:    item.PublishedAt,
			MatchedRuleIDs: item.MatchedRuleIDs,
		})
	}

	c.JSON(http.StatusOK, response)
}
