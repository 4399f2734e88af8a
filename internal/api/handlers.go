package api

import (
	"net/http"
	"sort"

	"adaptive-trading-framework/internal/settings"

	"github.com/gin-gonic/gin"
)

// exchangeView is the redacted wire form of an exchange: credentials are
// reported as presence flags, never echoed back.
type exchangeView struct {
	Name         string   `json:"name"`
	HasAPIKey    bool     `json:"has_api_key"`
	HasAPISecret bool     `json:"has_api_secret"`
	Sandbox      bool     `json:"sandbox"`
	RateLimit    int      `json:"rate_limit"`
	Symbols      []string `json:"symbols"`
}

func newExchangeView(ex settings.ExchangeSettings) exchangeView {
	return exchangeView{
		Name:         ex.Name,
		HasAPIKey:    ex.APIKey != "",
		HasAPISecret: ex.APISecret != "",
		Sandbox:      ex.Sandbox,
		RateLimit:    ex.RateLimit,
		Symbols:      ex.Symbols,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"mode":   s.manager.Mode().String(),
		"remote": s.manager.RemoteAvailable(),
	})
}

func (s *Server) handleGetConfig(c *gin.Context) {
	exchanges := s.manager.Exchanges()
	views := make(map[string]exchangeView, len(exchanges))
	for name, ex := range exchanges {
		views[name] = newExchangeView(ex)
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":      s.manager.Mode().String(),
		"risk":      s.manager.Risk(),
		"rl":        s.manager.Learning(),
		"exchanges": views,
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	if err := s.manager.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (s *Server) handleListExchanges(c *gin.Context) {
	exchanges := s.manager.Exchanges()
	views := make([]exchangeView, 0, len(exchanges))
	for _, ex := range exchanges {
		views = append(views, newExchangeView(ex))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })

	c.JSON(http.StatusOK, gin.H{"exchanges": views})
}

// addExchangeRequest is the mutation payload. Fields carries any further
// exchange settings (sandbox, rate_limit, symbols) and is validated
// field by field.
type addExchangeRequest struct {
	Name      string                 `json:"name" binding:"required"`
	APIKey    string                 `json:"api_key"`
	APISecret string                 `json:"api_secret"`
	Fields    map[string]interface{} `json:"fields"`
}

func (s *Server) handleAddExchange(c *gin.Context) {
	var req addExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if err := s.manager.AddExchange(req.Name, req.APIKey, req.APISecret, req.Fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ex, _ := s.manager.Exchange(req.Name)
	c.JSON(http.StatusCreated, gin.H{"exchange": newExchangeView(ex)})
}

func (s *Server) handleSave(c *gin.Context) {
	saved := s.manager.SaveToRemote(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"saved":  saved,
		"remote": s.manager.RemoteAvailable(),
	})
}
