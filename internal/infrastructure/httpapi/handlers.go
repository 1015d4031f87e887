package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

type toggleRuleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type caseStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Revision *int   `json:"revision" binding:"omitempty,min=0"`
}

type commentRequest struct {
	Author string `json:"author" binding:"required,max=200"`
	Body   string `json:"body" binding:"required,max=4000"`
}

type loadErrorResponse struct {
	Entity string `json:"entity"`
	Error  string `json:"error"`
}

type dashboardResponse struct {
	Tenant        string                  `json:"tenant"`
	Stats         entities.DashboardStats `json:"stats"`
	Actions       []entities.Action       `json:"actions"`
	Insights      []entities.Insight      `json:"insights"`
	InsightSource entities.InsightSource  `json:"insight_source"`
	LoadErrors    []loadErrorResponse     `json:"load_errors"`
}

func loadErrors(view *services.View) []loadErrorResponse {
	result := make([]loadErrorResponse, 0, len(view.LoadErrors))
	for _, le := range view.LoadErrors {
		result = append(result, loadErrorResponse{Entity: le.Entity, Error: le.Err.Error()})
	}
	return result
}

func (s *Server) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	view := s.engine.Load(ctx)
	insights := s.engine.Insights(ctx, view)

	c.JSON(http.StatusOK, dashboardResponse{
		Tenant:        view.Tenant,
		Stats:         view.Stats,
		Actions:       view.Actions,
		Insights:      insights.Insights,
		InsightSource: insights.Source,
		LoadErrors:    loadErrors(view),
	})
}

func (s *Server) listRules(c *gin.Context) {
	view := s.engine.Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"groups":      view.RuleGroups,
		"load_errors": loadErrors(view),
	})
}

func (s *Server) toggleRule(c *gin.Context) {
	var req toggleRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := s.engine.ToggleRule(c.Request.Context(), c.Param("id"), *req.Enabled)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": view.RuleGroups})
}

func (s *Server) listCases(c *gin.Context) {
	view := s.engine.Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"cases":       view.Cases,
		"load_errors": loadErrors(view),
	})
}

func (s *Server) updateCaseStatus(c *gin.Context) {
	var req caseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	caseID := c.Param("id")
	view, err := s.engine.UpdateCaseStatus(c.Request.Context(), caseID, entities.CaseStatus(req.Status),
		services.StatusUpdateOptions{ExpectedRevision: req.Revision})
	if err != nil {
		s.writeError(c, err)
		return
	}

	for i := range view.Cases {
		if view.Cases[i].ID == caseID {
			c.JSON(http.StatusOK, view.Cases[i])
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"id": caseID, "status": req.Status})
}

func (s *Server) listComments(c *gin.Context) {
	comments, err := s.engine.CaseComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if comments == nil {
		comments = []entities.CaseComment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (s *Server) addComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	comment, err := s.engine.AddCaseComment(c.Request.Context(), c.Param("id"), req.Author, req.Body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) listDocuments(c *gin.Context) {
	view := s.engine.Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"documents":   view.Documents,
		"load_errors": loadErrors(view),
	})
}
