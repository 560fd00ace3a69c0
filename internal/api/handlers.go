package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/survey-scoring-server/internal/analytics"
	"github.com/survey-scoring-server/internal/cache"
	"github.com/survey-scoring-server/internal/domain"
	"github.com/survey-scoring-server/internal/service"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if err := s.store.Health(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		s.log.WithError(err).Error("Health check failed")
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// handleListAssessments returns the supported assessment names
func (s *Server) handleListAssessments(c *gin.Context) {
	names := s.criteria.Names()
	names = append(names, "PSQI")
	sort.Strings(names)

	c.JSON(http.StatusOK, gin.H{"assessments": names})
}

// handleScore scores a survey without persisting anything. Data-level
// scoring failures come back inside the envelope with HTTP 200 so the
// client can show the structured message.
func (s *Server) handleScore(c *gin.Context) {
	var req domain.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return
	}
	if req.SurveyType == "" || len(req.Responses) == 0 {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput,
			"survey_type and responses are required", "")
		return
	}

	c.JSON(http.StatusOK, s.scoring.Score(&req))
}

// handleSubmit scores a survey and persists the outcome for the patient.
// Raw responses are stored even when scoring fails so no submission is
// ever lost.
func (s *Server) handleSubmit(c *gin.Context) {
	var submission domain.SurveySubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return
	}
	if submission.PatientID == "" || submission.SurveyType == "" || len(submission.Responses) == 0 {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput,
			"patient_id, survey_type and responses are required", "")
		return
	}

	gender := submission.Gender
	if gender == "" {
		if info, ok := s.demographics.Get(submission.PatientID); ok {
			gender = info.Gender
		}
	} else {
		s.demographics.Set(cache.DemographicInfo{
			PatientID: submission.PatientID,
			Gender:    gender,
		})
	}

	scoreResult := s.scoring.Score(&domain.ScoreRequest{
		SurveyType:           submission.SurveyType,
		Responses:            submission.Responses,
		Gender:               gender,
		AdditionalConditions: submission.AdditionalConditions,
	})

	result := &domain.SurveyResult{
		PatientID:      submission.PatientID,
		SurveyType:     service.NormalizeSurveyType(submission.SurveyType),
		Responses:      submission.Responses,
		Score:          scoreResult.TotalScore,
		Subscores:      scoreResult.Subscores,
		Interpretation: scoreResult.Interpretation,
		Category:       scoreResult.Category,
	}
	if !scoreResult.HasError() {
		result.Summary = s.reports.GenerateReport(c.Request.Context(),
			submission.PatientID, []*domain.ScoreResult{scoreResult})
	}

	if err := s.store.Save(c.Request.Context(), result); err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"Failed to save survey result", err.Error())
		return
	}

	s.log.WithFields(logrus.Fields{
		"result_id":   result.ID,
		"patient_id":  result.PatientID,
		"survey_type": result.SurveyType,
		"scored":      !scoreResult.HasError(),
	}).Info("Survey submission stored")

	c.JSON(http.StatusCreated, gin.H{
		"result": result,
		"score":  scoreResult,
	})
}

// handleGetResult retrieves a stored survey result
func (s *Server) handleGetResult(c *gin.Context) {
	result, err := s.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrResourceNotFound, "Survey result not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"Failed to load survey result", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleDeleteResult removes a stored survey result
func (s *Server) handleDeleteResult(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrResourceNotFound, "Survey result not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"Failed to delete survey result", err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// handleListPatientResults lists a patient's survey results, newest first
func (s *Server) handleListPatientResults(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageLimit)
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	results, err := s.store.ListByPatient(c.Request.Context(), c.Param("patient_id"), limit, offset)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"Failed to list survey results", err.Error())
		return
	}
	if results == nil {
		results = []*domain.SurveyResult{}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleStatistics returns the score distribution for one instrument
func (s *Server) handleStatistics(c *gin.Context) {
	surveyType := service.NormalizeSurveyType(c.Param("survey_type"))

	stats, err := s.analytics.ScoreStatistics(c.Request.Context(), surveyType)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"Failed to compute statistics", err.Error())
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleTrends returns monthly submission trends for one instrument
func (s *Server) handleTrends(c *gin.Context) {
	surveyType := service.NormalizeSurveyType(c.Param("survey_type"))

	trends, err := s.analytics.MonthlyTrends(c.Request.Context(), surveyType)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"Failed to compute trends", err.Error())
		return
	}
	if trends == nil {
		trends = []analytics.MonthlyTrend{}
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// handleRisk returns the population risk assessment for one instrument
func (s *Server) handleRisk(c *gin.Context) {
	surveyType := service.NormalizeSurveyType(c.Param("survey_type"))

	assessment, err := s.analytics.PatientRiskAssessment(c.Request.Context(), surveyType)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"Failed to assess patient risk", err.Error())
		return
	}

	c.JSON(http.StatusOK, assessment)
}

func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	correlationID := c.GetString("correlation_id")

	if status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"code":           code,
			"details":        details,
		}).Error(message)
	}

	c.JSON(status, domain.NewAPIError(code, message, details, correlationID))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
