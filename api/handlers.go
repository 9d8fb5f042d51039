package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/match"
	"github.com/poiesic/labelmap/pipeline"
)

const (
	defaultLimit = 10
	maxLimit     = 1000
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readiness(c *gin.Context) {
	if !s.svc.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) drugIndications(c *gin.Context) {
	label, err := s.svc.MapDrug(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toLabel(label))
}

func (s *Server) listDrugs(c *gin.Context) {
	skip, err1 := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, err2 := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err1 != nil || err2 != nil || skip < 0 || limit < 1 {
		s.fail(c, ErrInvalidPaging)
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	labels, err := s.svc.ListLabels(c.Request.Context(), skip, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, toLabel(l))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) searchDrug(c *gin.Context) {
	name := c.Param("name")
	spls, err := s.svc.SearchLabels(c.Request.Context(), name)
	if err == nil && len(spls) == 0 {
		err = fmt.Errorf("%w: no labels for %s", core.ErrNotFound, name)
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]SPLResponse, 0, len(spls))
	for _, spl := range spls {
		out = append(out, SPLResponse{
			SetID:         spl.SetID,
			DrugLabel:     spl.Title,
			PublishedDate: spl.PublishedDate,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) extract(c *gin.Context) {
	kind, err := core.ParseSectionKind(c.DefaultQuery("kind", "indications"))
	if err != nil {
		s.fail(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "xml"))
	if format != "xml" && format != "html" {
		s.fail(c, fmt.Errorf("%w: %q", ErrInvalidFormat, format))
		return
	}

	doc, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySize))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
		return
	}

	var fragments core.ExtractedText
	if format == "html" {
		fragments = s.extractor.ExtractHTML(doc, kind)
	} else {
		fragments = s.extractor.Extract(doc, kind)
	}
	if fragments == nil {
		fragments = core.ExtractedText{}
	}
	c.JSON(http.StatusOK, ExtractResponse{Kind: kind.String(), Fragments: fragments})
}

func (s *Server) match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	threshold := match.DefaultMappingThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	maxMatches := match.DefaultMaxMappings
	if req.MaxMatches != nil {
		maxMatches = *req.MaxMatches
	}

	results, err := s.svc.MatchWithMonitor(c.Request.Context(), req.Text, threshold, maxMatches, s.metrics.Monitor())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MatchResponse{Matches: toCodes(results)})
}

// fail maps an error onto a status code and writes it.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, pipeline.ErrLabelNotFound),
		errors.Is(err, pipeline.ErrNoIndications):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmptyDrugName),
		errors.Is(err, core.ErrInvalidSectionKind),
		errors.Is(err, match.ErrEmptyText),
		errors.Is(err, match.ErrEmptyQuery),
		errors.Is(err, match.ErrInvalidQuery),
		errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrInvalidPaging):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
