package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
)

func (s *Server) createAccount(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req accountdomain.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	account, err := s.accountSvc.Create(c.Request.Context(), tenant, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (s *Server) upsertAccount(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req accountdomain.UpsertSpec
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	account, err := s.accountSvc.UpsertByCode(c.Request.Context(), tenant, c.Param("code"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) getAccount(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	account, err := s.accountSvc.Get(c.Request.Context(), tenant, c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) listAccounts(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	accounts, err := s.accountSvc.List(c.Request.Context(), tenant)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (s *Server) deactivateAccount(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.accountSvc.Deactivate(c.Request.Context(), tenant, c.Param("code")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) resolveSystemTag(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	account, err := s.accountSvc.ResolveTag(c.Request.Context(), tenant, accountdomain.SystemTag(c.Param("tag")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) accountHierarchy(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	asOf, err := parseTimeParam(c, "as_of", time.Now().UTC())
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tree, err := s.reportingSvc.Hierarchy(c.Request.Context(), tenant, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hierarchy": tree, "as_of": asOf})
}

func parseTimeParam(c *gin.Context, name string, def time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
