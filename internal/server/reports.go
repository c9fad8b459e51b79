package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/tallybook/ledgerd/pkg/db/pagination"
)

func (s *Server) accountBalance(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	accountID, err := snowflake.ParseString(c.Param("account_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	asOf, err := parseTimeParam(c, "as_of", time.Now().UTC())
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	balance, err := s.reportingSvc.AccountBalance(c.Request.Context(), tenant, accountID, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account_id": accountID,
		"as_of":      asOf,
		"balance":    balance,
	})
}

func (s *Server) rollupBalance(c *gin.Context) {
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

	code := c.Param("code")
	balance, err := s.reportingSvc.RollupBalance(c.Request.Context(), tenant, code, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":   code,
		"as_of":  asOf,
		"rollup": balance,
	})
}

func (s *Server) statement(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	accountID, err := snowflake.ParseString(c.Param("account_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	start, err := parseTimeParam(c, "start", time.Time{})
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	end, err := parseTimeParam(c, "end", time.Time{})
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	statement, err := s.reportingSvc.Statement(c.Request.Context(), tenant, accountID, start, end, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

func (s *Server) trialBalance(c *gin.Context) {
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

	tb, err := s.reportingSvc.TrialBalance(c.Request.Context(), tenant, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tb)
}
