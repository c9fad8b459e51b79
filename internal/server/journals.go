package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	journaldomain "github.com/tallybook/ledgerd/internal/journal/domain"
)

func (s *Server) postJournal(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req journaldomain.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	journal, err := s.journalSvc.Post(c.Request.Context(), tenant, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, journal)
}

func (s *Server) postJournalByTags(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req journaldomain.TagPostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	journal, err := s.journalSvc.PostByTags(c.Request.Context(), tenant, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, journal)
}

func (s *Server) getJournal(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	journalID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	journal, err := s.journalSvc.Get(c.Request.Context(), tenant, journalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, journal)
}

func (s *Server) voidJournal(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	journalID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	journal, err := s.journalSvc.Void(c.Request.Context(), tenant, journalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, journal)
}
