package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	paymentaccountdomain "github.com/tallybook/ledgerd/internal/paymentaccount/domain"
)

func (s *Server) registerPaymentAccount(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var in paymentaccountdomain.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	entry, err := s.paymentAccountSvc.Register(c.Request.Context(), tenant, in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) listPaymentAccounts(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var status *paymentaccountdomain.Status
	if raw := c.Query("status"); raw != "" {
		st := paymentaccountdomain.Status(raw)
		if st != paymentaccountdomain.StatusActive && st != paymentaccountdomain.StatusInactive {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		status = &st
	}

	entries, err := s.paymentAccountSvc.List(c.Request.Context(), tenant, status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_accounts": entries})
}

func (s *Server) setPaymentAccountStatus(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var body struct {
		Status paymentaccountdomain.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if body.Status != paymentaccountdomain.StatusActive && body.Status != paymentaccountdomain.StatusInactive {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	entry, err := s.paymentAccountSvc.SetStatus(c.Request.Context(), tenant, id, body.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
