package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/ledgerline/invoicer/internal/invoice/domain"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type invoiceRequest struct {
	CustomerID string    `json:"customerId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Comment    *string   `json:"comment"`
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := parseID(req.CustomerID, "customerId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customerID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Comment:    req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, "invoice created", resp)
}

func (s *Server) ListAllInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.GetAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoices", resp)
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Params
		Status     string `form:"status"`
		MinSum     string `form:"minSum"`
		MaxSum     string `form:"maxSum"`
		CustomerID string `form:"customerId"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := invoicedomain.ListInvoiceRequest{
		Params: query.Params,
		Status: query.Status,
	}

	minSum, err := parseOptionalDecimal(query.MinSum, "minSum")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	req.MinSum = minSum

	maxSum, err := parseOptionalDecimal(query.MaxSum, "maxSum")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	req.MaxSum = maxSum

	if strings.TrimSpace(query.CustomerID) != "" {
		customerID, err := parseID(query.CustomerID, "customerId")
		if err != nil {
			AbortWithError(c, err)
			return
		}
		req.CustomerID = customerID
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoices", resp)
}

func (s *Server) ListInvoicesByCustomer(c *gin.Context) {
	customerID, err := parseIDParam(c, "customerId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.GetByCustomer(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoices", resp)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice", resp)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), id, invoicedomain.UpdateInvoiceRequest{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Comment:   req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice updated", resp)
}

func (s *Server) ChangeInvoiceStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice status changed", resp)
}

func (s *Server) SoftDeleteInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.invoiceSvc.SoftDelete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice deleted", nil)
}

func (s *Server) HardDeleteInvoice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.invoiceSvc.HardDelete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice deleted", nil)
}

func parseOptionalDecimal(value, field string) (*decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, newValidationError(field, "invalid_"+strings.ToLower(field), "invalid number")
	}
	return &parsed, nil
}
