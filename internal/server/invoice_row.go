package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/ledgerline/invoicer/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

type invoiceRowRequest struct {
	InvoiceID string          `json:"invoiceId"`
	Service   string          `json:"service"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
}

func (s *Server) CreateInvoiceRow(c *gin.Context) {
	var req invoiceRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoiceID, err := parseID(req.InvoiceID, "invoiceId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.AddRow(c.Request.Context(), invoicedomain.AddRowRequest{
		InvoiceID: invoiceID,
		Service:   req.Service,
		Quantity:  req.Quantity,
		Rate:      req.Rate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, "invoice row created", resp)
}

func (s *Server) ListInvoiceRows(c *gin.Context) {
	resp, err := s.invoiceSvc.GetRows(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice rows", resp)
}

func (s *Server) ListInvoiceRowsByInvoice(c *gin.Context) {
	invoiceID, err := parseIDParam(c, "invoiceId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.GetRowsByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice rows", resp)
}

func (s *Server) GetInvoiceRowByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.GetRow(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice row", resp)
}

func (s *Server) UpdateInvoiceRow(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req invoiceRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateRow(c.Request.Context(), id, invoicedomain.UpdateRowRequest{
		Service:  req.Service,
		Quantity: req.Quantity,
		Rate:     req.Rate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice row updated", resp)
}

func (s *Server) HardDeleteInvoiceRow(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.invoiceSvc.DeleteRow(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "invoice row deleted", nil)
}
