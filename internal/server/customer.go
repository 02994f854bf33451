package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/ledgerline/invoicer/internal/customer/domain"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
)

type customerRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		UserID:      user.ID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, "customer created", resp)
}

func (s *Server) ListAllCustomers(c *gin.Context) {
	resp, err := s.customerSvc.GetAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "customers", resp)
}

func (s *Server) ListCustomers(c *gin.Context) {
	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		Params: params,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "customers", resp)
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "customer", resp)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), id, customerdomain.UpdateCustomerRequest{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "customer updated", resp)
}

func (s *Server) SoftDeleteCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.customerSvc.SoftDelete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "customer deleted", nil)
}

func (s *Server) HardDeleteCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.customerSvc.HardDelete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "customer deleted", nil)
}
