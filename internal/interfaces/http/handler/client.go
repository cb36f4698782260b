package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	registryapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/dto"
)

// ClientHandler handles client registry API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *registryapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *registryapp.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// CreateClientRequest represents a request to register a new client
// @Description Request body for registering a new client
type CreateClientRequest struct {
	FirstName  string `json:"first_name" binding:"required,min=1,max=100" example:"Maria"`
	LastName   string `json:"last_name" binding:"required,min=1,max=100" example:"Lopez"`
	NationalID string `json:"national_id" binding:"required,len=13" example:"2547896310101"`
	MeterCode  string `json:"meter_code" binding:"required,min=1,max=50" example:"SM-00042"`
	Lot        string `json:"lot" binding:"required,min=1,max=50" example:"A-17"`
	Zone       string `json:"zone" binding:"required,oneof=san-miguel santa-clara-1 santa-clara-2 cabanas-1 cabanas-2" example:"san-miguel"`
	Phone      string `json:"phone" binding:"max=30" example:"+502 5555 1234"`
	Email      string `json:"email" binding:"omitempty,email,max=150" example:"maria@example.com"`
}

// UpdateContactRequest represents a request to update client contact info
// @Description Request body for updating a client's phone and email
type UpdateContactRequest struct {
	Phone string `json:"phone" binding:"max=30" example:"+502 5555 9876"`
	Email string `json:"email" binding:"omitempty,email,max=150" example:"maria.new@example.com"`
}

// Create godoc
// @ID           createClient
// @Summary      Register a new client
// @Description  Register a new water service client with a unique national ID and meter code
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body CreateClientRequest true "Client registration request"
// @Success      201 {object} dto.Response{data=ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /registry/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), registryapp.CreateClientRequest{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		MeterCode:  req.MeterCode,
		Lot:        req.Lot,
		Zone:       registry.ProjectZone(req.Zone),
		Phone:      req.Phone,
		Email:      req.Email,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toClientResponse(client))
}

// GetByID godoc
// @ID           getClientById
// @Summary      Get client by ID
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /registry/clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toClientResponse(client))
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Description  List clients with pagination, search matches name, national ID and meter code
// @Tags         clients
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response{data=[]ClientResponse}
// @Security     BearerAuth
// @Router       /registry/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ApplyDefaults()

	result, err := h.clientService.ListClients(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toClientResponses(result.Items), result.Page, result.PageSize, result.Total)
}

// UpdateContact godoc
// @ID           updateClientContact
// @Summary      Update client contact information
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body UpdateContactRequest true "Contact update request"
// @Success      200 {object} dto.Response{data=ClientResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /registry/clients/{id}/contact [put]
func (h *ClientHandler) UpdateContact(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.UpdateContact(c.Request.Context(), clientID, req.Phone, req.Email)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toClientResponse(client))
}

// Suspend godoc
// @ID           suspendClient
// @Summary      Suspend a client's service
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=ClientResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /registry/clients/{id}/suspend [post]
func (h *ClientHandler) Suspend(c *gin.Context) {
	h.transition(c, h.clientService.SuspendClient)
}

// Activate godoc
// @ID           activateClient
// @Summary      Reactivate a client's service
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=ClientResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /registry/clients/{id}/activate [post]
func (h *ClientHandler) Activate(c *gin.Context) {
	h.transition(c, h.clientService.ActivateClient)
}

// Deactivate godoc
// @ID           deactivateClient
// @Summary      Permanently deactivate a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=ClientResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /registry/clients/{id}/deactivate [post]
func (h *ClientHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.clientService.DeactivateClient)
}

func (h *ClientHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*registry.Client, error)) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid client ID")
		return
	}

	client, err := fn(c.Request.Context(), clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toClientResponse(client))
}
