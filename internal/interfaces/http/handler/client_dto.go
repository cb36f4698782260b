package handler

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
)

// ClientResponse represents a client in API responses
// @Description Client details returned by the API
type ClientResponse struct {
	ID                 string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	FirstName          string     `json:"first_name" example:"Maria"`
	LastName           string     `json:"last_name" example:"Lopez"`
	NationalID         string     `json:"national_id" example:"2547896310101"`
	MeterCode          string     `json:"meter_code" example:"SM-00042"`
	Lot                string     `json:"lot" example:"A-17"`
	Zone               string     `json:"zone" example:"san-miguel" enums:"san-miguel,santa-clara-1,santa-clara-2,cabanas-1,cabanas-2"`
	Phone              string     `json:"phone" example:"+502 5555 1234"`
	Email              string     `json:"email" example:"maria@example.com"`
	Status             string     `json:"status" example:"active" enums:"active,suspended,inactive"`
	ReconnectionCount  int        `json:"reconnection_count" example:"0"`
	LastReconnectionAt *time.Time `json:"last_reconnection_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Version            int        `json:"version" example:"1"`
}

func toClientResponse(client *registry.Client) ClientResponse {
	return ClientResponse{
		ID:                 client.ID.String(),
		FirstName:          client.FirstName,
		LastName:           client.LastName,
		NationalID:         client.NationalID,
		MeterCode:          client.MeterCode,
		Lot:                client.Lot,
		Zone:               string(client.Zone),
		Phone:              client.Phone,
		Email:              client.Email,
		Status:             string(client.Status),
		ReconnectionCount:  client.ReconnectionCount,
		LastReconnectionAt: client.LastReconnectionAt,
		CreatedAt:          client.CreatedAt,
		UpdatedAt:          client.UpdatedAt,
		Version:            client.Version,
	}
}

func toClientResponses(clients []registry.Client) []ClientResponse {
	responses := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, toClientResponse(&clients[i]))
	}
	return responses
}
