package models

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	AggregateModel
	FirstName          string               `gorm:"type:varchar(100);not null"`
	LastName           string               `gorm:"type:varchar(100);not null"`
	NationalID         string               `gorm:"type:varchar(13);not null;uniqueIndex:idx_clients_national_id"`
	MeterCode          string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_clients_meter_code"`
	Lot                string               `gorm:"type:varchar(50);not null"`
	Zone               registry.ProjectZone `gorm:"type:varchar(30);not null;index"`
	Phone              string               `gorm:"type:varchar(30)"`
	Email              string               `gorm:"type:varchar(150)"`
	Status             registry.ClientStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	ReconnectionCount  int                  `gorm:"not null;default:0"`
	LastReconnectionAt *time.Time
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *registry.Client {
	return &registry.Client{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		NationalID:         m.NationalID,
		MeterCode:          m.MeterCode,
		Lot:                m.Lot,
		Zone:               m.Zone,
		Phone:              m.Phone,
		Email:              m.Email,
		Status:             m.Status,
		ReconnectionCount:  m.ReconnectionCount,
		LastReconnectionAt: m.LastReconnectionAt,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *registry.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.NationalID = c.NationalID
	m.MeterCode = c.MeterCode
	m.Lot = c.Lot
	m.Zone = c.Zone
	m.Phone = c.Phone
	m.Email = c.Email
	m.Status = c.Status
	m.ReconnectionCount = c.ReconnectionCount
	m.LastReconnectionAt = c.LastReconnectionAt
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *registry.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
