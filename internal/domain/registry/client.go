package registry

import (
	"regexp"
	"strings"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
)

// ClientStatus represents the service status of a client
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusInactive  ClientStatus = "inactive"
	ClientStatusSuspended ClientStatus = "suspended" // Service cut for delinquency
)

// IsValid checks if the status is a valid ClientStatus
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of ClientStatus
func (s ClientStatus) String() string {
	return string(s)
}

// ProjectZone identifies the housing project a lot belongs to
type ProjectZone string

const (
	ZoneSanMiguel    ProjectZone = "san-miguel"
	ZoneSantaClara1  ProjectZone = "santa-clara-1"
	ZoneSantaClara2  ProjectZone = "santa-clara-2"
	ZoneCabanas1     ProjectZone = "cabanas-1"
	ZoneCabanas2     ProjectZone = "cabanas-2"
)

// IsValid checks if the zone is a recognized project
func (z ProjectZone) IsValid() bool {
	switch z {
	case ZoneSanMiguel, ZoneSantaClara1, ZoneSantaClara2, ZoneCabanas1, ZoneCabanas2:
		return true
	}
	return false
}

var dpiPattern = regexp.MustCompile(`^\d{13}$`)

// Client represents a water service subscriber.
// It is the aggregate root for the client registry context.
type Client struct {
	shared.BaseAggregateRoot
	FirstName          string
	LastName           string
	NationalID         string // DPI, globally unique
	MeterCode          string // contador, globally unique
	Lot                string
	Zone               ProjectZone
	Phone              string
	Email              string
	Status             ClientStatus
	ReconnectionCount  int
	LastReconnectionAt *time.Time
}

// NewClient creates a new client with required fields
func NewClient(firstName, lastName, nationalID, meterCode, lot string, zone ProjectZone) (*Client, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
	}
	if !dpiPattern.MatchString(nationalID) {
		return nil, shared.NewDomainError("INVALID_NATIONAL_ID", "National ID (DPI) must be 13 digits")
	}
	if strings.TrimSpace(meterCode) == "" {
		return nil, shared.NewDomainError("INVALID_METER_CODE", "Meter code cannot be empty")
	}
	if len(meterCode) > 50 {
		return nil, shared.NewDomainError("INVALID_METER_CODE", "Meter code cannot exceed 50 characters")
	}
	if strings.TrimSpace(lot) == "" {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot cannot be empty")
	}
	if !zone.IsValid() {
		return nil, shared.NewDomainError("INVALID_ZONE", "Unknown project zone")
	}

	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		NationalID:        nationalID,
		MeterCode:         strings.ToUpper(strings.TrimSpace(meterCode)),
		Lot:               strings.TrimSpace(lot),
		Zone:              zone,
		Status:            ClientStatusActive,
	}, nil
}

// FullName returns the client's display name
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// SetContact updates the client's contact information
func (c *Client) SetContact(phone, email string) error {
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	c.Phone = phone
	c.Email = email
	c.touch()
	return nil
}

// Activate restores the client to active status
func (c *Client) Activate() error {
	if c.Status == ClientStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Client is already active")
	}
	c.Status = ClientStatusActive
	c.touch()
	return nil
}

// Deactivate soft-deletes the client (status flip, never a hard delete)
func (c *Client) Deactivate() error {
	if c.Status == ClientStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Client is already inactive")
	}
	c.Status = ClientStatusInactive
	c.touch()
	return nil
}

// Suspend cuts the client's service for delinquency
func (c *Client) Suspend() error {
	if c.Status == ClientStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Client is already suspended")
	}
	if c.Status == ClientStatusInactive {
		return shared.NewDomainError("CLIENT_INACTIVE", "Cannot suspend an inactive client")
	}
	c.Status = ClientStatusSuspended
	c.touch()
	return nil
}

// RegisterReconnection reactivates service after a reconnection payment and
// increments the reconnection counter
func (c *Client) RegisterReconnection(at time.Time) {
	c.Status = ClientStatusActive
	c.ReconnectionCount++
	c.LastReconnectionAt = &at
	c.touch()
}

// IsActive returns true if the client has active service
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// IsSuspended returns true if the client's service is cut
func (c *Client) IsSuspended() bool {
	return c.Status == ClientStatusSuspended
}

func (c *Client) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
