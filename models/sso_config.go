package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SsoConfig represents an organization's SSO configuration. The engine only
// consults the key connector flag inside the data payload.
type SsoConfig struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrganizationID uuid.UUID       `json:"organization_id" db:"organization_id"`
	Enabled        bool            `json:"enabled" db:"enabled"`
	Data           json.RawMessage `json:"data,omitempty" db:"data"` // JSONB
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the SsoConfig model
func (SsoConfig) TableName() string {
	return "sso_configs"
}

// SsoConfigData is the decoded SSO configuration payload
type SsoConfigData struct {
	KeyConnectorEnabled bool   `json:"key_connector_enabled"`
	KeyConnectorURL     string `json:"key_connector_url,omitempty"`
}

// GetData decodes the configuration payload. A missing or empty payload
// decodes to the zero value.
func (c *SsoConfig) GetData() (SsoConfigData, error) {
	var data SsoConfigData
	if len(c.Data) == 0 {
		return data, nil
	}
	err := json.Unmarshal(c.Data, &data)
	return data, err
}

// KeyConnectorEnabled reports whether key connector is on, swallowing
// malformed payloads as disabled.
func (c *SsoConfig) KeyConnectorEnabled() bool {
	data, err := c.GetData()
	if err != nil {
		return false
	}
	return data.KeyConnectorEnabled
}
