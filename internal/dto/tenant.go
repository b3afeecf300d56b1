package dto

// CreateTenantRequest defines the data needed to register a tenant.
type CreateTenantRequest struct {
	TenantID      string `json:"tenantId" validate:"notblank"`
	AdminUsername string `json:"adminUsername" validate:"notblank"`
	AdminPassword string `json:"adminPassword" validate:"notblank"`
	MaxUsers      int    `json:"maxUsers" validate:"gte=1"`
}

// TenantSummary is one row of the operator's tenant overview.
type TenantSummary struct {
	TenantID      string `json:"tenantId"`
	AdminUsername string `json:"adminUsername"`
	UserCount     int    `json:"userCount"`
	MaxUsers      int    `json:"maxUsers"`
}
