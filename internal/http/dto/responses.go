package dto

import (
	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/integrations"
)

// ErrorResponse is the envelope for every error returned by the API.
type ErrorResponse struct {
	Error *apperr.Error `json:"error"`
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type CapabilitiesResponse struct {
	Registered   []string                  `json:"registered"`
	Skipped      []string                  `json:"skipped"`
	Capabilities []integrations.Capability `json:"capabilities"`
}
