package server

import (
	"time"

	"github.com/raysh454/policysim/internal/model"
)

// LeverMessage is sent by websocket clients. Omitted levers keep their
// current value for the session.
type LeverMessage struct {
	AuditEffect       *bool `json:"audit_effect,omitempty" example:"true"`
	ASTEffect         *bool `json:"ast_effect,omitempty" example:"true"`
	TherapyAdjustment *bool `json:"therapy_adjustment,omitempty" example:"false"`
}

func (m LeverMessage) apply(levers model.LeverState) model.LeverState {
	if m.AuditEffect != nil {
		levers.AuditEffect = *m.AuditEffect
	}
	if m.ASTEffect != nil {
		levers.ASTEffect = *m.ASTEffect
	}
	if m.TherapyAdjustment != nil {
		levers.TherapyAdjustment = *m.TherapyAdjustment
	}
	return levers
}

// RiskResponse is the ordered bucket histogram.
type RiskResponse struct {
	Buckets []model.BucketCount `json:"buckets"`
	Total   int                 `json:"total" example:"120"`
}

// RecordsResponse lists derived records for one lever state.
type RecordsResponse struct {
	Levers  model.LeverState      `json:"levers"`
	Records []model.DerivedRecord `json:"records"`
}

// HealthResponse reports the loaded snapshot.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	DatasetID string    `json:"dataset_id,omitempty" example:"6f1c0d1e-8a55-4c43-9a3e-0c1f5ad2b2a4"`
	Source    string    `json:"source,omitempty" example:"csv:LMIC_Intervention_Simulation_Results.csv"`
	Records   int       `json:"records" example:"120"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
}

// ReloadResponse describes the snapshot installed by a reload.
type ReloadResponse struct {
	DatasetID      string `json:"dataset_id" example:"6f1c0d1e-8a55-4c43-9a3e-0c1f5ad2b2a4"`
	Records        int    `json:"records" example:"120"`
	HasProbability bool   `json:"has_probability" example:"true"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"no dataset loaded"`
}
