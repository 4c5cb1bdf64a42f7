package prospects

import (
	"strings"
	"time"
)

// Stage is a prospect's position in the sales pipeline.
type Stage string

const (
	StageLead       Stage = "lead"
	StageContacted  Stage = "contacted"
	StageInterested Stage = "interested"
	StagePartner    Stage = "partner"
)

// Stages lists the pipeline in funnel order.
var Stages = []Stage{StageLead, StageContacted, StageInterested, StagePartner}

func (s Stage) Valid() bool {
	switch s {
	case StageLead, StageContacted, StageInterested, StagePartner:
		return true
	default:
		return false
	}
}

type StoreType string

const (
	StoreTypePharmacy   StoreType = "pharmacy"
	StoreTypeHealthFood StoreType = "health_food"
	StoreTypeGym        StoreType = "gym"
	StoreTypeSupplement StoreType = "supplement"
	StoreTypeGrocery    StoreType = "grocery"
	StoreTypeOther      StoreType = "other"
)

func (t StoreType) Valid() bool {
	switch t {
	case StoreTypePharmacy, StoreTypeHealthFood, StoreTypeGym, StoreTypeSupplement, StoreTypeGrocery, StoreTypeOther:
		return true
	default:
		return false
	}
}

type Source string

const (
	SourceManual   Source = "manual"
	SourceImport   Source = "import"
	SourceAIFound  Source = "ai_found"
	SourceReferral Source = "referral"
)

func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceImport, SourceAIFound, SourceReferral:
		return true
	default:
		return false
	}
}

// Prospect is a retail store being worked through the pipeline.
type Prospect struct {
	ID                     string     `json:"id"`
	BusinessName           string     `json:"business_name"`
	ContactFirstName       *string    `json:"contact_first_name"`
	ContactLastName        *string    `json:"contact_last_name"`
	Email                  *string    `json:"email"`
	Phone                  *string    `json:"phone"`
	Website                *string    `json:"website"`
	Address                *string    `json:"address"`
	City                   *string    `json:"city"`
	State                  *string    `json:"state"`
	Zip                    *string    `json:"zip"`
	StoreType              StoreType  `json:"store_type"`
	PipelineStage          Stage      `json:"pipeline_stage"`
	AssignedTo             *string    `json:"assigned_to"`
	Source                 Source     `json:"source"`
	EstimatedMonthlyVolume *float64   `json:"estimated_monthly_volume"`
	Notes                  *string    `json:"notes"`
	LastContactedAt        *time.Time `json:"last_contacted_at"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// CallablePhone returns the trimmed phone number and whether one is present.
func (p Prospect) CallablePhone() (string, bool) {
	if p.Phone == nil {
		return "", false
	}
	v := strings.TrimSpace(*p.Phone)
	return v, v != ""
}

// CreateInput carries a new prospect. Empty enums take their defaults.
type CreateInput struct {
	BusinessName           string    `json:"business_name"`
	ContactFirstName       *string   `json:"contact_first_name"`
	ContactLastName        *string   `json:"contact_last_name"`
	Email                  *string   `json:"email"`
	Phone                  *string   `json:"phone"`
	Website                *string   `json:"website"`
	Address                *string   `json:"address"`
	City                   *string   `json:"city"`
	State                  *string   `json:"state"`
	Zip                    *string   `json:"zip"`
	StoreType              StoreType `json:"store_type"`
	PipelineStage          Stage     `json:"pipeline_stage"`
	AssignedTo             *string   `json:"assigned_to"`
	Source                 Source    `json:"source"`
	EstimatedMonthlyVolume *float64  `json:"estimated_monthly_volume"`
	Notes                  *string   `json:"notes"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	BusinessName           *string    `json:"business_name"`
	ContactFirstName       *string    `json:"contact_first_name"`
	ContactLastName        *string    `json:"contact_last_name"`
	Email                  *string    `json:"email"`
	Phone                  *string    `json:"phone"`
	Website                *string    `json:"website"`
	Address                *string    `json:"address"`
	City                   *string    `json:"city"`
	State                  *string    `json:"state"`
	Zip                    *string    `json:"zip"`
	StoreType              *StoreType `json:"store_type"`
	PipelineStage          *Stage     `json:"pipeline_stage"`
	AssignedTo             *string    `json:"assigned_to"`
	Source                 *Source    `json:"source"`
	EstimatedMonthlyVolume *float64   `json:"estimated_monthly_volume"`
	Notes                  *string    `json:"notes"`
}

// Filter narrows List. Search matches business name, contact names, email and city.
type Filter struct {
	Stage      Stage
	StoreType  StoreType
	AssignedTo string
	Search     string
	SortBy     string
	Ascending  bool
}

// sortColumns whitelists the columns List may order by.
var sortColumns = map[string]struct{}{
	"created_at":               {},
	"updated_at":               {},
	"business_name":            {},
	"city":                     {},
	"state":                    {},
	"pipeline_stage":           {},
	"store_type":               {},
	"last_contacted_at":        {},
	"estimated_monthly_volume": {},
}

func validSortColumn(c string) bool {
	_, ok := sortColumns[c]
	return ok
}
