package models

import "time"

// Country is a nation record with optional order-of-battle detail.
type Country struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ISOCode          string           `json:"iso_code"`
	ISOCode2         string           `json:"iso_code_2"`
	Region           string           `json:"region,omitempty"`
	Subregion        string           `json:"subregion,omitempty"`
	Capital          string           `json:"capital,omitempty"`
	Population       *int64           `json:"population,omitempty"`
	AreaSqKm         *float64         `json:"area_sq_km,omitempty"`
	GDPUSD           *float64         `json:"gdp_usd,omitempty"`
	DefenseBudgetUSD *float64         `json:"defense_budget_usd,omitempty"`
	Lat              *float64         `json:"lat,omitempty"`
	Lng              *float64         `json:"lng,omitempty"`
	FlagURL          string           `json:"flag_url,omitempty"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	MilitaryBranches []MilitaryBranch `json:"military_branches,omitempty"`
}

// BranchType classifies a military branch.
type BranchType string

const (
	BranchArmy              BranchType = "army"
	BranchNavy              BranchType = "navy"
	BranchAirForce          BranchType = "air_force"
	BranchMarines           BranchType = "marines"
	BranchSpaceForce        BranchType = "space_force"
	BranchCoastGuard        BranchType = "coast_guard"
	BranchSpecialOperations BranchType = "special_operations"
	BranchCyber             BranchType = "cyber"
	BranchOther             BranchType = "other"
)

// MilitaryBranch is one service branch of a country's forces.
type MilitaryBranch struct {
	ID                    string              `json:"id"`
	CountryID             string              `json:"country_id"`
	Name                  string              `json:"name"`
	BranchType            BranchType          `json:"branch_type"`
	PersonnelActive       *int64              `json:"personnel_active,omitempty"`
	PersonnelReserve      *int64              `json:"personnel_reserve,omitempty"`
	PersonnelParamilitary *int64              `json:"personnel_paramilitary,omitempty"`
	BudgetUSD             *float64            `json:"budget_usd,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	Equipment             []MilitaryEquipment `json:"equipment,omitempty"`
}

// MilitaryEquipment is an inventory line within a branch.
type MilitaryEquipment struct {
	ID                    string         `json:"id"`
	BranchID              string         `json:"branch_id"`
	Category              string         `json:"category"`
	Name                  string         `json:"name"`
	Model                 string         `json:"model,omitempty"`
	Quantity              int64          `json:"quantity"`
	OperationalPercentage *float64       `json:"operational_percentage,omitempty"`
	YearIntroduced        *int           `json:"year_introduced,omitempty"`
	CountryOfOrigin       string         `json:"country_of_origin,omitempty"`
	Specifications        map[string]any `json:"specifications,omitempty"`
	ConfidenceRating      *float64       `json:"confidence_rating,omitempty"`
	Source                string         `json:"source,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// ForceSummary aggregates a country's personnel and major platforms.
type ForceSummary struct {
	TotalPersonnel        int64    `json:"total_personnel"`
	ActivePersonnel       int64    `json:"active_personnel"`
	ReservePersonnel      int64    `json:"reserve_personnel"`
	ParamilitaryPersonnel int64    `json:"paramilitary_personnel"`
	TotalTanks            int64    `json:"total_tanks"`
	TotalAircraft         int64    `json:"total_aircraft"`
	TotalNavalVessels     int64    `json:"total_naval_vessels"`
	DefenseBudgetUSD      *float64 `json:"defense_budget_usd,omitempty"`
}

// CountryQuery filters GET /countries/.
type CountryQuery struct {
	Skip   int
	Limit  int
	Region string
	Search string
}
