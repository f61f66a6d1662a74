package asset

import (
	"slices"
	"time"
)

// Category classifies what a tracking asset does.
type Category string

const (
	CategoryPixel     Category = "pixel"
	CategoryAffiliate Category = "affiliate"
	CategorySurvey    Category = "survey"
	CategorySupport   Category = "support"
	CategoryAnalytics Category = "analytics"
	CategoryOther     Category = "other"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryPixel, CategoryAffiliate, CategorySurvey,
	CategorySupport, CategoryAnalytics, CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return slices.Contains(Categories, c) }

// RiskLevel is the classifier's assessment of how likely a migration breaks
// something.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	return r == RiskHigh || r == RiskMedium || r == RiskLow
}

// MigrationPath is the suggested replacement mechanism for a legacy script.
type MigrationPath string

const (
	MigrationWebPixel    MigrationPath = "web_pixel"
	MigrationUIExtension MigrationPath = "ui_extension"
	MigrationServerSide  MigrationPath = "server_side"
	MigrationNone        MigrationPath = "none"
)

// Valid reports whether m is a known migration path.
func (m MigrationPath) Valid() bool {
	switch m {
	case MigrationWebPixel, MigrationUIExtension, MigrationServerSide, MigrationNone:
		return true
	}
	return false
}

// Confidence is the classifier's confidence in its own output.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is a known confidence level.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// ScanSource records which scan pass observed an asset.
type ScanSource string

const (
	SourceManual ScanSource = "manual"
	SourceAPI    ScanSource = "api"
)

// ContainerType identifies the tag-management container an asset was
// sourced from. Empty means the script was embedded directly.
type ContainerType string

const (
	ContainerNone    ContainerType = ""
	ContainerGTM     ContainerType = "gtm"
	ContainerSegment ContainerType = "segment"
	ContainerTealium ContainerType = "tealium"
)

// Valid reports whether t is a known container type.
func (t ContainerType) Valid() bool {
	switch t {
	case ContainerNone, ContainerGTM, ContainerSegment, ContainerTealium:
		return true
	}
	return false
}

// Details is the typed extension record carried by every asset.
// The dependency heuristics and the time estimator read it.
type Details struct {
	RequiresPixel     bool          `json:"requires_pixel,omitempty" yaml:"requires_pixel,omitempty"`
	RequiresOrderData bool          `json:"requires_order_data,omitempty" yaml:"requires_order_data,omitempty"`
	OrderTracking     bool          `json:"order_tracking,omitempty" yaml:"order_tracking,omitempty"`
	ContainerType     ContainerType `json:"container_type,omitempty" yaml:"container_type,omitempty"`
	ScriptCount       int           `json:"script_count,omitempty" yaml:"script_count,omitempty"`
	HasCustomConfig   bool          `json:"has_custom_config,omitempty" yaml:"has_custom_config,omitempty"`
	EventMappingCount int           `json:"event_mapping_count,omitempty" yaml:"event_mapping_count,omitempty"`
	Identifiers       []string      `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
}

// FromContainer reports whether the asset was sourced from a tag manager.
func (d Details) FromContainer() bool { return d.ContainerType != ContainerNone }

// PriorityFactors is the per-factor breakdown of a priority score.
// Complexity is the raw complexity (0-20); it enters the score inverted.
type PriorityFactors struct {
	RiskLevel       int `json:"risk_level"`
	Category        int `json:"category"`
	MigrationStatus int `json:"migration_status"`
	Dependency      int `json:"dependency"`
	Complexity      int `json:"complexity"`
}

// TimeEstimateFactors is the per-factor breakdown of a time estimate.
type TimeEstimateFactors struct {
	BaseMinutes             int     `json:"base_minutes"`
	CategoryMultiplier      float64 `json:"category_multiplier"`
	ComplexityMultiplier    float64 `json:"complexity_multiplier"`
	MigrationTypeMultiplier float64 `json:"migration_type_multiplier"`
	MinMinutes              int     `json:"min_minutes"`
	MaxMinutes              int     `json:"max_minutes"`
}

// Asset is the unit of migration.
type Asset struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	Fingerprint string     `json:"fingerprint"`
	Name        string     `json:"name,omitempty"`
	Content     string     `json:"content,omitempty"`
	Source      ScanSource `json:"source,omitempty"`

	Category           Category      `json:"category"`
	Platform           string        `json:"platform,omitempty"`
	RiskLevel          RiskLevel     `json:"risk_level"`
	SuggestedMigration MigrationPath `json:"suggested_migration"`
	Confidence         Confidence    `json:"confidence"`
	Details            Details       `json:"details"`

	Status       Status   `json:"migration_status"`
	Dependencies []string `json:"dependencies"`

	Priority             int                  `json:"priority"`
	PriorityFactors      *PriorityFactors     `json:"priority_factors,omitempty"`
	PriorityReason       string               `json:"priority_reason,omitempty"`
	EstimatedTimeMinutes int                  `json:"estimated_time_minutes"`
	TimeEstimateFactors  *TimeEstimateFactors `json:"time_estimate_factors,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	AnnotatedAt *time.Time `json:"annotated_at,omitempty"`
}

// IsTerminal reports whether the asset is retired from planning.
func (a Asset) IsTerminal() bool { return a.Status.IsTerminal() }

// Candidate is one classified script handed over by the classifier, not
// yet persisted.
type Candidate struct {
	Name               string        `json:"name,omitempty" yaml:"name,omitempty"`
	Content            string        `json:"content" yaml:"content"`
	Source             ScanSource    `json:"source,omitempty" yaml:"source,omitempty"`
	Category           Category      `json:"category" yaml:"category"`
	Platform           string        `json:"platform,omitempty" yaml:"platform,omitempty"`
	RiskLevel          RiskLevel     `json:"risk_level" yaml:"risk_level"`
	SuggestedMigration MigrationPath `json:"suggested_migration" yaml:"suggested_migration"`
	Confidence         Confidence    `json:"confidence" yaml:"confidence"`
	Details            Details       `json:"details" yaml:"details,omitempty"`
	Dependencies       []string      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Annotations are the engine-computed caches written back onto an asset.
// Nil fields are left untouched by the store.
type Annotations struct {
	Dependencies         []string
	Priority             *int
	PriorityFactors      *PriorityFactors
	PriorityReason       *string
	EstimatedTimeMinutes *int
	TimeEstimateFactors  *TimeEstimateFactors
}

// IsEmpty reports whether the annotations would change nothing.
func (a Annotations) IsEmpty() bool {
	return a.Dependencies == nil && a.Priority == nil && a.PriorityFactors == nil &&
		a.PriorityReason == nil && a.EstimatedTimeMinutes == nil && a.TimeEstimateFactors == nil
}
