package model

import "time"

// Coordinate is a precise geographic point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate is the (0,0) placeholder.
// Upstream models emit (0,0) when they could not determine a location,
// so it is treated as "missing", not as a point in the Gulf of Guinea.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Citation is a grounding source attached verbatim to results that
// used search or maps grounding. Never generated or rewritten locally.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Hazard is a single environmental health hazard.
type Hazard struct {
	Hazard      string `json:"hazard"`
	Description string `json:"description"`
}

// Disease links a potential disease to the hazards that can cause it.
type Disease struct {
	Name        string   `json:"name"`
	Cause       string   `json:"cause"`
	Precautions []string `json:"precautions"`
}

// Analysis is the structured output of an image analysis.
type Analysis struct {
	Hazards  []Hazard  `json:"hazards"`
	Diseases []Disease `json:"diseases"`
	Summary  string    `json:"summary"`
}

// LocationAnalysis extends Analysis with the identified location name.
type LocationAnalysis struct {
	LocationName string    `json:"locationName"`
	Hazards      []Hazard  `json:"hazards"`
	Diseases     []Disease `json:"diseases"`
	Summary      string    `json:"summary"`
}

// LocationReport is the composed result of a location analysis: the
// mandatory analysis plus an optional generated illustration.
type LocationReport struct {
	Analysis LocationAnalysis `json:"analysis"`
	// Image is the raw generated image, nil when generation failed or
	// returned nothing. A missing image never fails the report.
	Image     []byte `json:"image,omitempty"`
	ImageMIME string `json:"imageMime,omitempty"`
}

// Medicine is one prescribed medicine with its dosage instructions.
type Medicine struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

// Prescription is the structured output of a prescription analysis.
type Prescription struct {
	Summary     string     `json:"summary"`
	Medicines   []Medicine `json:"medicines"`
	Precautions []string   `json:"precautions"`
}

// RiskLevel grades a forecast risk factor.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// RiskFactor is one graded risk in a daily health forecast.
type RiskFactor struct {
	Name        string    `json:"name"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
}

// HealthForecast is a daily health outlook for a location.
type HealthForecast struct {
	LocationName    string       `json:"locationName"`
	Summary         string       `json:"summary"`
	RiskFactors     []RiskFactor `json:"riskFactors"`
	Recommendations []string     `json:"recommendations"`
}

// Concern is a non-diagnostic area of reflection.
type Concern struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// CopingStrategy is a suggested wellness practice.
type CopingStrategy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Reflection is the structured output of a mental-health check-in.
// Deliberately framed as reflection, never as a diagnosis.
type Reflection struct {
	Summary           string           `json:"summary"`
	PotentialConcerns []Concern        `json:"potentialConcerns"`
	CopingStrategies  []CopingStrategy `json:"copingStrategies"`
	Recommendation    string           `json:"recommendation"`
}

// PotentialCondition is a common condition a clinician might consider.
type PotentialCondition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SymptomReport is the structured output of a symptom triage.
type SymptomReport struct {
	Summary              string               `json:"summary"`
	TriageRecommendation string               `json:"triageRecommendation"`
	PotentialConditions  []PotentialCondition `json:"potentialConditions"`
	NextSteps            []string             `json:"nextSteps"`
	Disclaimer           string               `json:"disclaimer"`
}

// Page identifies a navigable section of the app. The chatbot router
// only ever emits pages from the enumeration supplied by the caller.
type Page string

// BotAction is what the chatbot decided to do with a request.
type BotAction string

const (
	ActionNavigate BotAction = "navigate"
	ActionSpeak    BotAction = "speak"
)

// BotCommand is the routing decision for one free-text request.
type BotCommand struct {
	Action       BotAction `json:"action"`
	Page         Page      `json:"page,omitempty"`
	ResponseText string    `json:"responseText"`
}

// GeocodeResult resolves a free-text place description.
type GeocodeResult struct {
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	FoundLocationName string  `json:"foundLocationName"`
}

// Coordinate returns the resolved point.
func (g GeocodeResult) Coordinate() Coordinate {
	return Coordinate{Lat: g.Lat, Lng: g.Lng}
}

// FacilityType is the kind of medical facility.
type FacilityType string

const (
	FacilityHospital FacilityType = "Hospital"
	FacilityClinic   FacilityType = "Clinic"
	FacilityPharmacy FacilityType = "Pharmacy"
)

// Facility is one nearby medical facility. Lat/Lng are always real,
// non-zero coordinates; entries the upstream could not locate are
// filtered out before results leave the orchestrator.
type Facility struct {
	Name string       `json:"name"`
	Type FacilityType `json:"type"`
	Lat  float64      `json:"lat"`
	Lng  float64      `json:"lng"`
	// DistanceKm from the query coordinate, filled by the orchestrator.
	DistanceKm float64 `json:"distanceKm"`
}

// AlertCategory classifies a public-health alert.
type AlertCategory string

const (
	CategoryDisease       AlertCategory = "disease"
	CategoryAir           AlertCategory = "air"
	CategoryHeat          AlertCategory = "heat"
	CategoryEnvironmental AlertCategory = "environmental"
	CategoryOther         AlertCategory = "other"
)

// AlertScope distinguishes global surveillance from local alerts.
type AlertScope string

const (
	ScopeGlobal AlertScope = "global"
	ScopeLocal  AlertScope = "local"
)

// Alert is one public-health event from grounded retrieval.
type Alert struct {
	ID              string        `json:"id"`
	FetchedAt       time.Time     `json:"fetchedAt"`
	Title           string        `json:"title"`
	Location        string        `json:"location"`
	Country         string        `json:"country"`
	LocationDetails string        `json:"locationDetails,omitempty"`
	Category        AlertCategory `json:"category"`
	DetailedInfo    string        `json:"detailedInfo"`
	ThreatAnalysis  string        `json:"threatAnalysis"`
	// Lat/Lng may be absent when neither the model nor the geocoding
	// repair could place the event. The textual Location remains.
	Lat       *float64   `json:"lat,omitempty"`
	Lng       *float64   `json:"lng,omitempty"`
	Sources   []Citation `json:"sources"`
	Scope     AlertScope `json:"scope"`
}

// Trend is the recent direction of reported cases for a disease.
type Trend string

const (
	TrendIncreasing Trend = "Increasing"
	TrendStable     Trend = "Stable"
	TrendDecreasing Trend = "Decreasing"
	TrendUnknown    Trend = "Unknown"
)

// DiseaseReport is one disease entry in a city health snapshot.
// ReportedCases and AffectedDemographics are descriptive strings on
// purpose: the structuring step preserves "unknown/approximate"
// phrasing instead of inventing precise figures.
type DiseaseReport struct {
	Name                 string `json:"name"`
	Summary              string `json:"summary"`
	ReportedCases        string `json:"reportedCases"`
	AffectedDemographics string `json:"affectedDemographics"`
	Trend                Trend  `json:"trend"`
}

// CitySnapshot is a grounded public-health snapshot for one city.
type CitySnapshot struct {
	CityName       string          `json:"cityName"`
	Country        string          `json:"country"`
	LastUpdated    string          `json:"lastUpdated"`
	OverallSummary string          `json:"overallSummary"`
	Diseases       []DiseaseReport `json:"diseases"`
	DataDisclaimer string          `json:"dataDisclaimer"`
	Sources        []Citation      `json:"sources"`
}
