// Package waterdata names the columns of the water pollution and disease
// dataset that the charts and reports reference.
package waterdata

// Identifiers, used as group-by keys.
const (
	Country         = "Country"
	Region          = "Region"
	Year            = "Year"
	WaterSourceType = "Water Source Type"
	TreatmentMethod = "Water Treatment Method"
)

// Water-quality metrics.
const (
	ContaminantLevel  = "Contaminant Level (ppm)"
	PH                = "pH Level"
	Turbidity         = "Turbidity (NTU)"
	DissolvedOxygen   = "Dissolved Oxygen (mg/L)"
	NitrateLevel      = "Nitrate Level (mg/L)"
	LeadConcentration = "Lead Concentration (µg/L)"
	BacteriaCount     = "Bacteria Count (CFU/mL)"
)

// Disease outcomes.
const (
	DiarrhealCases = "Diarrheal Cases per 100,000 people"
	CholeraCases   = "Cholera Cases per 100,000 people"
	TyphoidCases   = "Typhoid Cases per 100,000 people"
)

// Socioeconomic covariates.
const (
	GDPPerCapita        = "GDP per Capita (USD)"
	HealthcareAccess    = "Healthcare Access Index (0-100)"
	SanitationCoverage  = "Sanitation Coverage (% of Population)"
	CleanWaterAccess    = "Access to Clean Water (% of Population)"
	InfantMortalityRate = "Infant Mortality Rate (per 1,000 live births)"
)

// DiseaseColumns returns the disease outcome columns in display order.
func DiseaseColumns() []string {
	return []string{DiarrhealCases, CholeraCases, TyphoidCases}
}

// QualityColumns returns the water-quality metric columns in display order.
func QualityColumns() []string {
	return []string{ContaminantLevel, PH, Turbidity, DissolvedOxygen, NitrateLevel, LeadConcentration, BacteriaCount}
}

// ShortName maps a column to a compact legend label.
func ShortName(col string) string {
	if s, ok := shortNames[col]; ok {
		return s
	}
	return col
}

var shortNames = map[string]string{
	DiarrhealCases:      "Diarrheal",
	CholeraCases:        "Cholera",
	TyphoidCases:        "Typhoid",
	InfantMortalityRate: "Infant Mortality",
	ContaminantLevel:    "Contaminant (ppm)",
	PH:                  "pH",
	Turbidity:           "Turbidity (NTU)",
	DissolvedOxygen:     "Dissolved O2 (mg/L)",
	NitrateLevel:        "Nitrate (mg/L)",
	LeadConcentration:   "Lead (µg/L)",
	BacteriaCount:       "Bacteria (CFU/mL)",
}
