package risk

// Feature names must match the strings the classifier was trained with,
// including the long free-text history column.
const (
	FeatureCompressionTime = "Compressiontime"
	FeatureNitroglycerin   = "Intraoperativenitroglycerindose"
	FeatureRadialDiameter  = "PreRaddiam"
	FeatureSheathRatio     = "SRratio"
	FeatureHeparin         = "Heparincategory"
	FeaturePuncture        = "Punctureattempts"
	FeaturePriorCath       = "History of prior radial artery catheterization"
)

// Record is one assembled feature row. The diameter is held in centimeters;
// the assembler converts from the millimeter form input.
type Record struct {
	CompressionTime      float64 // minutes
	NitroglycerinDose    float64 // micrograms
	RadialDiameterCM     float64
	SheathRatio          float64
	HeparinCategory      int
	PunctureAttempts     int
	PriorCatheterization int
}

// FeatureNames returns the training-time column order.
func FeatureNames() []string {
	return []string{
		FeatureCompressionTime,
		FeatureNitroglycerin,
		FeatureRadialDiameter,
		FeatureSheathRatio,
		FeatureHeparin,
		FeaturePuncture,
		FeaturePriorCath,
	}
}

// NumericFeatureNames returns the four continuous features that get
// standardized. Categorical codes pass through unscaled.
func NumericFeatureNames() []string {
	return []string{
		FeatureCompressionTime,
		FeatureNitroglycerin,
		FeatureRadialDiameter,
		FeatureSheathRatio,
	}
}

func (r Record) Vector() []float64 {
	return []float64{
		r.CompressionTime,
		r.NitroglycerinDose,
		r.RadialDiameterCM,
		r.SheathRatio,
		float64(r.HeparinCategory),
		float64(r.PunctureAttempts),
		float64(r.PriorCatheterization),
	}
}
