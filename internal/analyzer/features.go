package analyzer

// Features holds the objective mix indicators extracted from one recording.
// SpectralSpread is a spectral-contrast proxy for perceived width: low values
// mean a narrow field, high values a wide one.
type Features struct {
	Loudness       float64
	Peak           float64
	SpectralSpread float64
	Low            float64
	Mid            float64
	High           float64
}
