package domain

// Track is one row of the tracks catalog.
type Track struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	FileURL string `json:"file_url"`
}

// FreqBalance is the mean magnitude split across the three analysis bands.
type FreqBalance struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// FeedbackRecord is the persisted result of one analysis pass. Field tags
// follow the existing feedback table: loudness_db and peak_db hold linear
// amplitude, stereo_width holds the spectral spread proxy.
type FeedbackRecord struct {
	TrackID        string      `json:"track_id"`
	Loudness       float64     `json:"loudness_db"`
	Peak           float64     `json:"peak_db"`
	SpectralSpread float64     `json:"stereo_width"`
	FreqBalance    FreqBalance `json:"freq_balance"`
	Notes          string      `json:"ai_notes"`
}
