package models

// Transcript is the cached payload returned by the transcript provider
type Transcript struct {
	Transcript string  `json:"transcript"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
}

// VideoIdentity identifies a transcript request. SessionID is optional.
type VideoIdentity struct {
	VideoID   string `json:"video_id"`
	SessionID string `json:"session_id,omitempty"`
}
