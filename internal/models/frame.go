package models

// Frame is everything the display needs for one simulation step.
type Frame struct {
	Iteration    int           `json:"iteration"`
	Total        int           `json:"total"`
	Reading      SensorReading `json:"reading"`
	Sky          SkyCondition  `json:"sky"`
	SkyLabel     string        `json:"sky_label"`
	Decision     PumpDecision  `json:"decision"`
	StatusLabel  string        `json:"status_label"`
	StatusColor  string        `json:"status_color"`
	Series       TimeSeries    `json:"series"`
	Image        *FrameImage   `json:"image,omitempty"`
	ImageWarning string        `json:"image_warning,omitempty"`
	Progress     int           `json:"progress"` // 0..100
	Elapsed      string        `json:"elapsed"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// FrameImage carries the camera capture shown with a frame.
type FrameImage struct {
	ContentType string `json:"content_type"`
	DataBase64  string `json:"data_base64"`
}

// ProgressReset is sent once the loop has finished.
type ProgressReset struct {
	Progress int    `json:"progress"`
	Elapsed  string `json:"elapsed"`
}
