package models

// SkyCondition is the coarse weather proxy derived from the camera image.
type SkyCondition string

const (
	SkyClear    SkyCondition = "CLEAR"
	SkyCloudy   SkyCondition = "CLOUDY"
	SkyOvercast SkyCondition = "OVERCAST"
	// SkyUnknown means the image could not be fetched or decoded.
	SkyUnknown SkyCondition = "UNKNOWN"
)

// Label returns the human-readable text shown next to the camera image.
func (c SkyCondition) Label() string {
	switch c {
	case SkyClear:
		return "Clear"
	case SkyCloudy:
		return "Cloudy"
	case SkyOvercast:
		return "Overcast / rain likely"
	default:
		return "Unknown"
	}
}

// SkyStats are the HSV means of the sky region.
type SkyStats struct {
	Brightness float64 `json:"brightness"` // V, 0..255
	Saturation float64 `json:"saturation"` // S, 0..255
	Hue        float64 `json:"hue"`        // H, 0..180
}

// SkyResult is the outcome of one classification call.
type SkyResult struct {
	Condition   SkyCondition `json:"condition"`
	Stats       *SkyStats    `json:"stats,omitempty"`
	Error       string       `json:"error,omitempty"`
	Image       []byte       `json:"-"`
	ContentType string       `json:"-"`
}

// Label renders the result the way the dashboard shows it.
func (r SkyResult) Label() string {
	if r.Condition == SkyUnknown && r.Error != "" {
		return "Sky detection failed: " + r.Error
	}
	return r.Condition.Label()
}
