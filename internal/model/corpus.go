package model

// CaptionRecord is one entry of the caption corpus: an image plus the caption
// and phase label the captioning stage assigned to it.
type CaptionRecord struct {
	Image            string `json:"image"`      // file name, also the corpus identifier
	ImagePath        string `json:"image_path"` // stored absolute path, may be stale
	Phase            string `json:"phase"`
	CategoryID       string `json:"category_id"` // material directory, used for path reconstruction
	InitialCaption   string `json:"initial_caption"`
	GrowthPercentage *int   `json:"growth_percentage,omitempty"`
}
