package extraction

// Wire payloads for the backend endpoints. Field names follow the backend
// contract, not Go conventions.

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	ContentType string   `json:"content_type"`
	Tags        []string `json:"tags"`
	RawContent  string   `json:"raw_content"`
	Error       string   `json:"error,omitempty"`
}

type refineRequest struct {
	Text string `json:"text"`
}

type probeRequest struct {
	URL string `json:"url"`
}

type probeResponse struct {
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type queueRequest struct {
	URL string `json:"url"`
}

type queueResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId"`
	Error     string `json:"error,omitempty"`
}

type queueStatusRequest struct {
	RequestID string `json:"requestId"`
}

type queueStatusResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	VideoURL  string `json:"videoUrl"`
	CreatedAt string `json:"createdAt"`
	Data      struct {
		Metadata struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			Tags        []string `json:"tags"`
			Thumbnail   string   `json:"thumbnail"`
		} `json:"metadata"`
		Content string `json:"content"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

type tagLookupRequest struct {
	TagName string `json:"tagName"`
}

type tagLookupResponse struct {
	Success bool   `json:"success"`
	Found   bool   `json:"found"`
	TagID   string `json:"tagId,omitempty"`
}

type tagCreateRequest struct {
	TagName     string `json:"tagName"`
	ColorCode   string `json:"colorCode"`
	Description string `json:"description"`
}

type tagCreateResponse struct {
	Success bool   `json:"success"`
	TagID   string `json:"tagId"`
}

type uploadResponse struct {
	FileURL      string `json:"fileUrl"`
	OriginalName string `json:"originalName"`
	FileType     string `json:"fileType"`
}

type storeImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

type storeImageResponse struct {
	Success bool   `json:"success"`
	FileURL string `json:"fileUrl"`
}

type createRecordResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}
