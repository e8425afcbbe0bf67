package dto

// VideoUpdateRequest represents fields that can be updated for a video item.
// Pointer fields distinguish an omitted field (nil) from an explicit empty value.
type VideoUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// AcceptedResponse acknowledges an asynchronous operation
type AcceptedResponse struct {
	Success   bool   `json:"success"`
	Operation string `json:"operation"`
	VideoID   int64  `json:"video_id,omitempty"`
	Message   string `json:"message"`
}

// Res is the generic error envelope used by middleware
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}
