package notification

// ListActivitiesRequest is the payload for the list-activities service.
// Limit <= 0 returns the whole feed.
type ListActivitiesRequest struct {
	Limit int `json:"limit"`
}

// ListActivitiesResponse carries the feed slice, newest first.
type ListActivitiesResponse struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}
