package photo

import "time"

// PhotoMetaDTO is the wire representation of a photo record.
type PhotoMetaDTO struct {
	ID            string    `json:"id"`
	OriginalName  string    `json:"original_name"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	MD5           string    `json:"md5"`
	UploaderID    string    `json:"uploader_id"`
	Category      string    `json:"category,omitempty"`
	Description   string    `json:"description,omitempty"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
	LastAccessAt  time.Time `json:"last_access_at"`
	DownloadCount int64     `json:"download_count"`
	Deleted       bool      `json:"deleted"`
	Thumbnails    []string  `json:"thumbnails,omitempty"`
	Compressed    bool      `json:"compressed"`
}

// UploadPhotoRequest is the payload for the upload-photo service.
type UploadPhotoRequest struct {
	Name        string `json:"name"`
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	UploaderID  string `json:"uploader_id"`
}

// UploadPhotoResponse reports the stored record. Duplicate is true when
// identical content already existed for this uploader and no new blob
// was written.
type UploadPhotoResponse struct {
	Photo     PhotoMetaDTO `json:"photo"`
	Duplicate bool         `json:"duplicate"`
}

// BatchUploadRequest is the payload for the batch-upload service.
type BatchUploadRequest struct {
	UploaderID string       `json:"uploader_id"`
	Category   string       `json:"category,omitempty"`
	Items      []UploadItem `json:"items"`
}

// UploadItem is one file inside a batch upload.
type UploadItem struct {
	Name        string `json:"name"`
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// BatchItemResult is the per-file outcome of a batch upload.
type BatchItemResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	PhotoID string `json:"photo_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchUploadResponse aggregates the per-file results.
type BatchUploadResponse struct {
	BatchID   string            `json:"batch_id"`
	Results   []BatchItemResult `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// DownloadPhotoRequest is the payload for the download-photo service.
// Variant selects the blob: "" for the original, "compressed" for the
// compressed rendition, or a thumbnail label such as "150".
type DownloadPhotoRequest struct {
	PhotoID     string `json:"photo_id"`
	RequesterID string `json:"requester_id"`
	Variant     string `json:"variant,omitempty"`
}

// DownloadPhotoResponse carries the blob and its descriptor.
type DownloadPhotoResponse struct {
	Name        string       `json:"name"`
	ContentType string       `json:"content_type"`
	Data        []byte       `json:"data"`
	Photo       PhotoMetaDTO `json:"photo"`
}

// GetPhotoMetaRequest is the payload for the get-photo-meta service.
type GetPhotoMetaRequest struct {
	PhotoID     string `json:"photo_id"`
	RequesterID string `json:"requester_id"`
}

// DeletePhotoRequest is the payload for the delete-photo service.
type DeletePhotoRequest struct {
	PhotoID     string `json:"photo_id"`
	RequesterID string `json:"requester_id"`
}

// DeletePhotoResponse reports the outcome of a soft delete.
type DeletePhotoResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// RestorePhotoRequest is the payload for the restore-photo service.
type RestorePhotoRequest struct {
	PhotoID     string `json:"photo_id"`
	RequesterID string `json:"requester_id"`
}

// ListPhotosRequest is the payload for the list-photos service. Empty
// uploader or category match everything; page and page_size must both be
// positive.
type ListPhotosRequest struct {
	UploaderID string `json:"uploader_id,omitempty"`
	Category   string `json:"category,omitempty"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// ListPhotosResponse is one page of photos plus the total match count.
type ListPhotosResponse struct {
	Photos []PhotoMetaDTO `json:"photos"`
	Total  int            `json:"total"`
}

// SearchPhotosRequest is the payload for the search-photos service.
type SearchPhotosRequest struct {
	UploaderID string `json:"uploader_id,omitempty"`
	Name       string `json:"name"`
}

// PhotoStatsRequest is the payload for the photo-stats service.
type PhotoStatsRequest struct {
	UploaderID string `json:"uploader_id,omitempty"`
}

// PhotoStatsResponse summarizes a user's live photos.
type PhotoStatsResponse struct {
	TotalFiles int   `json:"total_files"`
	TotalSize  int64 `json:"total_size"`
	ImageFiles int   `json:"image_files"`
}

// GrantAccessRequest is the payload for the grant-access service. The
// granter must own the photo or hold a manage grant on it.
type GrantAccessRequest struct {
	PhotoID    string `json:"photo_id"`
	GranterID  string `json:"granter_id"`
	GranteeID  string `json:"grantee_id"`
	Level      string `json:"level"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

// GrantAccessResponse reports the effective grant.
type GrantAccessResponse struct {
	PhotoID   string    `json:"photo_id"`
	GranteeID string    `json:"grantee_id"`
	Level     string    `json:"level"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AttachDerivativeRequest is the payload for the attach-derivative
// service, called by the imaging pipeline. Kind is "compressed" or a
// thumbnail label ("150", "300", "600"). OriginalWidth/OriginalHeight
// record the source dimensions when positive.
type AttachDerivativeRequest struct {
	PhotoID        string `json:"photo_id"`
	Kind           string `json:"kind"`
	Data           []byte `json:"data"`
	ContentType    string `json:"content_type"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OriginalWidth  int    `json:"original_width,omitempty"`
	OriginalHeight int    `json:"original_height,omitempty"`
}

// AttachDerivativeResponse reports where the derivative was stored.
type AttachDerivativeResponse struct {
	PhotoID     string `json:"photo_id"`
	Kind        string `json:"kind"`
	StorageName string `json:"storage_name"`
}
