package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// PhotoUploadedEvent is emitted after an image upload is accepted. The
// imaging pipeline consumes it to produce thumbnails and a compressed
// variant asynchronously.
type PhotoUploadedEvent struct {
	PhotoID     string    `json:"photo_id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploaderID  string    `json:"uploader_id"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// PhotoUploadedV1 is the typed event definition for accepted uploads.
// Subject: events.photo.v1.photo-uploaded
var PhotoUploadedV1 = helper.EventDefinition[PhotoUploadedEvent](
	"photo", "PhotoUploaded", "v1",
)

// PhotoProcessedEvent is emitted after the imaging pipeline finishes a
// photo, whether or not every derivative succeeded.
type PhotoProcessedEvent struct {
	PhotoID     string    `json:"photo_id"`
	Thumbnails  []string  `json:"thumbnails"`
	Compressed  bool      `json:"compressed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// PhotoProcessedV1 is the typed event definition for finished processing.
// Subject: events.imaging.v1.photo-processed
var PhotoProcessedV1 = helper.EventDefinition[PhotoProcessedEvent](
	"imaging", "PhotoProcessed", "v1",
)
