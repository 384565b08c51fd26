package imaging

import (
	"context"
	"fmt"
	"image"
	"log"
	"strconv"
	"time"

	"github.com/example/task-admin/events"
	"github.com/example/task-admin/modules/photo"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// photoClient is the slice of the photo services the pipeline needs.
type photoClient interface {
	Download(ctx context.Context, req *photo.DownloadPhotoRequest) (*photo.DownloadPhotoResponse, error)
	AttachDerivative(ctx context.Context, req *photo.AttachDerivativeRequest) (*photo.AttachDerivativeResponse, error)
}

// ImagingModule consumes photo upload events and produces derivatives
// in the background. Processing failures are logged, never surfaced to
// the uploader.
type ImagingModule struct {
	config        PoolConfig
	watermarkText string
	pool          *Pool
	photos        photoClient
	eventBus      mono.EventBus
}

var _ mono.Module = (*ImagingModule)(nil)
var _ mono.DependentModule = (*ImagingModule)(nil)
var _ mono.EventConsumerModule = (*ImagingModule)(nil)
var _ mono.EventEmitterModule = (*ImagingModule)(nil)
var _ mono.HealthCheckableModule = (*ImagingModule)(nil)

// NewModule creates the imaging module. workers <= 0 selects the
// default pool size. watermarkText empty disables watermarking.
func NewModule(workers int, watermarkText string) *ImagingModule {
	cfg := DefaultPoolConfig()
	if workers > 0 {
		cfg.NumWorkers = workers
	}
	return &ImagingModule{
		config:        cfg,
		watermarkText: watermarkText,
	}
}

// Name returns the module name.
func (m *ImagingModule) Name() string {
	return "imaging"
}

// Dependencies declares the modules this module needs services from.
func (m *ImagingModule) Dependencies() []string {
	return []string{"photo"}
}

// SetDependencyServiceContainer receives the photo module's container.
func (m *ImagingModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "photo" {
		m.photos = photo.NewPhotoAdapter(container)
	}
}

// SetEventBus receives the event bus from the framework.
func (m *ImagingModule) SetEventBus(eventBus mono.EventBus) {
	m.eventBus = eventBus
}

// EmitEvents declares the events this module publishes.
func (m *ImagingModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.PhotoProcessedV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes to upload events.
func (m *ImagingModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.PhotoUploadedV1, m.handlePhotoUploaded, m); err != nil {
		return fmt.Errorf("failed to register PhotoUploaded consumer: %w", err)
	}

	log.Printf("[imaging] Registered event consumers: PhotoUploaded")
	return nil
}

// Init builds the worker pool.
func (m *ImagingModule) Init(_ mono.ServiceContainer) error {
	m.pool = NewPool(m.config, m.process)
	log.Println("[imaging] Worker pool initialized")
	return nil
}

// Start starts the worker pool.
func (m *ImagingModule) Start(ctx context.Context) error {
	if m.photos == nil {
		return fmt.Errorf("photo services not available, dependency injection failed")
	}
	if err := m.pool.Start(ctx); err != nil {
		return err
	}
	log.Println("[imaging] Module started")
	return nil
}

// Stop stops the worker pool gracefully.
func (m *ImagingModule) Stop(ctx context.Context) error {
	if err := m.pool.Stop(ctx); err != nil {
		return err
	}
	log.Println("[imaging] Module stopped")
	return nil
}

// Health reports pool state and queue pressure.
func (m *ImagingModule) Health(_ context.Context) mono.HealthStatus {
	if m.pool == nil || !m.pool.IsRunning() {
		return mono.HealthStatus{
			Healthy: false,
			Message: "worker pool is not running",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "imaging pipeline is running",
		Details: map[string]any{
			"workers":     m.config.NumWorkers,
			"queue_depth": m.pool.QueueDepth(),
			"dropped":     m.pool.Dropped(),
		},
	}
}

func (m *ImagingModule) handlePhotoUploaded(_ context.Context, event events.PhotoUploadedEvent, _ *mono.Msg) error {
	job := Job{
		PhotoID:     event.PhotoID,
		UploaderID:  event.UploaderID,
		ContentType: event.ContentType,
	}
	if !m.pool.Enqueue(job) {
		log.Printf("[imaging] Queue full, dropping job for photo ID=%s", event.PhotoID)
		return nil
	}
	log.Printf("[imaging] Queued photo ID=%s for processing", event.PhotoID)
	return nil
}

// process runs one photo through the pipeline: fetch the original,
// produce a compressed rendition when it exceeds the limits, and always
// produce the thumbnail set.
func (m *ImagingModule) process(ctx context.Context, job Job) {
	resp, err := m.photos.Download(ctx, &photo.DownloadPhotoRequest{
		PhotoID:     job.PhotoID,
		RequesterID: job.UploaderID,
	})
	if err != nil {
		log.Printf("[imaging] Failed to fetch photo ID=%s: %v", job.PhotoID, err)
		return
	}

	width, height, format, err := probeDimensions(resp.Data)
	if err != nil {
		log.Printf("[imaging] Skipping photo ID=%s: %v", job.PhotoID, err)
		return
	}
	img, _, err := decodeImage(resp.Data)
	if err != nil {
		log.Printf("[imaging] Skipping photo ID=%s: %v", job.PhotoID, err)
		return
	}

	compressed := false
	if needsCompression(len(resp.Data), width, height) {
		if err := m.attachCompressed(ctx, job.PhotoID, img, format, width, height); err != nil {
			log.Printf("[imaging] Failed to compress photo ID=%s: %v", job.PhotoID, err)
		} else {
			compressed = true
		}
	}

	thumbnails := make([]string, 0, len(ThumbnailSizes))
	for _, size := range ThumbnailSizes {
		label := strconv.Itoa(size)
		if err := m.attachThumbnail(ctx, job.PhotoID, img, format, width, height, size); err != nil {
			log.Printf("[imaging] Failed to build %s thumbnail for photo ID=%s: %v", label, job.PhotoID, err)
			continue
		}
		thumbnails = append(thumbnails, label)
	}

	m.publishProcessed(job.PhotoID, thumbnails, compressed)
	log.Printf("[imaging] Processed photo ID=%s: thumbnails=%d, compressed=%t", job.PhotoID, len(thumbnails), compressed)
}

func (m *ImagingModule) attachCompressed(ctx context.Context, photoID string, img image.Image, format string, width, height int) error {
	w, h := fitWithin(width, height, MaxDimension, MaxDimension)
	rendition := resize(img, w, h)
	applyWatermark(rendition, m.watermarkText)
	data, contentType, err := encodeImage(rendition, format)
	if err != nil {
		return err
	}
	_, err = m.photos.AttachDerivative(ctx, &photo.AttachDerivativeRequest{
		PhotoID:        photoID,
		Kind:           "compressed",
		Data:           data,
		ContentType:    contentType,
		Width:          w,
		Height:         h,
		OriginalWidth:  width,
		OriginalHeight: height,
	})
	return err
}

func (m *ImagingModule) attachThumbnail(ctx context.Context, photoID string, img image.Image, format string, width, height, size int) error {
	w, h := fitWithin(width, height, size, size)
	data, contentType, err := encodeImage(resize(img, w, h), format)
	if err != nil {
		return err
	}
	_, err = m.photos.AttachDerivative(ctx, &photo.AttachDerivativeRequest{
		PhotoID:        photoID,
		Kind:           strconv.Itoa(size),
		Data:           data,
		ContentType:    contentType,
		Width:          w,
		Height:         h,
		OriginalWidth:  width,
		OriginalHeight: height,
	})
	return err
}

func (m *ImagingModule) publishProcessed(photoID string, thumbnails []string, compressed bool) {
	if m.eventBus == nil {
		log.Printf("[imaging] Warning: event bus not available, skipping PhotoProcessed event for photo ID=%s", photoID)
		return
	}
	event := events.PhotoProcessedEvent{
		PhotoID:     photoID,
		Thumbnails:  thumbnails,
		Compressed:  compressed,
		ProcessedAt: time.Now(),
	}
	if err := events.PhotoProcessedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[imaging] Warning: failed to publish PhotoProcessed event for photo ID=%s: %v", photoID, err)
	}
}
