package photo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/task-admin/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jaevor/go-nanoid"
)

// StoreKind selects the blob storage backend.
const (
	StoreDisk      = "disk"
	StoreJetStream = "jetstream"
)

// PhotoModule provides the photo services over a pluggable object store.
type PhotoModule struct {
	storeKind string
	dir       string
	natsURL   string
	bucket    string

	store    ObjectStore
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*PhotoModule)(nil)
var _ mono.ServiceProviderModule = (*PhotoModule)(nil)
var _ mono.EventEmitterModule = (*PhotoModule)(nil)
var _ mono.HealthCheckableModule = (*PhotoModule)(nil)

// NewModule creates a new PhotoModule. storeKind is StoreDisk or
// StoreJetStream; dir is the disk directory, natsURL the JetStream
// endpoint.
func NewModule(storeKind, dir, natsURL string) *PhotoModule {
	return &PhotoModule{
		storeKind: storeKind,
		dir:       dir,
		natsURL:   natsURL,
		bucket:    "photos",
	}
}

// Name returns the module name.
func (m *PhotoModule) Name() string {
	return "photo"
}

// SetEventBus receives the application event bus.
func (m *PhotoModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *PhotoModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.PhotoUploadedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *PhotoModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "upload-photo", json.Unmarshal, json.Marshal, m.uploadPhoto,
	); err != nil {
		return fmt.Errorf("failed to register upload-photo service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "batch-upload", json.Unmarshal, json.Marshal, m.batchUpload,
	); err != nil {
		return fmt.Errorf("failed to register batch-upload service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "download-photo", json.Unmarshal, json.Marshal, m.downloadPhoto,
	); err != nil {
		return fmt.Errorf("failed to register download-photo service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-photo-meta", json.Unmarshal, json.Marshal, m.getPhotoMeta,
	); err != nil {
		return fmt.Errorf("failed to register get-photo-meta service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-photo", json.Unmarshal, json.Marshal, m.deletePhoto,
	); err != nil {
		return fmt.Errorf("failed to register delete-photo service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "restore-photo", json.Unmarshal, json.Marshal, m.restorePhoto,
	); err != nil {
		return fmt.Errorf("failed to register restore-photo service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-photos", json.Unmarshal, json.Marshal, m.listPhotos,
	); err != nil {
		return fmt.Errorf("failed to register list-photos service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "search-photos", json.Unmarshal, json.Marshal, m.searchPhotos,
	); err != nil {
		return fmt.Errorf("failed to register search-photos service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "photo-stats", json.Unmarshal, json.Marshal, m.photoStats,
	); err != nil {
		return fmt.Errorf("failed to register photo-stats service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "grant-access", json.Unmarshal, json.Marshal, m.grantAccess,
	); err != nil {
		return fmt.Errorf("failed to register grant-access service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "attach-derivative", json.Unmarshal, json.Marshal, m.attachDerivative,
	); err != nil {
		return fmt.Errorf("failed to register attach-derivative service: %w", err)
	}

	log.Printf("[photo] Registered services: upload-photo, batch-upload, download-photo, get-photo-meta, delete-photo, restore-photo, list-photos, search-photos, photo-stats, grant-access, attach-derivative")
	return nil
}

// Start builds the configured object store and the service on top of it.
func (m *PhotoModule) Start(ctx context.Context) error {
	switch m.storeKind {
	case StoreJetStream:
		store, err := NewJetStreamObjectStore(m.natsURL, m.bucket)
		if err != nil {
			return fmt.Errorf("failed to create object store: %w", err)
		}
		if err := store.Init(ctx); err != nil {
			store.Close()
			return fmt.Errorf("failed to initialize object store: %w", err)
		}
		m.store = store
		log.Printf("[photo] Using JetStream object store (NATS: %s, bucket: %s)", m.natsURL, m.bucket)
	case StoreDisk, "":
		store, err := NewDiskObjectStore(m.dir)
		if err != nil {
			return fmt.Errorf("failed to create object store: %w", err)
		}
		m.store = store
		log.Printf("[photo] Using disk object store at %s", m.dir)
	default:
		return fmt.Errorf("unknown photo store kind: %q", m.storeKind)
	}

	batchID, err := nanoid.Standard(8)
	if err != nil {
		return fmt.Errorf("failed to create batch id generator: %w", err)
	}
	m.service = NewService(m.store, batchID)

	log.Println("[photo] Module started successfully")
	return nil
}

// Stop releases the storage backend.
func (m *PhotoModule) Stop(_ context.Context) error {
	if js, ok := m.store.(*JetStreamObjectStore); ok {
		log.Println("[photo] Closing NATS connection...")
		return js.Close()
	}
	return nil
}

// Health performs a health check on the storage backend.
func (m *PhotoModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "object store not initialized",
		}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("object store unavailable: %v", err),
		}
	}

	stats := m.service.Stats("")
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend":     m.store.Kind(),
			"total_files": stats.TotalFiles,
			"total_size":  stats.TotalSize,
		},
	}
}

// publishUploaded emits PhotoUploaded for a freshly stored image.
func (m *PhotoModule) publishUploaded(meta *PhotoMeta) {
	if m.eventBus == nil || !isImage(meta.ContentType) {
		return
	}
	event := events.PhotoUploadedEvent{
		PhotoID:     meta.ID,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		UploaderID:  meta.UploaderID,
		UploadedAt:  meta.UploadedAt,
	}
	if err := events.PhotoUploadedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[photo] Warning: failed to publish PhotoUploaded event for %s: %v", meta.ID, err)
	}
}

// uploadPhoto handles the photo.upload-photo service request.
func (m *PhotoModule) uploadPhoto(ctx context.Context, req UploadPhotoRequest, _ *mono.Msg) (UploadPhotoResponse, error) {
	meta, duplicate, err := m.service.Upload(ctx, req)
	if err != nil {
		return UploadPhotoResponse{}, err
	}

	if duplicate {
		log.Printf("[photo] Duplicate upload from %s, reusing photo %s", req.UploaderID, meta.ID)
	} else {
		log.Printf("[photo] Stored photo %s (%s, %d bytes)", meta.ID, meta.ContentType, meta.Size)
		m.publishUploaded(meta)
	}

	return UploadPhotoResponse{Photo: toPhotoDTO(meta), Duplicate: duplicate}, nil
}

// batchUpload handles the photo.batch-upload service request.
func (m *PhotoModule) batchUpload(ctx context.Context, req BatchUploadRequest, _ *mono.Msg) (BatchUploadResponse, error) {
	resp, created, err := m.service.BatchUpload(ctx, req)
	if err != nil {
		return BatchUploadResponse{}, err
	}

	for _, meta := range created {
		m.publishUploaded(meta)
	}

	log.Printf("[photo] Batch %s done: %d succeeded, %d failed", resp.BatchID, resp.Succeeded, resp.Failed)
	return *resp, nil
}

// downloadPhoto handles the photo.download-photo service request.
func (m *PhotoModule) downloadPhoto(ctx context.Context, req DownloadPhotoRequest, _ *mono.Msg) (DownloadPhotoResponse, error) {
	result, err := m.service.Download(ctx, req)
	if err != nil {
		return DownloadPhotoResponse{}, err
	}
	return DownloadPhotoResponse{
		Name:        result.Name,
		ContentType: result.ContentType,
		Data:        result.Data,
		Photo:       toPhotoDTO(result.Meta),
	}, nil
}

// getPhotoMeta handles the photo.get-photo-meta service request.
func (m *PhotoModule) getPhotoMeta(_ context.Context, req GetPhotoMetaRequest, _ *mono.Msg) (PhotoMetaDTO, error) {
	meta, err := m.service.Meta(req.PhotoID, req.RequesterID)
	if err != nil {
		return PhotoMetaDTO{}, err
	}
	return toPhotoDTO(meta), nil
}

// deletePhoto handles the photo.delete-photo service request.
func (m *PhotoModule) deletePhoto(_ context.Context, req DeletePhotoRequest, _ *mono.Msg) (DeletePhotoResponse, error) {
	if err := m.service.SoftDelete(req.PhotoID, req.RequesterID); err != nil {
		return DeletePhotoResponse{ID: req.PhotoID, Deleted: false}, err
	}
	log.Printf("[photo] Photo %s marked deleted by %s", req.PhotoID, req.RequesterID)
	return DeletePhotoResponse{ID: req.PhotoID, Deleted: true}, nil
}

// restorePhoto handles the photo.restore-photo service request.
func (m *PhotoModule) restorePhoto(_ context.Context, req RestorePhotoRequest, _ *mono.Msg) (PhotoMetaDTO, error) {
	meta, err := m.service.Restore(req.PhotoID, req.RequesterID)
	if err != nil {
		return PhotoMetaDTO{}, err
	}
	log.Printf("[photo] Photo %s restored by %s", req.PhotoID, req.RequesterID)
	return toPhotoDTO(meta), nil
}

// listPhotos handles the photo.list-photos service request.
func (m *PhotoModule) listPhotos(_ context.Context, req ListPhotosRequest, _ *mono.Msg) (ListPhotosResponse, error) {
	metas, total, err := m.service.List(req)
	if err != nil {
		return ListPhotosResponse{}, err
	}
	resp := ListPhotosResponse{
		Photos: make([]PhotoMetaDTO, 0, len(metas)),
		Total:  total,
	}
	for _, meta := range metas {
		resp.Photos = append(resp.Photos, toPhotoDTO(meta))
	}
	return resp, nil
}

// searchPhotos handles the photo.search-photos service request.
func (m *PhotoModule) searchPhotos(_ context.Context, req SearchPhotosRequest, _ *mono.Msg) (ListPhotosResponse, error) {
	metas, err := m.service.Search(req)
	if err != nil {
		return ListPhotosResponse{}, err
	}
	resp := ListPhotosResponse{
		Photos: make([]PhotoMetaDTO, 0, len(metas)),
		Total:  len(metas),
	}
	for _, meta := range metas {
		resp.Photos = append(resp.Photos, toPhotoDTO(meta))
	}
	return resp, nil
}

// photoStats handles the photo.photo-stats service request.
func (m *PhotoModule) photoStats(_ context.Context, req PhotoStatsRequest, _ *mono.Msg) (PhotoStatsResponse, error) {
	return m.service.Stats(req.UploaderID), nil
}

// grantAccess handles the photo.grant-access service request.
func (m *PhotoModule) grantAccess(_ context.Context, req GrantAccessRequest, _ *mono.Msg) (GrantAccessResponse, error) {
	grant, err := m.service.Grant(req)
	if err != nil {
		return GrantAccessResponse{}, err
	}
	log.Printf("[photo] Granted %s on %s to %s until %s", grant.Level, req.PhotoID, grant.Grantee, grant.ExpiresAt.Format("2006-01-02 15:04:05"))
	return GrantAccessResponse{
		PhotoID:   req.PhotoID,
		GranteeID: grant.Grantee,
		Level:     string(grant.Level),
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

// attachDerivative handles the photo.attach-derivative service request.
func (m *PhotoModule) attachDerivative(ctx context.Context, req AttachDerivativeRequest, _ *mono.Msg) (AttachDerivativeResponse, error) {
	storageName, err := m.service.AttachDerivative(ctx, req)
	if err != nil {
		return AttachDerivativeResponse{}, err
	}
	return AttachDerivativeResponse{
		PhotoID:     req.PhotoID,
		Kind:        req.Kind,
		StorageName: storageName,
	}, nil
}
