package photo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// PhotoPort is the calling surface other modules use to reach the photo
// services.
type PhotoPort interface {
	Upload(ctx context.Context, req *UploadPhotoRequest) (*UploadPhotoResponse, error)
	BatchUpload(ctx context.Context, req *BatchUploadRequest) (*BatchUploadResponse, error)
	Download(ctx context.Context, req *DownloadPhotoRequest) (*DownloadPhotoResponse, error)
	Meta(ctx context.Context, photoID, requesterID string) (*PhotoMetaDTO, error)
	Delete(ctx context.Context, photoID, requesterID string) error
	Restore(ctx context.Context, photoID, requesterID string) (*PhotoMetaDTO, error)
	List(ctx context.Context, req *ListPhotosRequest) (*ListPhotosResponse, error)
	Search(ctx context.Context, req *SearchPhotosRequest) (*ListPhotosResponse, error)
	Stats(ctx context.Context, uploaderID string) (*PhotoStatsResponse, error)
	Grant(ctx context.Context, req *GrantAccessRequest) (*GrantAccessResponse, error)
	AttachDerivative(ctx context.Context, req *AttachDerivativeRequest) (*AttachDerivativeResponse, error)
}

// photoAdapter wraps the photo module's ServiceContainer for type-safe
// cross-module calls.
type photoAdapter struct {
	container mono.ServiceContainer
}

// NewPhotoAdapter creates an adapter over the container received via
// SetDependencyServiceContainer.
func NewPhotoAdapter(container mono.ServiceContainer) PhotoPort {
	if container == nil {
		panic("photo adapter requires non-nil ServiceContainer")
	}
	return &photoAdapter{container: container}
}

func (a *photoAdapter) Upload(ctx context.Context, req *UploadPhotoRequest) (*UploadPhotoResponse, error) {
	var resp UploadPhotoResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "upload-photo", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("upload-photo service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) BatchUpload(ctx context.Context, req *BatchUploadRequest) (*BatchUploadResponse, error) {
	var resp BatchUploadResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "batch-upload", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("batch-upload service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) Download(ctx context.Context, req *DownloadPhotoRequest) (*DownloadPhotoResponse, error) {
	var resp DownloadPhotoResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "download-photo", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("download-photo service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) Meta(ctx context.Context, photoID, requesterID string) (*PhotoMetaDTO, error) {
	req := GetPhotoMetaRequest{PhotoID: photoID, RequesterID: requesterID}
	var resp PhotoMetaDTO
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-photo-meta", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-photo-meta service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) Delete(ctx context.Context, photoID, requesterID string) error {
	req := DeletePhotoRequest{PhotoID: photoID, RequesterID: requesterID}
	var resp DeletePhotoResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-photo", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete-photo service call failed: %w", err)
	}
	return nil
}

func (a *photoAdapter) Restore(ctx context.Context, photoID, requesterID string) (*PhotoMetaDTO, error) {
	req := RestorePhotoRequest{PhotoID: photoID, RequesterID: requesterID}
	var resp PhotoMetaDTO
	if err := helper.CallRequestReplyService(
		ctx, a.container, "restore-photo", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("restore-photo service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) List(ctx context.Context, req *ListPhotosRequest) (*ListPhotosResponse, error) {
	var resp ListPhotosResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-photos", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-photos service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) Search(ctx context.Context, req *SearchPhotosRequest) (*ListPhotosResponse, error) {
	var resp ListPhotosResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "search-photos", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("search-photos service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) Stats(ctx context.Context, uploaderID string) (*PhotoStatsResponse, error) {
	req := PhotoStatsRequest{UploaderID: uploaderID}
	var resp PhotoStatsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "photo-stats", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("photo-stats service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) Grant(ctx context.Context, req *GrantAccessRequest) (*GrantAccessResponse, error) {
	var resp GrantAccessResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "grant-access", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("grant-access service call failed: %w", err)
	}
	return &resp, nil
}

func (a *photoAdapter) AttachDerivative(ctx context.Context, req *AttachDerivativeRequest) (*AttachDerivativeResponse, error) {
	var resp AttachDerivativeResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "attach-derivative", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("attach-derivative service call failed: %w", err)
	}
	return &resp, nil
}
