package photo

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted upload.
const MaxUploadSize = 10 << 20 // 10MB

// MaxBatchItems is the largest accepted batch upload.
const MaxBatchItems = 10

// DefaultGrantTTL applies when a grant request carries no TTL.
const DefaultGrantTTL = 24 * time.Hour

// defaultAllowedTypes lists the content types accepted for upload.
var defaultAllowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"image/tiff":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
	"text/plain":      true,
}

// magic byte prefixes for the sniffable image formats.
var magicPrefixes = map[string][]byte{
	"jpeg": {0xFF, 0xD8, 0xFF},
	"png":  {0x89, 0x50, 0x4E, 0x47},
	"gif":  {0x47, 0x49, 0x46},
	"bmp":  {0x42, 0x4D},
	"webp": {0x52, 0x49, 0x46, 0x46},
}

// sniffFormat maps a declared image content type to the magic key it
// must match. Types without reliable magic bytes are not listed.
var sniffFormat = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/webp": "webp",
}

// Service implements the photo operations on top of an ObjectStore and
// the in-memory metadata index.
type Service struct {
	store      ObjectStore
	meta       *metaIndex
	allowed    map[string]bool
	newBatchID func() string
}

// NewService creates a photo service. newBatchID generates the suffix of
// batch upload identifiers.
func NewService(store ObjectStore, newBatchID func() string) *Service {
	return &Service{
		store:      store,
		meta:       newMetaIndex(),
		allowed:    defaultAllowedTypes,
		newBatchID: newBatchID,
	}
}

// sanitizeFilename reduces a client-supplied name to its base component
// and rejects names that could escape the storage layout.
func sanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	// Clients may send Windows-style paths.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = path.Base(name)
	if name == "" || name == "." || name == ".." {
		return "", errValidation("name", "must be a file name")
	}
	if len(name) > 255 {
		return "", errValidation("name", "must be at most 255 characters")
	}
	return name, nil
}

// matchesMagic verifies declared image types against the leading bytes.
func matchesMagic(contentType string, data []byte) bool {
	key, ok := sniffFormat[contentType]
	if !ok {
		return true
	}
	return bytes.HasPrefix(data, magicPrefixes[key])
}

// isImage reports whether the content type is an image type.
func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// Upload validates and stores one file. When the uploader already has a
// live photo with identical content, that record is returned instead and
// the duplicate flag is set; nothing new is written to storage.
func (s *Service) Upload(ctx context.Context, req UploadPhotoRequest) (*PhotoMeta, bool, error) {
	if req.UploaderID == "" {
		return nil, false, errValidation("uploader_id", "must not be empty")
	}
	name, err := sanitizeFilename(req.Name)
	if err != nil {
		return nil, false, err
	}
	if len(req.Data) == 0 {
		return nil, false, errValidation("data", "must not be empty")
	}
	if len(req.Data) > MaxUploadSize {
		return nil, false, errValidation("data", fmt.Sprintf("must be at most %d bytes", MaxUploadSize))
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !s.allowed[contentType] {
		return nil, false, errValidation("content_type", fmt.Sprintf("%s is not allowed", contentType))
	}
	if !matchesMagic(contentType, req.Data) {
		return nil, false, errValidation("data", "content does not match the declared type")
	}

	sum := md5.Sum(req.Data)
	md5hex := hex.EncodeToString(sum[:])

	if existing, ok := s.meta.findDuplicate(req.UploaderID, md5hex); ok {
		return existing, true, nil
	}

	id := uuid.New().String()
	storageName := id + "/" + name

	if _, err := s.store.Put(ctx, storageName, req.Data, contentType); err != nil {
		return nil, false, fmt.Errorf("failed to store photo: %w", err)
	}

	now := time.Now()
	m := &PhotoMeta{
		ID:           id,
		OriginalName: name,
		StorageName:  storageName,
		ContentType:  contentType,
		Size:         int64(len(req.Data)),
		MD5:          md5hex,
		UploaderID:   req.UploaderID,
		Category:     req.Category,
		Description:  req.Description,
		UploadedAt:   now,
		LastAccessAt: now,
		Thumbnails:   make(map[string]string),
	}
	s.meta.insert(m)

	return m.clone(), false, nil
}

// BatchUpload stores up to MaxBatchItems files, collecting a per-file
// outcome instead of failing the whole call. The second return value
// lists the newly stored records (duplicates excluded) so the caller can
// emit follow-up events for them.
func (s *Service) BatchUpload(ctx context.Context, req BatchUploadRequest) (*BatchUploadResponse, []*PhotoMeta, error) {
	if req.UploaderID == "" {
		return nil, nil, errValidation("uploader_id", "must not be empty")
	}
	if len(req.Items) == 0 {
		return nil, nil, errValidation("items", "must not be empty")
	}
	if len(req.Items) > MaxBatchItems {
		return nil, nil, errValidation("items", fmt.Sprintf("must be at most %d files", MaxBatchItems))
	}

	resp := &BatchUploadResponse{
		BatchID: "batch_" + s.newBatchID(),
		Results: make([]BatchItemResult, 0, len(req.Items)),
	}

	var created []*PhotoMeta
	for _, item := range req.Items {
		m, duplicate, err := s.Upload(ctx, UploadPhotoRequest{
			Name:        item.Name,
			Data:        item.Data,
			ContentType: item.ContentType,
			Category:    req.Category,
			UploaderID:  req.UploaderID,
		})
		if err != nil {
			resp.Results = append(resp.Results, BatchItemResult{
				Name:    item.Name,
				Success: false,
				Error:   err.Error(),
			})
			resp.Failed++
			continue
		}
		if !duplicate {
			created = append(created, m)
		}
		resp.Results = append(resp.Results, BatchItemResult{
			Name:    item.Name,
			Success: true,
			PhotoID: m.ID,
		})
		resp.Succeeded++
	}

	return resp, created, nil
}

// getLive returns the photo when it exists and is not soft-deleted.
func (s *Service) getLive(id string) (*PhotoMeta, error) {
	m, ok := s.meta.get(id)
	if !ok || m.Deleted {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, nil
}

// Meta returns the photo record after a read permission check.
func (s *Service) Meta(id, requesterID string) (*PhotoMeta, error) {
	m, err := s.getLive(id)
	if err != nil {
		return nil, err
	}
	if !m.permits(requesterID, GrantRead, time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, id)
	}
	return m, nil
}

// DownloadResult carries one fetched blob and its descriptor.
type DownloadResult struct {
	Data        []byte
	Name        string
	ContentType string
	Meta        *PhotoMeta
}

// Download returns the requested blob after a read permission check and
// bumps the access counters. Variant "" selects the original,
// "compressed" the compressed rendition, anything else a thumbnail label.
func (s *Service) Download(ctx context.Context, req DownloadPhotoRequest) (*DownloadResult, error) {
	m, err := s.getLive(req.PhotoID)
	if err != nil {
		return nil, err
	}
	if !m.permits(req.RequesterID, GrantRead, time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, req.PhotoID)
	}

	storageName := m.StorageName
	name := m.OriginalName
	switch {
	case req.Variant == "":
	case req.Variant == "compressed":
		if m.CompressedName == "" {
			return nil, fmt.Errorf("%w: no compressed variant for %s", ErrNotFound, req.PhotoID)
		}
		storageName = m.CompressedName
		name = path.Base(storageName)
	default:
		sn, ok := m.Thumbnails[req.Variant]
		if !ok {
			return nil, fmt.Errorf("%w: no %s thumbnail for %s", ErrNotFound, req.Variant, req.PhotoID)
		}
		storageName = sn
		name = path.Base(sn)
	}

	data, info, err := s.store.Get(ctx, storageName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo content: %w", err)
	}

	now := time.Now()
	s.meta.update(req.PhotoID, func(m *PhotoMeta) {
		m.DownloadCount++
		m.LastAccessAt = now
	})

	contentType := info.ContentType
	if req.Variant == "" {
		contentType = m.ContentType
	}
	updated, _ := s.meta.get(req.PhotoID)
	return &DownloadResult{
		Data:        data,
		Name:        name,
		ContentType: contentType,
		Meta:        updated,
	}, nil
}

// SoftDelete marks the photo deleted. The blob stays in storage so the
// record can be restored.
func (s *Service) SoftDelete(id, requesterID string) error {
	m, err := s.getLive(id)
	if err != nil {
		return err
	}
	if !m.permits(requesterID, GrantDelete, time.Now()) {
		return fmt.Errorf("%w: %s", ErrAccessDenied, id)
	}

	now := time.Now()
	s.meta.update(id, func(m *PhotoMeta) {
		m.Deleted = true
		m.DeletedAt = &now
	})
	return nil
}

// Restore clears the deletion mark.
func (s *Service) Restore(id, requesterID string) (*PhotoMeta, error) {
	m, ok := s.meta.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !m.permits(requesterID, GrantDelete, time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, id)
	}
	if !m.Deleted {
		return nil, errValidation("photo_id", "photo is not deleted")
	}

	s.meta.update(id, func(m *PhotoMeta) {
		m.Deleted = false
		m.DeletedAt = nil
	})
	restored, _ := s.meta.get(id)
	return restored, nil
}

// List returns one page of live photos, newest first.
func (s *Service) List(req ListPhotosRequest) ([]*PhotoMeta, int, error) {
	if req.Page <= 0 {
		return nil, 0, errValidation("page", "must be a positive integer")
	}
	if req.PageSize <= 0 {
		return nil, 0, errValidation("page_size", "must be a positive integer")
	}

	all := s.meta.live(req.UploaderID, req.Category)
	total := len(all)

	start := (req.Page - 1) * req.PageSize
	if start >= total {
		return []*PhotoMeta{}, total, nil
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Search returns live photos whose original name contains the needle,
// case-insensitively.
func (s *Service) Search(req SearchPhotosRequest) ([]*PhotoMeta, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errValidation("name", "must not be empty")
	}
	return s.meta.search(req.UploaderID, req.Name), nil
}

// Stats summarizes the live photos visible for the uploader filter.
func (s *Service) Stats(uploaderID string) PhotoStatsResponse {
	var stats PhotoStatsResponse
	for _, m := range s.meta.live(uploaderID, "") {
		stats.TotalFiles++
		stats.TotalSize += m.Size
		if isImage(m.ContentType) {
			stats.ImageFiles++
		}
	}
	return stats
}

// Grant gives grantee time-limited access. The granter must own the
// photo or hold a manage grant. A newer grant for the same grantee
// replaces the previous one.
func (s *Service) Grant(req GrantAccessRequest) (*Grant, error) {
	m, err := s.getLive(req.PhotoID)
	if err != nil {
		return nil, err
	}

	level := GrantLevel(req.Level)
	if !level.Valid() {
		return nil, errValidation("level", fmt.Sprintf("%q is not a grant level", req.Level))
	}
	if req.GranteeID == "" {
		return nil, errValidation("grantee_id", "must not be empty")
	}
	if req.GranteeID == m.UploaderID {
		return nil, errValidation("grantee_id", "uploader already has full access")
	}
	if !m.permits(req.GranterID, GrantManage, time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, req.PhotoID)
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	grant := Grant{
		Grantee:   req.GranteeID,
		Level:     level,
		ExpiresAt: time.Now().Add(ttl),
	}

	s.meta.update(req.PhotoID, func(m *PhotoMeta) {
		kept := m.Grants[:0]
		for _, g := range m.Grants {
			if g.Grantee != grant.Grantee {
				kept = append(kept, g)
			}
		}
		m.Grants = append(kept, grant)
	})
	return &grant, nil
}

// AttachDerivative stores a rendition produced by the imaging pipeline
// and links it to the photo record.
func (s *Service) AttachDerivative(ctx context.Context, req AttachDerivativeRequest) (string, error) {
	m, err := s.getLive(req.PhotoID)
	if err != nil {
		return "", err
	}
	if req.Kind == "" {
		return "", errValidation("kind", "must not be empty")
	}
	if len(req.Data) == 0 {
		return "", errValidation("data", "must not be empty")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}

	fileName := "compressed" + ext
	if req.Kind != "compressed" {
		fileName = "thumb_" + req.Kind + ext
	}
	storageName := m.ID + "/" + fileName

	if _, err := s.store.Put(ctx, storageName, req.Data, contentType); err != nil {
		return "", fmt.Errorf("failed to store derivative: %w", err)
	}

	s.meta.update(req.PhotoID, func(m *PhotoMeta) {
		if req.Kind == "compressed" {
			m.CompressedName = storageName
		} else {
			if m.Thumbnails == nil {
				m.Thumbnails = make(map[string]string)
			}
			m.Thumbnails[req.Kind] = storageName
		}
		if req.OriginalWidth > 0 && req.OriginalHeight > 0 {
			m.Width = req.OriginalWidth
			m.Height = req.OriginalHeight
		}
	})
	return storageName, nil
}

// toPhotoDTO converts a record to its wire representation.
func toPhotoDTO(m *PhotoMeta) PhotoMetaDTO {
	labels := make([]string, 0, len(m.Thumbnails))
	for label := range m.Thumbnails {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return PhotoMetaDTO{
		ID:            m.ID,
		OriginalName:  m.OriginalName,
		ContentType:   m.ContentType,
		Size:          m.Size,
		MD5:           m.MD5,
		UploaderID:    m.UploaderID,
		Category:      m.Category,
		Description:   m.Description,
		Width:         m.Width,
		Height:        m.Height,
		UploadedAt:    m.UploadedAt,
		LastAccessAt:  m.LastAccessAt,
		DownloadCount: m.DownloadCount,
		Deleted:       m.Deleted,
		Thumbnails:    labels,
		Compressed:    m.CompressedName != "",
	}
}
