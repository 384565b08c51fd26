package imaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/task-admin/modules/photo"
)

type stubPhotoClient struct {
	mu          sync.Mutex
	data        []byte
	contentType string
	downloadErr error
	attached    []*photo.AttachDerivativeRequest
}

func (s *stubPhotoClient) Download(_ context.Context, _ *photo.DownloadPhotoRequest) (*photo.DownloadPhotoResponse, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	return &photo.DownloadPhotoResponse{
		Name:        "original.png",
		ContentType: s.contentType,
		Data:        s.data,
	}, nil
}

func (s *stubPhotoClient) AttachDerivative(_ context.Context, req *photo.AttachDerivativeRequest) (*photo.AttachDerivativeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = append(s.attached, req)
	return &photo.AttachDerivativeResponse{PhotoID: req.PhotoID, Kind: req.Kind}, nil
}

func (s *stubPhotoClient) kinds() map[string]*photo.AttachDerivativeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*photo.AttachDerivativeRequest, len(s.attached))
	for _, req := range s.attached {
		out[req.Kind] = req
	}
	return out
}

func TestProcess_SmallImageGetsThumbnailsOnly(t *testing.T) {
	stub := &stubPhotoClient{
		data:        makeTestPNG(t, 200, 100),
		contentType: "image/png",
	}
	m := NewModule(1, "")
	m.photos = stub

	m.process(context.Background(), Job{PhotoID: "photo-1", UploaderID: "alice"})

	kinds := stub.kinds()
	if len(kinds) != 3 {
		t.Fatalf("attached %d derivatives, want 3", len(kinds))
	}
	if _, ok := kinds["compressed"]; ok {
		t.Error("small image produced a compressed rendition")
	}
	for _, label := range []string{"150", "300", "600"} {
		if _, ok := kinds[label]; !ok {
			t.Errorf("missing thumbnail %q", label)
		}
	}

	// 200x100 fits inside 150x150 only after scaling by width.
	thumb := kinds["150"]
	if thumb.Width != 150 || thumb.Height != 75 {
		t.Errorf("150 thumbnail = %dx%d, want 150x75", thumb.Width, thumb.Height)
	}
	// Larger bounding boxes never scale up.
	thumb = kinds["600"]
	if thumb.Width != 200 || thumb.Height != 100 {
		t.Errorf("600 thumbnail = %dx%d, want 200x100", thumb.Width, thumb.Height)
	}
	if thumb.OriginalWidth != 200 || thumb.OriginalHeight != 100 {
		t.Errorf("original dimensions = %dx%d, want 200x100", thumb.OriginalWidth, thumb.OriginalHeight)
	}
	if thumb.ContentType != "image/png" {
		t.Errorf("thumbnail content type = %q, want image/png", thumb.ContentType)
	}
}

func TestProcess_OversizedImageGetsCompressed(t *testing.T) {
	stub := &stubPhotoClient{
		data:        makeTestPNG(t, 4200, 100),
		contentType: "image/png",
	}
	m := NewModule(1, "task-admin")
	m.photos = stub

	m.process(context.Background(), Job{PhotoID: "photo-2", UploaderID: "alice"})

	kinds := stub.kinds()
	rendition, ok := kinds["compressed"]
	if !ok {
		t.Fatal("oversized image did not produce a compressed rendition")
	}
	if rendition.Width != 4096 || rendition.Width <= rendition.Height {
		t.Errorf("compressed rendition = %dx%d, want width 4096 keeping aspect ratio",
			rendition.Width, rendition.Height)
	}
	if rendition.OriginalWidth != 4200 {
		t.Errorf("OriginalWidth = %d, want 4200", rendition.OriginalWidth)
	}
	if len(kinds) != 4 {
		t.Errorf("attached %d derivatives, want compressed plus 3 thumbnails", len(kinds))
	}
}

func TestProcess_DownloadFailureIsSwallowed(t *testing.T) {
	stub := &stubPhotoClient{downloadErr: errors.New("photo not found")}
	m := NewModule(1, "")
	m.photos = stub

	m.process(context.Background(), Job{PhotoID: "gone", UploaderID: "alice"})

	if len(stub.kinds()) != 0 {
		t.Error("derivatives attached despite download failure")
	}
}

func TestProcess_UndecodableDataIsSkipped(t *testing.T) {
	stub := &stubPhotoClient{
		data:        []byte("<svg xmlns='http://www.w3.org/2000/svg'/>"),
		contentType: "image/svg+xml",
	}
	m := NewModule(1, "")
	m.photos = stub

	m.process(context.Background(), Job{PhotoID: "vector", UploaderID: "alice"})

	if len(stub.kinds()) != 0 {
		t.Error("derivatives attached for an undecodable payload")
	}
}
