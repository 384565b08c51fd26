package api

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/example/task-admin/domain/task"
	"github.com/example/task-admin/modules/captcha"
	"github.com/example/task-admin/modules/catalog"
	"github.com/example/task-admin/modules/notification"
	"github.com/example/task-admin/modules/photo"
	"github.com/example/task-admin/modules/task"
	"github.com/example/task-admin/modules/user"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

// --- fakes ---

type fakeTaskPort struct {
	listFunc        func(ctx context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error)
	createFunc      func(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskDTO, error)
	updateFunc      func(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskDTO, error)
	deleteFunc      func(ctx context.Context, id string) error
	batchDeleteFunc func(ctx context.Context, ids []string) (int, error)
	batchStatusFunc func(ctx context.Context, ids []string, status string) (int, error)
}

func (f *fakeTaskPort) ListTasks(ctx context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, req)
	}
	return &task.ListTasksResponse{Tasks: []task.TaskDTO{}}, nil
}

func (f *fakeTaskPort) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskDTO, error) {
	if f.createFunc != nil {
		return f.createFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeTaskPort) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskDTO, error) {
	if f.updateFunc != nil {
		return f.updateFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeTaskPort) DeleteTask(ctx context.Context, id string) error {
	if f.deleteFunc != nil {
		return f.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (f *fakeTaskPort) BatchDeleteTasks(ctx context.Context, ids []string) (int, error) {
	if f.batchDeleteFunc != nil {
		return f.batchDeleteFunc(ctx, ids)
	}
	return 0, errors.New("not implemented")
}

func (f *fakeTaskPort) BatchUpdateStatus(ctx context.Context, ids []string, status string) (int, error) {
	if f.batchStatusFunc != nil {
		return f.batchStatusFunc(ctx, ids, status)
	}
	return 0, errors.New("not implemented")
}

type fakeUserPort struct {
	listFunc func(ctx context.Context) ([]user.Member, error)
	getFunc  func(ctx context.Context, name string) (*user.Member, error)
}

func (f *fakeUserPort) ListMembers(ctx context.Context) ([]user.Member, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeUserPort) GetMember(ctx context.Context, name string) (*user.Member, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, name)
	}
	return nil, errors.New("not implemented")
}

type fakeCatalogPort struct {
	listFunc   func(ctx context.Context, req *catalog.ListProductsRequest) (*catalog.ListProductsResponse, error)
	createFunc func(ctx context.Context, req *catalog.CreateProductRequest) (*catalog.ProductDTO, error)
	getFunc    func(ctx context.Context, id string) (*catalog.ProductDTO, error)
}

func (f *fakeCatalogPort) CreateProduct(ctx context.Context, req *catalog.CreateProductRequest) (*catalog.ProductDTO, error) {
	if f.createFunc != nil {
		return f.createFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogPort) GetProduct(ctx context.Context, id string) (*catalog.ProductDTO, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogPort) ListProducts(ctx context.Context, req *catalog.ListProductsRequest) (*catalog.ListProductsResponse, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogPort) UpdateProduct(_ context.Context, _ *catalog.UpdateProductRequest) (*catalog.ProductDTO, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogPort) DeleteProduct(_ context.Context, _ string) error {
	return errors.New("not implemented")
}

type fakePhotoPort struct {
	uploadFunc   func(ctx context.Context, req *photo.UploadPhotoRequest) (*photo.UploadPhotoResponse, error)
	downloadFunc func(ctx context.Context, req *photo.DownloadPhotoRequest) (*photo.DownloadPhotoResponse, error)
	statsFunc    func(ctx context.Context, uploaderID string) (*photo.PhotoStatsResponse, error)
}

func (f *fakePhotoPort) Upload(ctx context.Context, req *photo.UploadPhotoRequest) (*photo.UploadPhotoResponse, error) {
	if f.uploadFunc != nil {
		return f.uploadFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) BatchUpload(_ context.Context, _ *photo.BatchUploadRequest) (*photo.BatchUploadResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) Download(ctx context.Context, req *photo.DownloadPhotoRequest) (*photo.DownloadPhotoResponse, error) {
	if f.downloadFunc != nil {
		return f.downloadFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) Meta(_ context.Context, _, _ string) (*photo.PhotoMetaDTO, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) Delete(_ context.Context, _, _ string) error {
	return errors.New("not implemented")
}

func (f *fakePhotoPort) Restore(_ context.Context, _, _ string) (*photo.PhotoMetaDTO, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) List(_ context.Context, _ *photo.ListPhotosRequest) (*photo.ListPhotosResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) Search(_ context.Context, _ *photo.SearchPhotosRequest) (*photo.ListPhotosResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) Stats(ctx context.Context, uploaderID string) (*photo.PhotoStatsResponse, error) {
	if f.statsFunc != nil {
		return f.statsFunc(ctx, uploaderID)
	}
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) Grant(_ context.Context, _ *photo.GrantAccessRequest) (*photo.GrantAccessResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePhotoPort) AttachDerivative(_ context.Context, _ *photo.AttachDerivativeRequest) (*photo.AttachDerivativeResponse, error) {
	return nil, errors.New("not implemented")
}

type fakeCaptchaPort struct {
	verifyFunc func(ctx context.Context, challengeID string, answer int) (bool, error)
}

func (f *fakeCaptchaPort) Generate(_ context.Context) (*captcha.GenerateResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCaptchaPort) Verify(ctx context.Context, challengeID string, answer int) (bool, error) {
	if f.verifyFunc != nil {
		return f.verifyFunc(ctx, challengeID, answer)
	}
	return false, errors.New("not implemented")
}

type fakeNotificationPort struct {
	listFunc func(ctx context.Context, limit int) (*notification.ListActivitiesResponse, error)
}

func (f *fakeNotificationPort) ListActivities(ctx context.Context, limit int) (*notification.ListActivitiesResponse, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, limit)
	}
	return &notification.ListActivitiesResponse{}, nil
}

// newTestAPI builds the module with fakes and its route table, skipping
// the network listener.
func newTestAPI(mut func(m *APIModule)) *APIModule {
	m := NewModule("0")
	m.tasks = &fakeTaskPort{}
	m.users = &fakeUserPort{}
	m.products = &fakeCatalogPort{}
	m.photos = &fakePhotoPort{}
	m.captchas = &fakeCaptchaPort{}
	m.activities = &fakeNotificationPort{}
	if mut != nil {
		mut(m)
	}
	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})
	m.setupRoutes()
	return m
}

func doRequest(t *testing.T, m *APIModule, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := m.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	resp.Body.Close()
	return resp, string(body)
}

// --- tasks ---

func TestListTasks_QueryParsing(t *testing.T) {
	var captured *task.ListTasksRequest
	m := newTestAPI(func(m *APIModule) {
		m.tasks = &fakeTaskPort{
			listFunc: func(_ context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error) {
				captured = req
				return &task.ListTasksResponse{Tasks: []task.TaskDTO{}, Total: 0}, nil
			},
		}
	})

	req := httptest.NewRequest("GET",
		"/api/v1/tasks?keyword=alpha&status=todo,in_progress&priority=high&assignee=bob&date_from=2024-03-01&page=2&size=25&sort_field=due_date&sort_order=asc", nil)
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, http.StatusOK, body)
	}
	if !strings.Contains(body, `"success":true`) {
		t.Errorf("body = %s, want success envelope", body)
	}
	if captured == nil {
		t.Fatal("list port not called")
	}
	if captured.Keyword != "alpha" || captured.Assignee != "bob" {
		t.Errorf("keyword/assignee = %q/%q", captured.Keyword, captured.Assignee)
	}
	if len(captured.Status) != 2 || captured.Status[0] != "todo" || captured.Status[1] != "in_progress" {
		t.Errorf("status = %v, want [todo in_progress]", captured.Status)
	}
	if len(captured.Priority) != 1 || captured.Priority[0] != "high" {
		t.Errorf("priority = %v, want [high]", captured.Priority)
	}
	if captured.Page != 2 || captured.PageSize != 25 {
		t.Errorf("page/size = %d/%d, want 2/25", captured.Page, captured.PageSize)
	}
	if captured.DateFrom == nil || !captured.DateFrom.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date_from = %v, want 2024-03-01", captured.DateFrom)
	}
	if captured.SortField != "due_date" || captured.SortOrder != "asc" {
		t.Errorf("sort = %q %q", captured.SortField, captured.SortOrder)
	}
}

func TestListTasks_Defaults(t *testing.T) {
	var captured *task.ListTasksRequest
	m := newTestAPI(func(m *APIModule) {
		m.tasks = &fakeTaskPort{
			listFunc: func(_ context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error) {
				captured = req
				return &task.ListTasksResponse{}, nil
			},
		}
	})

	doRequest(t, m, httptest.NewRequest("GET", "/api/v1/tasks", nil))

	if captured.Page != 1 || captured.PageSize != 10 {
		t.Errorf("defaults = %d/%d, want 1/10", captured.Page, captured.PageSize)
	}
	if captured.Status != nil || captured.Priority != nil {
		t.Errorf("empty filters should stay nil, got %v / %v", captured.Status, captured.Priority)
	}
}

func TestListTasks_InvalidDate(t *testing.T) {
	m := newTestAPI(nil)

	req := httptest.NewRequest("GET", "/api/v1/tasks?date_from=yesterday", nil)
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(body, `"success":false`) || !strings.Contains(body, "invalid date") {
		t.Errorf("body = %s, want failure envelope with date error", body)
	}
}

func TestCreateTask(t *testing.T) {
	m := newTestAPI(func(m *APIModule) {
		m.tasks = &fakeTaskPort{
			createFunc: func(_ context.Context, req *task.CreateTaskRequest) (*task.TaskDTO, error) {
				return &task.TaskDTO{ID: "t1", Title: req.Title}, nil
			},
		}
	})

	req := httptest.NewRequest("POST", "/api/v1/tasks",
		strings.NewReader(`{"title":"Ship release","priority":"high","assignees":["bob"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, http.StatusCreated, body)
	}
	if !strings.Contains(body, "Task created") || !strings.Contains(body, `"title":"Ship release"`) {
		t.Errorf("body = %s", body)
	}
}

func TestUpdateTask_IDFromPath(t *testing.T) {
	var captured *task.UpdateTaskRequest
	m := newTestAPI(func(m *APIModule) {
		m.tasks = &fakeTaskPort{
			updateFunc: func(_ context.Context, req *task.UpdateTaskRequest) (*task.TaskDTO, error) {
				captured = req
				return &task.TaskDTO{ID: req.TaskID}, nil
			},
		}
	})

	req := httptest.NewRequest("PUT", "/api/v1/tasks/t42",
		strings.NewReader(`{"task_id":"spoofed","status":"done"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := doRequest(t, m, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if captured.TaskID != "t42" {
		t.Errorf("TaskID = %q, want path id t42", captured.TaskID)
	}
	if captured.Status == nil || *captured.Status != "done" {
		t.Errorf("Status = %v, want done", captured.Status)
	}
}

func TestDeleteTask_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"validation", domain.NewValidationError("id", "id is required"), http.StatusBadRequest},
		{"denied", errors.New("permission denied: not the owner"), http.StatusForbidden},
		{"timeout", errors.New("nats: timeout"), http.StatusServiceUnavailable},
		{"unknown", errors.New("disk exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestAPI(func(m *APIModule) {
				m.tasks = &fakeTaskPort{
					deleteFunc: func(_ context.Context, _ string) error { return tt.err },
				}
			})

			resp, body := doRequest(t, m, httptest.NewRequest("DELETE", "/api/v1/tasks/t1", nil))

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(body, `"success":false`) {
				t.Errorf("body = %s, want failure envelope", body)
			}
			if strings.Contains(body, `"data"`) {
				t.Errorf("failure envelope must not carry data: %s", body)
			}
		})
	}
}

func TestBatchDeleteTasks(t *testing.T) {
	var captured []string
	m := newTestAPI(func(m *APIModule) {
		m.tasks = &fakeTaskPort{
			batchDeleteFunc: func(_ context.Context, ids []string) (int, error) {
				captured = ids
				return 2, nil
			},
		}
	})

	req := httptest.NewRequest("POST", "/api/v1/tasks/batch-delete",
		strings.NewReader(`{"ids":["a","b","missing"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if len(captured) != 3 {
		t.Errorf("ids = %v, want 3 entries", captured)
	}
	if !strings.Contains(body, `"affectedCount":2`) || !strings.Contains(body, "Deleted 2 tasks") {
		t.Errorf("body = %s, want affectedCount 2", body)
	}
}

func TestBatchUpdateStatus(t *testing.T) {
	var gotStatus string
	m := newTestAPI(func(m *APIModule) {
		m.tasks = &fakeTaskPort{
			batchStatusFunc: func(_ context.Context, _ []string, status string) (int, error) {
				gotStatus = status
				return 3, nil
			},
		}
	})

	req := httptest.NewRequest("POST", "/api/v1/tasks/batch-status",
		strings.NewReader(`{"ids":["a","b","c"],"status":"done"}`))
	req.Header.Set("Content-Type", "application/json")
	_, body := doRequest(t, m, req)

	if gotStatus != "done" {
		t.Errorf("status = %q, want done", gotStatus)
	}
	if !strings.Contains(body, `"affectedCount":3`) {
		t.Errorf("body = %s, want affectedCount 3", body)
	}
}

// --- users ---

func TestListUsers(t *testing.T) {
	m := newTestAPI(func(m *APIModule) {
		m.users = &fakeUserPort{
			listFunc: func(_ context.Context) ([]user.Member, error) {
				return []user.Member{{ID: "u1", Name: "alice"}, {ID: "u2", Name: "bob"}}, nil
			},
		}
	})

	resp, body := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/users", nil))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, `"total":2`) || !strings.Contains(body, "alice") {
		t.Errorf("body = %s", body)
	}
}

func TestGetUser(t *testing.T) {
	m := newTestAPI(func(m *APIModule) {
		m.users = &fakeUserPort{
			getFunc: func(_ context.Context, name string) (*user.Member, error) {
				if name != "alice" {
					return nil, errors.New("member not found: " + name)
				}
				return &user.Member{ID: "u1", Name: "alice", Role: "engineer"}, nil
			},
		}
	})

	resp, body := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/users/alice", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "engineer") {
		t.Errorf("body = %s", body)
	}

	resp, _ = doRequest(t, m, httptest.NewRequest("GET", "/api/v1/users/mallory", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d for unknown member, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

// --- products ---

func TestListProducts_PriceBounds(t *testing.T) {
	var captured *catalog.ListProductsRequest
	m := newTestAPI(func(m *APIModule) {
		m.products = &fakeCatalogPort{
			listFunc: func(_ context.Context, req *catalog.ListProductsRequest) (*catalog.ListProductsResponse, error) {
				captured = req
				return &catalog.ListProductsResponse{}, nil
			},
		}
	})

	doRequest(t, m, httptest.NewRequest("GET", "/api/v1/products?price_min=1.5&price_max=9.99", nil))

	if captured.PriceMin == nil || *captured.PriceMin != 1.5 {
		t.Errorf("PriceMin = %v, want 1.5", captured.PriceMin)
	}
	if captured.PriceMax == nil || *captured.PriceMax != 9.99 {
		t.Errorf("PriceMax = %v, want 9.99", captured.PriceMax)
	}

	resp, _ := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/products?price_min=abc", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad price_min status = %d, want 400", resp.StatusCode)
	}
}

// --- photos ---

func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("multipart write error = %v", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close error = %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadPhoto(t *testing.T) {
	var captured *photo.UploadPhotoRequest
	m := newTestAPI(func(m *APIModule) {
		m.photos = &fakePhotoPort{
			uploadFunc: func(_ context.Context, req *photo.UploadPhotoRequest) (*photo.UploadPhotoResponse, error) {
				captured = req
				return &photo.UploadPhotoResponse{
					Photo: photo.PhotoMetaDTO{ID: "p1", OriginalName: req.Name},
				}, nil
			},
		}
	})

	buf, contentType := multipartBody(t, "cat.png", []byte("png-bytes"), map[string]string{
		"category":    "pets",
		"description": "office cat",
	})
	req := httptest.NewRequest("POST", "/api/v1/photos", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Uploader-ID", "alice")
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, http.StatusCreated, body)
	}
	if captured.UploaderID != "alice" || captured.Category != "pets" || captured.Description != "office cat" {
		t.Errorf("captured = %+v", captured)
	}
	if captured.Name != "cat.png" || string(captured.Data) != "png-bytes" {
		t.Errorf("file = %q (%d bytes)", captured.Name, len(captured.Data))
	}
}

func TestUploadPhoto_Duplicate(t *testing.T) {
	m := newTestAPI(func(m *APIModule) {
		m.photos = &fakePhotoPort{
			uploadFunc: func(_ context.Context, req *photo.UploadPhotoRequest) (*photo.UploadPhotoResponse, error) {
				return &photo.UploadPhotoResponse{
					Photo:     photo.PhotoMetaDTO{ID: "p1"},
					Duplicate: true,
				}, nil
			},
		}
	})

	buf, contentType := multipartBody(t, "cat.png", []byte("same-bytes"), map[string]string{
		"uploader_id": "alice",
	})
	req := httptest.NewRequest("POST", "/api/v1/photos", buf)
	req.Header.Set("Content-Type", contentType)
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Duplicate content") {
		t.Errorf("body = %s", body)
	}
}

func TestUploadPhoto_MissingUploader(t *testing.T) {
	m := newTestAPI(nil)

	buf, contentType := multipartBody(t, "cat.png", []byte("data"), nil)
	req := httptest.NewRequest("POST", "/api/v1/photos", buf)
	req.Header.Set("Content-Type", contentType)
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "uploader_id is required") {
		t.Errorf("body = %s", body)
	}
}

func TestDownloadPhoto(t *testing.T) {
	var captured *photo.DownloadPhotoRequest
	m := newTestAPI(func(m *APIModule) {
		m.photos = &fakePhotoPort{
			downloadFunc: func(_ context.Context, req *photo.DownloadPhotoRequest) (*photo.DownloadPhotoResponse, error) {
				captured = req
				return &photo.DownloadPhotoResponse{
					Name:        "cat.png",
					ContentType: "image/png",
					Data:        []byte("raw-image"),
				}, nil
			},
		}
	})

	req := httptest.NewRequest("GET", "/api/v1/photos/p1/download?variant=compressed", nil)
	req.Header.Set("X-Uploader-ID", "alice")
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if captured.PhotoID != "p1" || captured.RequesterID != "alice" || captured.Variant != "compressed" {
		t.Errorf("captured = %+v", captured)
	}
	if body != "raw-image" {
		t.Errorf("body = %q, want raw bytes", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}
}

func TestPhotoThumbnail_DefaultSize(t *testing.T) {
	var captured *photo.DownloadPhotoRequest
	m := newTestAPI(func(m *APIModule) {
		m.photos = &fakePhotoPort{
			downloadFunc: func(_ context.Context, req *photo.DownloadPhotoRequest) (*photo.DownloadPhotoResponse, error) {
				captured = req
				return &photo.DownloadPhotoResponse{Name: "cat.png", ContentType: "image/jpeg", Data: []byte("t")}, nil
			},
		}
	})

	resp, _ := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/photos/p1/thumbnail?requester_id=bob", nil))

	if captured.Variant != "150" {
		t.Errorf("variant = %q, want default 150", captured.Variant)
	}
	if captured.RequesterID != "bob" {
		t.Errorf("requester = %q, want bob", captured.RequesterID)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "inline") {
		t.Errorf("Content-Disposition = %q, want inline", cd)
	}
}

func TestPhotoStats(t *testing.T) {
	m := newTestAPI(func(m *APIModule) {
		m.photos = &fakePhotoPort{
			statsFunc: func(_ context.Context, uploaderID string) (*photo.PhotoStatsResponse, error) {
				if uploaderID != "alice" {
					t.Errorf("uploaderID = %q, want alice", uploaderID)
				}
				return &photo.PhotoStatsResponse{TotalFiles: 4, TotalSize: 1024, ImageFiles: 3}, nil
			},
		}
	})

	resp, body := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/photos/stats?uploader_id=alice", nil))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", resp.StatusCode, body)
	}
	if !strings.Contains(body, `"total_files":4`) {
		t.Errorf("body = %s", body)
	}
}

// --- tools ---

func TestQRCode(t *testing.T) {
	m := newTestAPI(nil)

	req := httptest.NewRequest("GET", "/api/v1/qrcode?content=hello&size=10", nil)
	resp, body := doRequest(t, m, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	cfg, err := png.DecodeConfig(strings.NewReader(body))
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if cfg.Width != 64 {
		t.Errorf("width = %d, want size clamped to 64", cfg.Width)
	}
}

func TestQRCode_MissingContent(t *testing.T) {
	m := newTestAPI(nil)

	resp, body := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/qrcode", nil))

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "content is required") {
		t.Errorf("body = %s", body)
	}
}

func TestVerifyCaptcha(t *testing.T) {
	tests := []struct {
		name        string
		valid       bool
		wantMessage string
	}{
		{"correct answer", true, "Captcha verified"},
		{"wrong answer", false, "Captcha verification failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestAPI(func(m *APIModule) {
				m.captchas = &fakeCaptchaPort{
					verifyFunc: func(_ context.Context, _ string, _ int) (bool, error) {
						return tt.valid, nil
					},
				}
			})

			req := httptest.NewRequest("POST", "/api/v1/captcha/verify",
				strings.NewReader(`{"challenge_id":"c1","answer":7}`))
			req.Header.Set("Content-Type", "application/json")
			resp, body := doRequest(t, m, req)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if !strings.Contains(body, tt.wantMessage) {
				t.Errorf("body = %s, want %q", body, tt.wantMessage)
			}
		})
	}
}

// --- activities ---

func TestListActivities_DefaultLimit(t *testing.T) {
	var gotLimit int
	m := newTestAPI(func(m *APIModule) {
		m.activities = &fakeNotificationPort{
			listFunc: func(_ context.Context, limit int) (*notification.ListActivitiesResponse, error) {
				gotLimit = limit
				return &notification.ListActivitiesResponse{}, nil
			},
		}
	})

	doRequest(t, m, httptest.NewRequest("GET", "/api/v1/activities", nil))

	if gotLimit != 20 {
		t.Errorf("limit = %d, want default 20", gotLimit)
	}
}

// --- health ---

type healthStub struct {
	name    string
	healthy bool
}

func (h *healthStub) Name() string                { return h.name }
func (h *healthStub) Start(context.Context) error { return nil }
func (h *healthStub) Stop(context.Context) error  { return nil }
func (h *healthStub) Health(context.Context) mono.HealthStatus {
	return mono.HealthStatus{Healthy: h.healthy, Message: "stub"}
}

func TestHealthAggregation(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		m := newTestAPI(func(m *APIModule) {
			m.AddHealthSource("task", &healthStub{name: "task", healthy: true})
			m.AddHealthSource("photo", &healthStub{name: "photo", healthy: true})
		})

		resp, body := doRequest(t, m, httptest.NewRequest("GET", "/health", nil))

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if !strings.Contains(body, `"status":"healthy"`) {
			t.Errorf("body = %s", body)
		}
	})

	t.Run("one unhealthy", func(t *testing.T) {
		m := newTestAPI(func(m *APIModule) {
			m.AddHealthSource("task", &healthStub{name: "task", healthy: true})
			m.AddHealthSource("photo", &healthStub{name: "photo", healthy: false})
		})

		resp, body := doRequest(t, m, httptest.NewRequest("GET", "/health", nil))

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", resp.StatusCode)
		}
		if !strings.Contains(body, `"status":"degraded"`) {
			t.Errorf("body = %s", body)
		}
	})
}
