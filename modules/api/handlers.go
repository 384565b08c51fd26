package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/example/task-admin/modules/catalog"
	"github.com/example/task-admin/modules/photo"
	"github.com/example/task-admin/modules/task"
	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
)

func (m *APIModule) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	api := m.app.Group("/api/v1")

	tasks := api.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Post("/batch-delete", m.batchDeleteTasks)
	tasks.Post("/batch-status", m.batchUpdateStatus)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)

	api.Get("/users", m.listUsers)
	api.Get("/users/:name", m.getUser)

	products := api.Group("/products")
	products.Get("/", m.listProducts)
	products.Post("/", m.createProduct)
	products.Get("/:id", m.getProduct)
	products.Put("/:id", m.updateProduct)
	products.Delete("/:id", m.deleteProduct)

	// search and stats before the :id routes so they are not captured
	// as photo ids
	photos := api.Group("/photos")
	photos.Post("/", m.uploadPhoto)
	photos.Post("/batch", m.batchUploadPhotos)
	photos.Get("/", m.listPhotos)
	photos.Get("/search", m.searchPhotos)
	photos.Get("/stats", m.photoStats)
	photos.Get("/:id/download", m.downloadPhoto)
	photos.Get("/:id/thumbnail", m.photoThumbnail)
	photos.Post("/:id/restore", m.restorePhoto)
	photos.Post("/:id/grants", m.grantPhotoAccess)
	photos.Get("/:id", m.getPhotoMeta)
	photos.Delete("/:id", m.deletePhoto)

	api.Get("/qrcode", m.qrcodeHandler)
	api.Get("/captcha", m.getCaptcha)
	api.Post("/captcha/verify", m.verifyCaptcha)
	api.Get("/activities", m.listActivities)

	m.setupWebsocketRoutes()
}

// --- tasks ---

func (m *APIModule) listTasks(c *fiber.Ctx) error {
	req := task.ListTasksRequest{
		Keyword:   c.Query("keyword"),
		Status:    splitCSV(c.Query("status")),
		Priority:  splitCSV(c.Query("priority")),
		Assignee:  c.Query("assignee"),
		DateField: c.Query("date_field"),
		SortField: c.Query("sort_field"),
		SortOrder: c.Query("sort_order"),
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("size", 10),
	}

	from, err := parseDate(c.Query("date_from"))
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	to, err := parseDate(c.Query("date_to"))
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	req.DateFrom, req.DateTo = from, to

	resp, err := m.tasks.ListTasks(c.Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, resp, "Tasks retrieved")
}

func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req task.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	created, err := m.tasks.CreateTask(c.Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusCreated, created, "Task created")
}

func (m *APIModule) updateTask(c *fiber.Ctx) error {
	var req task.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	req.TaskID = c.Params("id")

	updated, err := m.tasks.UpdateTask(c.Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, updated, "Task updated")
}

func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	if err := m.tasks.DeleteTask(c.Context(), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Task deleted")
}

func (m *APIModule) batchDeleteTasks(c *fiber.Ctx) error {
	var req task.BatchDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	affected, err := m.tasks.BatchDeleteTasks(c.Context(), req.IDs)
	if err != nil {
		return respondErr(c, err)
	}
	return respondAffected(c, affected, fmt.Sprintf("Deleted %d tasks", affected))
}

func (m *APIModule) batchUpdateStatus(c *fiber.Ctx) error {
	var req task.BatchStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	affected, err := m.tasks.BatchUpdateStatus(c.Context(), req.IDs, req.Status)
	if err != nil {
		return respondErr(c, err)
	}
	return respondAffected(c, affected, fmt.Sprintf("Updated %d tasks", affected))
}

// --- users ---

func (m *APIModule) listUsers(c *fiber.Ctx) error {
	members, err := m.users.ListMembers(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"members": members,
		"total":   len(members),
	}, "Members retrieved")
}

func (m *APIModule) getUser(c *fiber.Ctx) error {
	member, err := m.users.GetMember(c.Context(), c.Params("name"))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, member, "Member retrieved")
}

// --- products ---

func (m *APIModule) listProducts(c *fiber.Ctx) error {
	req := catalog.ListProductsRequest{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("size", 10),
	}
	if v := c.Query("price_min"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return respondBadRequest(c, "Invalid price_min")
		}
		req.PriceMin = &min
	}
	if v := c.Query("price_max"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return respondBadRequest(c, "Invalid price_max")
		}
		req.PriceMax = &max
	}

	resp, err := m.products.ListProducts(c.Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, resp, "Products retrieved")
}

func (m *APIModule) createProduct(c *fiber.Ctx) error {
	var req catalog.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	created, err := m.products.CreateProduct(c.Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusCreated, created, "Product created")
}

func (m *APIModule) getProduct(c *fiber.Ctx) error {
	product, err := m.products.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, product, "Product retrieved")
}

func (m *APIModule) updateProduct(c *fiber.Ctx) error {
	var req catalog.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	req.ID = c.Params("id")

	updated, err := m.products.UpdateProduct(c.Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, updated, "Product updated")
}

func (m *APIModule) deleteProduct(c *fiber.Ctx) error {
	if err := m.products.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Product deleted")
}

// --- photos ---

func (m *APIModule) uploadPhoto(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondBadRequest(c, "file is required")
	}
	uploader := uploaderFromForm(c)
	if uploader == "" {
		return respondBadRequest(c, "uploader_id is required")
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return respondBadRequest(c, "Failed to read uploaded file")
	}

	resp, err := m.photos.Upload(c.Context(), &photo.UploadPhotoRequest{
		Name:        fileHeader.Filename,
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
		UploaderID:  uploader,
	})
	if err != nil {
		return respondErr(c, err)
	}
	if resp.Duplicate {
		return respond(c, fiber.StatusOK, resp, "Duplicate content, existing photo returned")
	}
	return respond(c, fiber.StatusCreated, resp, "Photo uploaded")
}

func (m *APIModule) batchUploadPhotos(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return respondBadRequest(c, "Invalid multipart form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return respondBadRequest(c, "files is required")
	}
	uploader := uploaderFromForm(c)
	if uploader == "" {
		return respondBadRequest(c, "uploader_id is required")
	}

	req := photo.BatchUploadRequest{
		UploaderID: uploader,
		Category:   c.FormValue("category"),
		Items:      make([]photo.UploadItem, 0, len(files)),
	}
	for _, fh := range files {
		data, err := readMultipartFile(fh)
		if err != nil {
			return respondBadRequest(c, fmt.Sprintf("Failed to read %s", fh.Filename))
		}
		req.Items = append(req.Items, photo.UploadItem{
			Name:        fh.Filename,
			Data:        data,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	resp, err := m.photos.BatchUpload(c.Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, resp, fmt.Sprintf("Uploaded %d of %d files", resp.Succeeded, len(files)))
}

func (m *APIModule) downloadPhoto(c *fiber.Ctx) error {
	resp, err := m.photos.Download(c.Context(), &photo.DownloadPhotoRequest{
		PhotoID:     c.Params("id"),
		RequesterID: requesterFromQuery(c),
		Variant:     c.Query("variant"),
	})
	if err != nil {
		return respondErr(c, err)
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", resp.Name))
	return c.Send(resp.Data)
}

func (m *APIModule) photoThumbnail(c *fiber.Ctx) error {
	size := c.Query("size", "150")
	resp, err := m.photos.Download(c.Context(), &photo.DownloadPhotoRequest{
		PhotoID:     c.Params("id"),
		RequesterID: requesterFromQuery(c),
		Variant:     size,
	})
	if err != nil {
		return respondErr(c, err)
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", resp.Name))
	return c.Send(resp.Data)
}

func (m *APIModule) getPhotoMeta(c *fiber.Ctx) error {
	meta, err := m.photos.Meta(c.Context(), c.Params("id"), requesterFromQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, meta, "Photo retrieved")
}

func (m *APIModule) listPhotos(c *fiber.Ctx) error {
	resp, err := m.photos.List(c.Context(), &photo.ListPhotosRequest{
		UploaderID: c.Query("uploader_id"),
		Category:   c.Query("category"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("size", 20),
	})
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, resp, "Photos retrieved")
}

func (m *APIModule) searchPhotos(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return respondBadRequest(c, "name is required")
	}

	resp, err := m.photos.Search(c.Context(), &photo.SearchPhotosRequest{
		UploaderID: c.Query("uploader_id"),
		Name:       name,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, resp, "Photos retrieved")
}

func (m *APIModule) deletePhoto(c *fiber.Ctx) error {
	if err := m.photos.Delete(c.Context(), c.Params("id"), requesterFromQuery(c)); err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Photo deleted")
}

func (m *APIModule) restorePhoto(c *fiber.Ctx) error {
	meta, err := m.photos.Restore(c.Context(), c.Params("id"), requesterFromQuery(c))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, meta, "Photo restored")
}

func (m *APIModule) photoStats(c *fiber.Ctx) error {
	stats, err := m.photos.Stats(c.Context(), c.Query("uploader_id"))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, stats, "Stats retrieved")
}

func (m *APIModule) grantPhotoAccess(c *fiber.Ctx) error {
	var body grantBody
	if err := c.BodyParser(&body); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	granter := c.Get("X-Uploader-ID")
	if granter == "" {
		return respondBadRequest(c, "X-Uploader-ID header is required")
	}

	grant, err := m.photos.Grant(c.Context(), &photo.GrantAccessRequest{
		PhotoID:    c.Params("id"),
		GranterID:  granter,
		GranteeID:  body.GranteeID,
		Level:      body.Level,
		TTLSeconds: body.TTLSeconds,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, grant, "Access granted")
}

// --- tools ---

func (m *APIModule) qrcodeHandler(c *fiber.Ctx) error {
	content := c.Query("content")
	if content == "" {
		return respondBadRequest(c, "content is required")
	}
	size := c.QueryInt("size", 256)
	if size < 64 {
		size = 64
	}
	if size > 1024 {
		size = 1024
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return respondErr(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

func (m *APIModule) getCaptcha(c *fiber.Ctx) error {
	challenge, err := m.captchas.Generate(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, challenge, "Captcha generated")
}

func (m *APIModule) verifyCaptcha(c *fiber.Ctx) error {
	var body verifyBody
	if err := c.BodyParser(&body); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	valid, err := m.captchas.Verify(c.Context(), body.ChallengeID, body.Answer)
	if err != nil {
		return respondErr(c, err)
	}
	message := "Captcha verified"
	if !valid {
		message = "Captcha verification failed"
	}
	return respond(c, fiber.StatusOK, fiber.Map{"valid": valid}, message)
}

// --- activities ---

func (m *APIModule) listActivities(c *fiber.Ctx) error {
	resp, err := m.activities.ListActivities(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		return respondErr(c, err)
	}
	return respond(c, fiber.StatusOK, resp, "Activities retrieved")
}

// --- health ---

func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	modules := make(map[string]any, len(m.healthSources))
	healthy := true
	for _, src := range m.healthSources {
		status := src.check.Health(c.Context())
		if !status.Healthy {
			healthy = false
		}
		modules[src.name] = fiber.Map{
			"healthy": status.Healthy,
			"message": status.Message,
			"details": status.Details,
		}
	}

	code := fiber.StatusOK
	state := "healthy"
	message := "All modules healthy"
	if !healthy {
		code = fiber.StatusServiceUnavailable
		state = "degraded"
		message = "One or more modules unhealthy"
	}
	return c.Status(code).JSON(Envelope{
		Success: healthy,
		Data:    fiber.Map{"status": state, "modules": modules},
		Message: message,
	})
}

// --- helpers ---

// uploaderFromForm resolves the acting user for multipart endpoints:
// X-Uploader-ID header first, uploader_id form field second.
func uploaderFromForm(c *fiber.Ctx) string {
	if id := c.Get("X-Uploader-ID"); id != "" {
		return id
	}
	return c.FormValue("uploader_id")
}

// requesterFromQuery resolves the acting user for read endpoints:
// X-Uploader-ID header first, requester_id query parameter second.
func requesterFromQuery(c *fiber.Ctx) string {
	if id := c.Get("X-Uploader-ID"); id != "" {
		return id
	}
	return c.Query("requester_id")
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// splitCSV splits a comma-separated query value, dropping empty parts.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC3339", value)
	}
	return &t, nil
}
