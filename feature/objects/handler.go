package objects

import (
	"errors"

	"s3-client/core/logger"
	"s3-client/core/naming"
	"s3-client/core/objectstore"
	"s3-client/core/storage"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for buckets and objects.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the bucket and object routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/buckets/:bucket")
	group.Put("", h.HandleCreateBucket)
	group.Delete("", h.HandleDeleteBucket)
	group.Get("/objects", h.HandleList)
	group.Get("/prefixes", h.HandlePrefixes)
	group.Put("/objects/*", h.HandlePut)
	group.Get("/objects/*", h.HandleGet)
	group.Post("/delete", h.HandleDelete)
}

// HandleCreateBucket creates a bucket if it does not exist.
func (h *Handler) HandleCreateBucket(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	bucket := utils.CopyString(c.Params("bucket"))

	name, err := h.service.CreateBucket(c.Context(), bucket, c.Query("location"))
	if err != nil {
		return h.fail(c, l, "Create bucket failed", err)
	}
	l.Info("Bucket ready", zap.String("bucket", name))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"bucket": name})
}

// HandleDeleteBucket removes an empty bucket.
func (h *Handler) HandleDeleteBucket(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.DeleteBucket(c.Context(), c.Params("bucket")); err != nil {
		return h.fail(c, l, "Delete bucket failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleList lists every object under ?prefix=.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	bucket, prefix := c.Params("bucket"), c.Query("prefix")

	if c.QueryBool("stats") {
		objects, err := h.service.ListStats(c.Context(), bucket, prefix)
		if err != nil {
			return h.fail(c, l, "List failed", err)
		}
		return c.JSON(fiber.Map{"objects": objects, "count": len(objects)})
	}

	keys, err := h.service.ListKeys(c.Context(), bucket, prefix)
	if err != nil {
		return h.fail(c, l, "List failed", err)
	}
	return c.JSON(fiber.Map{"keys": keys, "count": len(keys)})
}

// HandlePrefixes returns the common prefixes for ?delimiter= (default "/").
func (h *Handler) HandlePrefixes(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	prefixes, err := h.service.Prefixes(c.Context(), c.Params("bucket"), c.Query("delimiter"))
	if err != nil {
		return h.fail(c, l, "List prefixes failed", err)
	}
	return c.JSON(fiber.Map{"prefixes": prefixes})
}

// HandlePut stores the request body. JSON bodies go through the client codec,
// ?raw=true stores the bytes as sent.
func (h *Handler) HandlePut(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	// Stored names must not alias the request buffer.
	bucket, key := utils.CopyString(c.Params("bucket")), utils.CopyString(c.Params("*"))
	create := c.QueryBool("create")

	var err error
	if c.QueryBool("raw") {
		err = h.service.PutRaw(c.Context(), bucket, key, c.Body(), create)
	} else {
		var value any
		if jsonErr := json.Unmarshal(c.Body(), &value); jsonErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body must be valid JSON", "details": jsonErr.Error()})
		}
		err = h.service.PutValue(c.Context(), bucket, key, value, create)
	}
	if err != nil {
		return h.fail(c, l, "Put failed", err)
	}

	l.Debug("Object stored", zap.String("bucket", bucket), zap.String("key", key), zap.Int("bytes", len(c.Body())))
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGet returns the decoded object, or its raw bytes with ?raw=true.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	bucket, key := c.Params("bucket"), c.Params("*")

	if c.QueryBool("raw") {
		data, err := h.service.GetRaw(c.Context(), bucket, key)
		if err != nil {
			return h.fail(c, l, "Get failed", err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
		return c.Send(data)
	}

	value, err := h.service.GetValue(c.Context(), bucket, key)
	if err != nil {
		return h.fail(c, l, "Get failed", err)
	}
	return c.JSON(value)
}

// HandleDelete removes the keys or the prefix in the request body.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}

	report, err := h.service.Delete(c.Context(), c.Params("bucket"), req)
	if errors.Is(err, ErrEmptyDeleteRequest) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		var batchErr *objectstore.BatchDeleteError
		if errors.As(err, &batchErr) && batchErr.Err == nil {
			l.Warn("Some keys were not deleted", zap.Int("failed", len(batchErr.Failed)))
			return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
				"report": report,
				"failed": batchErr.Failed,
			})
		}
		return h.fail(c, l, "Delete failed", err)
	}

	l.Info("Bulk delete completed", zap.Int("deleted", report.Deleted), zap.Int("chunks", report.Chunks))
	return c.JSON(report)
}

// fail maps err to a response: 400 for validation, the provider status when
// one is known, 500 otherwise.
func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	if naming.IsValidation(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	status := storage.StatusCode(err)
	if status >= 400 && status < 600 {
		l.Warn(msg, zap.Int("status", status), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
			"code":  storage.ErrorCode(err),
		})
	}

	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
