package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pdfgate/internal/http/middleware"
	"pdfgate/internal/model"
	"pdfgate/internal/resolver"
	"pdfgate/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers translate between HTTP and the document service; authorization
// itself happens inside the service's pipeline.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.PDFService, serverIP string) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Query-form document endpoint, also the landing point for legacy links
	app.Get("/", ServeFromQuery(svc, serverIP))

	// Pretty-permalink document endpoint
	app.Get("/pdf/:pid/:lid/:action?", ServePDF(svc, serverIP))

	// Downloadable documents for one entry, with signed URLs
	app.Get("/entries/:lid/documents", ListEntryDocuments(svc, serverIP))
}

// HealthCheck returns a handler that checks DB connectivity.
//
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe returns a plain liveness handler with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ServePDF handles the pretty-permalink form
// /pdf/{config_id}/{entry_id}/[download/].
//
// @Summary Serve a guarded document
// @Produce application/pdf
// @Param pid path string true "configuration id"
// @Param lid path string true "entry id"
// @Param action path string false "set to download for attachment disposition"
// @Router /pdf/{pid}/{lid}/{action} [get]
func ServePDF(svc service.PDFService, serverIP string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action := model.ActionView
		if c.Params("action") == "download" {
			action = model.ActionDownload
		}
		return serveDocument(c, svc, serverIP, c.Params("pid"), c.Params("lid"), action)
	}
}

// ServeFromQuery handles the query form /?gpdf=1&pid={config_id}&lid={entry_id}.
// Legacy links carry template and aid instead of pid; those are resolved to
// a configuration id first.
func ServeFromQuery(svc service.PDFService, serverIP string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("gpdf") != "1" {
			return fiber.ErrNotFound
		}

		entryID := c.Query("lid")
		configID := c.Query("pid")

		if configID == "" {
			template := c.Query("template")
			if template == "" {
				return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "pid or template is required")
			}

			aid, _ := strconv.Atoi(c.Query("aid"))
			resolved, err := svc.ResolveLegacyLink(c.UserContext(), entryID, template, aid)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrIDRequired):
					return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "lid and template are required")
				case errors.Is(err, service.ErrEntryNotFound), errors.Is(err, resolver.ErrNotFound):
					return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
				default:
					return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				}
			}
			configID = resolved
		}

		action := model.ActionView
		if c.Query("action") == "download" {
			action = model.ActionDownload
		}
		return serveDocument(c, svc, serverIP, configID, entryID, action)
	}
}

// ListEntryDocuments returns the documents applicable to an entry that the
// requester is authorized to access. The signed URLs in the listing grant
// an ownership bypass, so the listing itself runs the same authorization
// as a direct document request.
//
// @Summary List documents for an entry
// @Produce json
// @Param lid path string true "entry id"
// @Router /entries/{lid}/documents [get]
func ListEntryDocuments(svc service.PDFService, serverIP string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListForEntry(c.UserContext(), c.Params("lid"), authContext(c, serverIP, model.ActionView))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrIDRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "entry id is required")
			case errors.Is(err, service.ErrEntryNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "entry not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(fiber.Map{"documents": docs})
	}
}

// authContext assembles the immutable authorization context, once, from
// request state; nothing downstream reads the request again.
func authContext(c *fiber.Ctx, serverIP string, action model.Action) *model.AuthorizationContext {
	return &model.AuthorizationContext{
		Action:      action,
		RequestedAt: time.Now(),
		Requester:   model.Requester{UserID: middleware.UserIDFromCtx(c)},
		RequesterIP: middleware.ClientIPFromCtx(c),
		ServerIP:    serverIP,
		RequestURL:  c.BaseURL() + c.OriginalURL(),
		Signature:   c.Query("signature"),
		Expires:     c.Query("expires"),
	}
}

// serveDocument authorizes and streams one document.
func serveDocument(c *fiber.Ctx, svc service.PDFService, serverIP, configID, entryID string, action model.Action) error {
	res, err := svc.Serve(c.UserContext(), configID, entryID, authContext(c, serverIP, action))
	if err != nil {
		if errors.Is(err, service.ErrIDRequired) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "pid and lid are required")
		}
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	switch res.Decision.Status {
	case model.StatusRequiresAuthentication:
		return writeError(c, fiber.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "log in to access this document")
	case model.StatusDenied:
		status, code, message := denialResponse(res.Decision.Reason)
		return writeError(c, status, code, message)
	}

	doc := res.Document
	disposition := "inline"
	if action == model.ActionDownload {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	return c.SendStream(doc.Content, streamSize(doc.Size))
}

// streamSize converts a document size to SendStream's int parameter.
// Sizes past 2GiB fall back to chunked streaming so the conversion never
// truncates on 32-bit builds.
func streamSize(n int64) int {
	if n > math.MaxInt32 {
		return -1
	}
	return int(n)
}

// denialResponse maps a denial reason to an HTTP status and error envelope.
// Reasons that would reveal whether a guarded document exists collapse to a
// plain not-found.
func denialResponse(reason model.DenyReason) (int, string, string) {
	switch reason {
	case model.ReasonInvalidEntry, model.ReasonInvalidConfig, model.ReasonConditionalLogicFailed:
		return fiber.StatusNotFound, "NOT_FOUND", "document not found"
	case model.ReasonInactive:
		return fiber.StatusGone, "DOCUMENT_INACTIVE", "document is no longer available"
	case model.ReasonTimeoutExpired:
		return fiber.StatusForbidden, "TIMEOUT_EXPIRED", "the access window for this document has expired"
	default:
		return fiber.StatusForbidden, "ACCESS_DENIED", "you are not allowed to access this document"
	}
}
