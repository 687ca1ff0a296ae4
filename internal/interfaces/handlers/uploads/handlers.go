package uploads

import (
	uploadsvc "travel-backend/internal/application/uploads"
	"travel-backend/internal/middleware"
	"travel-backend/internal/pkg/apperr"
	"travel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadAvatar POST /uploads/avatar
func (h *Handlers) UploadAvatar(c *fiber.Ctx) error {
	return h.signed(c, uploadsvc.BucketAvatars)
}

// UploadTravelCover POST /uploads/travel-cover
func (h *Handlers) UploadTravelCover(c *fiber.Ctx) error {
	return h.signed(c, uploadsvc.BucketTravelCovers)
}

func (h *Handlers) signed(c *fiber.Ctx, bucket string) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.GetSignedUploadURL(c.UserContext(), bucket, actor.UserID, req.FileName)
	if err != nil {
		if apperr.KindOf(err) != apperr.Internal {
			return response.FromError(c, err)
		}
		log.Error().Err(err).Str("bucket", bucket).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
