package handlers

import (
	"fmt"
	"io"

	"bosma/internal/middleware"
	"bosma/internal/services"

	"github.com/gofiber/fiber/v2"
)

// maxAssetSize bounds a single uploaded file.
const maxAssetSize = 10 << 20

// AssetHandler handles uploads of design assets.
type AssetHandler struct {
	assets *services.AssetService
}

func NewAssetHandler(assets *services.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

func (h *AssetHandler) RegisterRoutes(router fiber.Router) {
	assetRoutes := router.Group("/assets")
	assetRoutes.Post("/", h.HandleUpload)
	assetRoutes.Get("/", h.HandleList)
	assetRoutes.Delete("/:id", h.HandleDelete)
}

// HandleUpload accepts a multipart "file" field.
func (h *AssetHandler) HandleUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file provided")
	}
	if header.Size > maxAssetSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d bytes", maxAssetSize))
	}

	file, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
	}

	asset, err := h.assets.Upload(
		c.UserContext(),
		middleware.CurrentActor(c).UserID,
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(asset)
}

func (h *AssetHandler) HandleList(c *fiber.Ctx) error {
	assets, err := h.assets.List(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(assets)
}

// HandleDelete deletes an asset and reports how many lines still referenced it.
func (h *AssetHandler) HandleDelete(c *fiber.Ctx) error {
	assetID := c.Params("id")
	usage, err := h.assets.Delete(c.UserContext(), middleware.CurrentActor(c).UserID, assetID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Asset with ID %s has been deleted", assetID),
		"usage":   usage,
	})
}
