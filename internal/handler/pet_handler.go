package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/havenpaws/shelter-api/internal/models"
	"github.com/havenpaws/shelter-api/internal/service"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
	"github.com/havenpaws/shelter-api/pkg/response"
)

// PetHandler exposes pet endpoints. Create and Update accept either JSON or
// multipart form data; the multipart form may carry an image file.
type PetHandler struct {
	pets *service.PetService
}

// NewPetHandler constructs PetHandler.
func NewPetHandler(pets *service.PetService) *PetHandler {
	return &PetHandler{pets: pets}
}

// List godoc
// @Summary List pets
// @Tags Pets
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name or breed"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /pets [get]
func (h *PetHandler) List(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.PetFilter
	if status := c.Query("status"); status != "" {
		v := models.PetStatus(status)
		filter.Status = &v
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortOrder = c.Query("order")

	pets, pagination, err := h.pets.List(c.Request.Context(), sub, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pets, pagination)
}

// Get godoc
// @Summary Get pet detail with medical history
// @Tags Pets
// @Produce json
// @Param id path string true "Pet ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pets/{id} [get]
func (h *PetHandler) Get(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.pets.Get(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create pet
// @Tags Pets
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param payload body service.CreatePetRequest true "Pet payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /pets [post]
func (h *PetHandler) Create(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreatePetRequest
	var image *service.ImageUpload
	if isMultipart(c) {
		fields, upload, err := bindPetForm(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		req = service.CreatePetRequest(*fields)
		image = upload
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pet payload"))
			return
		}
	}

	pet, err := h.pets.Create(c.Request.Context(), sub, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pet)
}

// Update godoc
// @Summary Update pet
// @Tags Pets
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Pet ID"
// @Param payload body service.UpdatePetRequest true "Pet payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pets/{id} [put]
func (h *PetHandler) Update(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdatePetRequest
	var image *service.ImageUpload
	if isMultipart(c) {
		fields, upload, err := bindPetForm(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		req = service.UpdatePetRequest(*fields)
		image = upload
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pet payload"))
			return
		}
	}

	pet, err := h.pets.Update(c.Request.Context(), sub, c.Param("id"), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pet, nil)
}

// Delete godoc
// @Summary Delete pet with its history
// @Tags Pets
// @Produce json
// @Param id path string true "Pet ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pets/{id} [delete]
func (h *PetHandler) Delete(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.pets.Delete(c.Request.Context(), sub, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindPetForm extracts pet fields and the optional image file from a
// multipart form. Field-level validation happens in the service.
func bindPetForm(c *gin.Context) (*service.CreatePetRequest, *service.ImageUpload, error) {
	req := &service.CreatePetRequest{
		Name:   strings.TrimSpace(c.PostForm("name")),
		Breed:  strings.TrimSpace(c.PostForm("breed")),
		Gender: c.PostForm("gender"),
		Status: c.PostForm("status"),
	}
	if raw := c.PostForm("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, appErrors.Validation([]appErrors.FieldError{{Field: "age", Reason: "must be an integer"}})
		}
		req.Age = age
	}
	if v := c.PostForm("description"); v != "" {
		req.Description = &v
	}
	if v := c.PostForm("shelter_code"); v != "" {
		req.ShelterCode = &v
	}
	// External image reference; an uploaded file still wins in the service.
	if v := c.PostForm("image_url"); v != "" {
		req.ImageURL = &v
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return req, nil, nil
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image upload")
	}
	upload, err := readUpload(file, header)
	if err != nil {
		return nil, nil, err
	}
	return req, upload, nil
}

func readUpload(file multipart.File, header *multipart.FileHeader) (*service.ImageUpload, error) {
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read image upload")
	}
	return &service.ImageUpload{Filename: header.Filename, Data: data}, nil
}
