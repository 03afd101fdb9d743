package handler

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

func multipartContext(t *testing.T, fields map[string]string, fileField, fileName string, fileData []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/pets", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c
}

func TestBindPetFormReadsImageURLField(t *testing.T) {
	c := multipartContext(t, map[string]string{
		"name":      "Biscuit",
		"breed":     "corgi",
		"gender":    "male",
		"image_url": "https://cdn.example.com/biscuit.jpg",
	}, "", "", nil)

	req, upload, err := bindPetForm(c)
	require.NoError(t, err)
	assert.Nil(t, upload)
	require.NotNil(t, req.ImageURL)
	assert.Equal(t, "https://cdn.example.com/biscuit.jpg", *req.ImageURL)
	assert.Equal(t, "Biscuit", req.Name)
}

func TestBindPetFormReadsUploadedFile(t *testing.T) {
	c := multipartContext(t, map[string]string{
		"name":   "Biscuit",
		"breed":  "corgi",
		"gender": "male",
		"age":    "2",
	}, "image", "biscuit.jpg", []byte{0xff, 0xd8, 0xff})

	req, upload, err := bindPetForm(c)
	require.NoError(t, err)
	assert.Equal(t, 2, req.Age)
	require.NotNil(t, upload)
	assert.Equal(t, "biscuit.jpg", upload.Filename)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, upload.Data)
}

func TestBindPetFormRejectsNonIntegerAge(t *testing.T) {
	c := multipartContext(t, map[string]string{
		"name":   "Biscuit",
		"breed":  "corgi",
		"gender": "male",
		"age":    "two",
	}, "", "", nil)

	_, _, err := bindPetForm(c)
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.NotEmpty(t, appErr.Details)
	assert.Equal(t, "age", appErr.Details[0].Field)
}
