package utils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("title", "shirt"))
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(MaxUploadMemory))
	return r
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	r := multipartRequest(t, "productImage", "shirt.png", "image/png", []byte("png-bytes"))

	path, err := SaveImage(r, "productImage", dir, "products")
	require.NoError(t, err)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(saved))
	assert.Contains(t, path, "products/")
}

func TestSaveImage_RejectsNonImages(t *testing.T) {
	r := multipartRequest(t, "productImage", "doc.pdf", "application/pdf", []byte("%PDF"))

	_, err := SaveImage(r, "productImage", t.TempDir(), "products")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSaveImage_Missing(t *testing.T) {
	r := multipartRequest(t, "", "", "", nil)

	_, err := SaveImage(r, "productImage", t.TempDir(), "products")
	assert.ErrorIs(t, err, ErrNoImage)
}
