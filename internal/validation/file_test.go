package validation

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a parsed multipart part the way net/http would hand it to a handler
func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"text/plain", true},
		{"image/jpeg", true},
		{"image/png", true},
		{"application/json", true},
		{"text/plain; charset=utf-8", true},
		{"Image/PNG", true},
		{"application/pdf", false},
		{"image/gif", false},
		{"text/html", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepts(tt.mimeType))
		})
	}
}

func TestValidateFile(t *testing.T) {
	t.Run("nil header", func(t *testing.T) {
		err := ValidateFile(nil, UploadConstraints)
		assert.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("accepted type", func(t *testing.T) {
		header := fileHeader(t, "hello.txt", "text/plain", []byte("hello world"))
		assert.NoError(t, ValidateFile(header, UploadConstraints))
	})

	t.Run("rejected type names allowed types", func(t *testing.T) {
		header := fileHeader(t, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
		err := ValidateFile(header, UploadConstraints)
		require.ErrorIs(t, err, ErrUnsupportedType)
		for _, allowed := range []string{"text/plain", "image/jpeg", "image/png", "application/json"} {
			assert.Contains(t, err.Error(), allowed)
		}
	})

	t.Run("missing content type", func(t *testing.T) {
		header := fileHeader(t, "blob", "", []byte("data"))
		assert.ErrorIs(t, ValidateFile(header, UploadConstraints), ErrUnsupportedType)
	})

	t.Run("too large", func(t *testing.T) {
		header := fileHeader(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 2048))
		err := ValidateFile(header, UploadConstraints.WithMaxSize(1024))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("declared type is trusted without sniffing", func(t *testing.T) {
		header := fileHeader(t, "fake.png", "image/png", []byte("just text"))
		assert.NoError(t, ValidateFile(header, UploadConstraints))
	})
}

func TestValidateFileSniffing(t *testing.T) {
	strict := UploadConstraints.WithSniffing(true)
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	t.Run("mismatched content rejected", func(t *testing.T) {
		header := fileHeader(t, "fake.png", "image/png", []byte("just text"))
		err := ValidateFile(header, strict)
		require.ErrorIs(t, err, ErrUnsupportedType)
		assert.Contains(t, err.Error(), "declared image/png")
	})

	t.Run("png content accepted", func(t *testing.T) {
		header := fileHeader(t, "real.png", "image/png", pngMagic)
		assert.NoError(t, ValidateFile(header, strict))
	})

	t.Run("json accepted as json", func(t *testing.T) {
		header := fileHeader(t, "data.json", "application/json", []byte(`{"a": 1}`))
		assert.NoError(t, ValidateFile(header, strict))
	})

	t.Run("json accepted as plain text", func(t *testing.T) {
		header := fileHeader(t, "data.txt", "text/plain", []byte(`{"a": 1}`))
		assert.NoError(t, ValidateFile(header, strict))
	})
}

func TestNormalizeMimeType(t *testing.T) {
	assert.Equal(t, "text/plain", NormalizeMimeType("text/plain; charset=utf-8"))
	assert.Equal(t, "application/json", NormalizeMimeType(" Application/JSON "))
	assert.Equal(t, "", NormalizeMimeType(""))
}

func TestAllowedList(t *testing.T) {
	assert.Equal(t,
		[]string{"application/json", "image/jpeg", "image/png", "text/plain"},
		UploadConstraints.AllowedList(),
	)
}

func TestTooLarge(t *testing.T) {
	err := TooLarge(10 << 20)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, "file too large: maximum size is 10 MiB", err.Error())

	assert.Equal(t, "file too large: maximum size is 1.0 KiB", TooLarge(1<<10).Error())
}
