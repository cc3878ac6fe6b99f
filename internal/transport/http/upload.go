package http

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// uploadedFile is the "file" part of a multipart request plus its form
// fields.
type uploadedFile struct {
	name string
	data []byte
	form func(key string) string
}

// readUpload reads the multipart "file" field. The display name is the
// "name" form value, falling back to the uploaded file name.
func readUpload(r *http.Request) (*uploadedFile, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, maxBytesErr
		}
		return nil, apierrors.ErrValidation("file", "request must be multipart/form-data")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, apierrors.ErrValidation("file", "file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}
	return &uploadedFile{name: name, data: data, form: r.FormValue}, nil
}

func (u *uploadedFile) reader() io.Reader {
	return bytes.NewReader(u.data)
}

// formBool parses an optional boolean form field.
func formBool(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

// sendAttachment writes body as a download.
func sendAttachment(w http.ResponseWriter, contentType, filename string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}
