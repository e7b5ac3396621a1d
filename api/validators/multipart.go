package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

// formOverhead is the allowance for text fields and multipart framing on top of the file limit.
const formOverhead = 1 << 20

// FormFile is an uploaded file read into memory.
type FormFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// MultipartForm holds the text values and an optional file of a listing form.
type MultipartForm struct {
	values map[string][]string
	File   *FormFile
}

// Value returns the first value of key, or "".
func (f *MultipartForm) Value(key string) string {
	if f == nil {
		return ""
	}
	if v := f.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// ParseMultipart reads a multipart form whose file lives in fileField.
// At most maxFileBytes+1 bytes of the file are read, so an oversized upload is
// still seen as oversized downstream without buffering all of it.
func ParseMultipart(w http.ResponseWriter, r *http.Request, fileField string, maxFileBytes int64) (*MultipartForm, error) {
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected multipart/form-data body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes+formOverhead)
	if err := r.ParseMultipartForm(maxFileBytes + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodePayloadTooLarge, err, "file exceeds the upload limit")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	form := &MultipartForm{values: r.MultipartForm.Value}
	headers := r.MultipartForm.File[fileField]
	if len(headers) == 0 {
		return form, nil
	}
	file, err := readFormFile(headers[0], maxFileBytes)
	if err != nil {
		return nil, err
	}
	form.File = file
	return form, nil
}

func readFormFile(header *multipart.FileHeader, maxFileBytes int64) (*FormFile, error) {
	f, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxFileBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file")
	}
	return &FormFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
