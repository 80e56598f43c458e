package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
	"github.com/arjun-saseendran/video-stack/internal/service"
)

// formFile spools the first file uploaded under the given multipart field to
// a temp file and returns its typed description. Returns (nil, nil) when the
// field is absent — whether the file was required is the workflow's call,
// not the parser's.
//
// The temp file keeps the original extension so the media store can derive a
// Content-Type from it. Ownership of the file passes to the caller: the
// media gateway removes it after upload, the handler removes it when the
// workflow errors out before reaching the gateway.
func (h *UserHandler) formFile(r *http.Request, field string) (*service.UploadedFile, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	fh := r.MultipartForm.File[field][0]

	src, err := fh.Open()
	if err != nil {
		return nil, apperror.Internal(fmt.Sprintf("failed to read %s upload", field), err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(h.tempDir, "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return nil, apperror.Internal(fmt.Sprintf("failed to spool %s upload", field), err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, apperror.Internal(fmt.Sprintf("failed to spool %s upload", field), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, apperror.Internal(fmt.Sprintf("failed to spool %s upload", field), err)
	}

	return &service.UploadedFile{
		Name:      fh.Filename,
		LocalPath: tmp.Name(),
		MIMEHint:  fh.Header.Get("Content-Type"),
	}, nil
}
