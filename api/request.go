package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
	"github.com/linkme-io/linkme-backend/services"
)

const (
	maxJSONBodySize   = 1 << 20
	maxUploadBodySize = 5 << 20
)

// decodeJSON reads the request body into v. An empty body is accepted when
// optional is true and leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxJSONBodySize)
		}
		return errs.NewBadRequestError("failed to read request body")
	}
	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		if optional {
			return nil
		}
		return errs.NewMalformedPayloadError("request body", errors.New("empty body"))
	}
	if err := json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(v); err != nil {
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

// urlUUID parses a UUID path parameter.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(name, "must be a valid UUID")
	}
	return id, nil
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewInvalidFieldError(name, "must be an integer")
	}
	return n, nil
}

func queryPage(r *http.Request) (database.Page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return database.Page{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return database.Page{}, err
	}
	if limit < 0 {
		return database.Page{}, errs.NewInvalidFieldError("limit", "must not be negative")
	}
	if offset < 0 {
		return database.Page{}, errs.NewInvalidFieldError("offset", "must not be negative")
	}
	return database.Page{Limit: limit, Offset: offset}, nil
}

// readUpload returns the first file of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request) (services.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
	if err := r.ParseMultipartForm(maxUploadBodySize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.Upload{}, errs.NewMaxBodySizeExceededError(maxUploadBodySize)
		}
		return services.Upload{}, errs.NewMalformedPayloadError("multipart form", err)
	}
	for _, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return services.Upload{}, errs.NewMalformedPayloadError("multipart file", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return services.Upload{}, errs.NewMalformedPayloadError("multipart file", err)
		}
		contentType := headers[0].Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		return services.Upload{Filename: headers[0].Filename, ContentType: contentType, Data: data}, nil
	}
	return services.Upload{}, errs.NewMissingRequiredFieldError("file")
}

type uploadFunc func(ctx context.Context, id, userID uuid.UUID, upload services.Upload) (*models.Profile, error)
