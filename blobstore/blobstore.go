/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */

// Package blobstore stores the binary content of result images. Metadata
// lives in the database; a blob is addressed only by its key.
package blobstore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound       = errors.New("blob not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrInvalidKey         = errors.New("invalid blob key")
	ErrEmptyFile          = errors.New("file is empty")
)

// MaxImageSize is the largest accepted image upload (10 MiB).
const MaxImageSize = 10 << 20

// AllowedImageTypes lists the accepted image MIME types.
var AllowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Store is a blob storage backend.
type Store interface {
	// Put stores at most MaxImageSize bytes read from r under key.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ValidateImage checks the declared content type and size of an upload.
func ValidateImage(contentType string, size int64) error {
	if !AllowedImageTypes[contentType] {
		return ErrInvalidContentType
	}

	if size <= 0 {
		return ErrEmptyFile
	}

	if size > MaxImageSize {
		return ErrFileTooLarge
	}

	return nil
}

// NewImageKey returns a fresh key for an image of a patient.
func NewImageKey(patientID uuid.UUID) string {
	return path.Join("patients", patientID.String(), uuid.NewString())
}

// validKey rejects keys that are empty, absolute or escape the store root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}

	if path.Clean(key) != key {
		return ErrInvalidKey
	}

	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return ErrInvalidKey
		}
	}

	return nil
}

// copyLimited copies r into w and fails once more than MaxImageSize bytes
// arrive.
func copyLimited(w io.Writer, r io.Reader) (int64, error) {
	n, err := io.Copy(w, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return n, err
	}

	if n > MaxImageSize {
		return n, ErrFileTooLarge
	}

	if n == 0 {
		return 0, ErrEmptyFile
	}

	return n, nil
}
