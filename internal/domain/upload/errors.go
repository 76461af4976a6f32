package upload

import "errors"

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrInvalidEncoding = errors.New("invalid base64 image payload")
	ErrInvalidMimeType = errors.New("file type is not allowed")
	ErrNotFound        = errors.New("upload not found")
)
