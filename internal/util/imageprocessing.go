package util

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/h2non/bimg"
)

const webpQuality = 75

// decodable image types, keyed by the name bimg reports for the file content
var acceptedImageTypes = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// WebPImage is an upload re-encoded for object storage.
type WebPImage struct {
	Body     *bytes.Reader
	Size     int64
	MimeType string
}

// ProcessSquareImage reads an uploaded image, checks it by content rather than
// by the client's Content-Type, and re-encodes it as a size x size webp.
func ProcessSquareImage(fileHeader *multipart.FileHeader, fieldName string, size int) (WebPImage, error) {
	result := WebPImage{}

	if fileHeader.Size > constant.MAX_FILE_SIZE {
		return result, imageError(fieldName, fmt.Sprintf("Image size exceeded %dMB limit", constant.MAX_FILE_SIZE/(1024*1024)))
	}

	raw, err := readUpload(fileHeader, fieldName)
	if err != nil {
		return result, err
	}

	kind := bimg.DetermineImageTypeName(raw)
	if !acceptedImageTypes[kind] {
		return result, imageError(fieldName, "File must be a jpeg, png, gif or webp image")
	}

	output, err := bimg.NewImage(raw).Process(bimg.Options{
		Width:   size,
		Height:  size,
		Quality: webpQuality,
		Type:    bimg.WEBP,
		Crop:    true,
		Force:   true,
	})
	if err != nil {
		return result, imageError(fieldName, "Failed to process image. File may be corrupted or not a valid image")
	}

	result.Body = bytes.NewReader(output)
	result.Size = int64(len(output))
	result.MimeType = "image/webp"

	return result, nil
}

func readUpload(fileHeader *multipart.FileHeader, fieldName string) ([]byte, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// one byte past the limit catches a lying fileHeader.Size
	raw, err := io.ReadAll(io.LimitReader(src, constant.MAX_FILE_SIZE+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if len(raw) > constant.MAX_FILE_SIZE {
		return nil, imageError(fieldName, fmt.Sprintf("Image size exceeded %dMB limit", constant.MAX_FILE_SIZE/(1024*1024)))
	}

	return raw, nil
}

func imageError(fieldName string, message string) *model.ValidationError {
	return &model.ValidationError{
		Code:    constant.ERR_VALIDATION_CODE,
		Message: message,
		Param:   fieldName,
	}
}
