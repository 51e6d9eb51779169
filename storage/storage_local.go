package storage // import "github.com/yomu-app/yomu/storage"

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yomu-app/yomu/config"
	"github.com/yomu-app/yomu/log"
)

var coverExtByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// SaveCover stores an uploaded cover image under the covers directory,
// named after the manga slug. Returns the stored path.
func SaveCover(fileHeader *multipart.FileHeader, slug string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %v", err)
	}
	defer file.Close()

	// Sniff the real content type, the client header is not trusted.
	buff := make([]byte, 512)
	n, err := file.Read(buff)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}
	fileType := http.DetectContentType(buff[:n])
	if !config.CheckSupportedCoverType(fileType) {
		return "", fmt.Errorf("unsupported cover type: %s", fileType)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek upload: %v", err)
	}

	coversDir := config.CoversDir()
	if err := os.MkdirAll(coversDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %v", err)
	}

	// Calculate hash and save the file
	hash := sha256.New()
	filePath := filepath.Join(coversDir, slug+coverExtByType[fileType])
	outFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(io.MultiWriter(outFile, hash), file); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}

	fileHash := hex.EncodeToString(hash.Sum(nil))
	log.Debug("Stored cover", zap.String("path", filePath), zap.String("hash", fileHash))

	return filePath, nil
}

// OpenCover opens a stored cover by path and reports its content type.
func OpenCover(path string) (*os.File, string, error) {
	// Covers never leave the covers directory.
	coversDir := config.CoversDir()
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(coversDir, filepath.Base(cleaned))
	}

	file, err := os.Open(cleaned)
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	for t, ext := range coverExtByType {
		if filepath.Ext(cleaned) == ext {
			contentType = t
			break
		}
	}
	return file, contentType, nil
}

// RemoveCover deletes a stored cover, ignoring a missing file.
func RemoveCover(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
