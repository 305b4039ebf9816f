// Package imagedata разбирает изображения, переданные как base64 или data URI.
package imagedata

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMIMEType используется, если заголовок data URI отсутствует
const DefaultMIMEType = "image/jpeg"

var dataURIHeader = regexp.MustCompile(`^data:(image/[A-Za-z0-9.+-]+);base64,`)

// Split отделяет заголовок data:image/<fmt>;base64, от полезной нагрузки.
// Возвращает MIME-тип изображения и чистую base64-строку.
func Split(image string) (mimeType, payload string) {
	image = strings.TrimSpace(image)
	m := dataURIHeader.FindStringSubmatch(image)
	if m == nil {
		return DefaultMIMEType, image
	}
	mimeType = strings.ToLower(m[1])
	if mimeType == "image/jpg" {
		mimeType = DefaultMIMEType
	}
	return mimeType, image[len(m[0]):]
}

// DataURI собирает data URI из MIME-типа и base64-строки
func DataURI(mimeType, payload string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, payload)
}

// Decode декодирует изображение в байты
func Decode(image string) (mimeType string, data []byte, err error) {
	mimeType, payload := Split(image)
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// браузеры иногда отдают base64 без паддинга
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	return mimeType, data, nil
}

// Extension возвращает расширение файла для MIME-типа изображения
func Extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
