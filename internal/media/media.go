// Package media сохраняет фотографии из отчетов и отдает ссылку на них.
package media

import (
	"context"

	"github.com/shenikar/binalert/pkg/imagedata"
)

// InlineStore хранит изображение прямо в отчете в виде data URI
type InlineStore struct{}

func NewInlineStore() *InlineStore {
	return &InlineStore{}
}

// Save возвращает изображение как data URI, добавляя заголовок при необходимости
func (s *InlineStore) Save(_ context.Context, _ string, image string) (string, error) {
	mimeType, payload := imagedata.Split(image)
	return imagedata.DataURI(mimeType, payload), nil
}
