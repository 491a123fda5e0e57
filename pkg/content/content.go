// Package content описывает передаваемый контент файловой сессии.
package content

import (
	"fmt"
	"strings"
)

// MmContent описывает разделяемый контент: ссылку на данные, размер,
// MIME тип и имя файла. Значение фиксируется при создании сессии и
// далее не изменяется.
type MmContent struct {
	uri  string
	size int64
	mime string
	name string
}

// NewMmContent создает описатель контента.
func NewMmContent(uri string, size int64, mime, name string) (MmContent, error) {
	if uri == "" {
		return MmContent{}, fmt.Errorf("пустая ссылка на контент")
	}
	if size < 0 {
		return MmContent{}, fmt.Errorf("отрицательный размер контента: %d", size)
	}
	return MmContent{uri: uri, size: size, mime: mime, name: name}, nil
}

// Uri возвращает ссылку на данные контента.
func (c MmContent) Uri() string { return c.uri }

// Size возвращает размер контента в байтах.
func (c MmContent) Size() int64 { return c.size }

// Encoding возвращает MIME тип контента.
func (c MmContent) Encoding() string { return c.mime }

// Name возвращает имя файла.
func (c MmContent) Name() string { return c.name }

// IsZero сообщает, что описатель не был установлен. Используется для
// опциональной иконки файла.
func (c MmContent) IsZero() bool { return c.uri == "" }

// IsImage сообщает, является ли контент изображением.
func (c MmContent) IsImage() bool {
	return strings.HasPrefix(c.mime, "image/")
}

// String возвращает краткое описание контента для логов.
func (c MmContent) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", c.name, c.mime, c.size)
}
