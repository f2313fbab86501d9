// Package policy содержит статическую таблицу правил загрузки по категориям:
// допустимые MIME-типы, лимит размера и целевой бакет.
package policy

import (
	"fmt"

	"github.com/yourname/upload_lite/internal/models"
)

// Bucket — целевое хранилище для категории.
type Bucket string

const (
	BucketImages    Bucket = "images"
	BucketVideos    Bucket = "videos"
	BucketAudio     Bucket = "audio"
	BucketDocuments Bucket = "documents"
	BucketGeneral   Bucket = "general"
)

var knownBuckets = map[Bucket]struct{}{
	BucketImages:    {},
	BucketVideos:    {},
	BucketAudio:     {},
	BucketDocuments: {},
	BucketGeneral:   {},
}

// CategoryPolicy — правила одной категории; неизменяема после загрузки.
type CategoryPolicy struct {
	Category    string
	AllowedMIME map[string]struct{}
	MaxBytes    int64
	Bucket      Bucket
}

// AllowsMIME сообщает, допустим ли тип. Пустой и octet-stream пропускаем:
// тип чанковой загрузки не всегда определим на стороне сервера.
func (p CategoryPolicy) AllowsMIME(mime string) bool {
	if mime == "" || mime == "application/octet-stream" {
		return true
	}
	if _, ok := p.AllowedMIME["*"]; ok {
		return true
	}
	_, ok := p.AllowedMIME[mime]
	return ok
}

// Table — справочник категорий, загружается один раз на старте.
type Table struct {
	byName map[string]CategoryPolicy
}

// NewTable валидирует и индексирует список политик.
func NewTable(policies []CategoryPolicy) (*Table, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("category table is empty")
	}

	byName := make(map[string]CategoryPolicy, len(policies))
	for _, p := range policies {
		if p.Category == "" {
			return nil, fmt.Errorf("category name is empty")
		}
		if _, dup := byName[p.Category]; dup {
			return nil, fmt.Errorf("duplicate category %q", p.Category)
		}
		if len(p.AllowedMIME) == 0 {
			return nil, fmt.Errorf("category %q: allowed mime set is empty", p.Category)
		}
		if p.MaxBytes <= 0 {
			return nil, fmt.Errorf("category %q: max bytes must be positive", p.Category)
		}
		if _, ok := knownBuckets[p.Bucket]; !ok {
			return nil, fmt.Errorf("category %q: unknown bucket %q", p.Category, p.Bucket)
		}
		byName[p.Category] = p
	}

	return &Table{byName: byName}, nil
}

// Lookup возвращает политику категории либо ErrUnknownCategory.
func (t *Table) Lookup(category string) (CategoryPolicy, error) {
	p, ok := t.byName[category]
	if !ok {
		return CategoryPolicy{}, fmt.Errorf("%w: %q", models.ErrUnknownCategory, category)
	}
	return p, nil
}
