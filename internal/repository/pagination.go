package repository

import "gorm.io/gorm"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pageable is a 1-based page request.
type Pageable struct {
	Page int `form:"page" json:"page"`
	Size int `form:"size" json:"size"`
}

func (p Pageable) Normalize() Pageable {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Pageable) Offset() int {
	return (p.Page - 1) * p.Size
}

type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// paginate counts q, then loads the requested slice ordered by newest first.
func paginate[T any](q *gorm.DB, p Pageable, preloads ...string) (Page[T], error) {
	p = p.Normalize()
	result := Page[T]{Items: []T{}, Page: p.Page, Size: p.Size}

	if err := q.Session(&gorm.Session{}).Count(&result.TotalItems).Error; err != nil {
		return result, err
	}
	if result.TotalItems == 0 {
		return result, nil
	}
	result.TotalPages = int((result.TotalItems + int64(p.Size) - 1) / int64(p.Size))

	find := q.Session(&gorm.Session{})
	for _, name := range preloads {
		find = find.Preload(name)
	}
	err := find.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Size).
		Find(&result.Items).Error
	return result, err
}
