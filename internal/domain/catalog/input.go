package catalog

import (
	"io"
	"strings"
	"time"
)

// MaterialDraft is the full field set of a material being created.
type MaterialDraft struct {
	Title       string
	Type        MaterialType
	CategoryID  uint
	Description string
	Author      string
	Level       MaterialLevel
	Duration    string
	Pages       *int
	Lessons     *int
	PublishDate *time.Time
	URL         *string
	IsFeatured  bool
}

// Problems lists missing required fields and out-of-enum values, in field order.
func (d MaterialDraft) Problems() []string {
	var out []string
	if strings.TrimSpace(d.Title) == "" {
		out = append(out, "title is required")
	}
	switch {
	case d.Type == "":
		out = append(out, "type is required")
	case !d.Type.Valid():
		out = append(out, "type is invalid")
	}
	if d.CategoryID == 0 {
		out = append(out, "category is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		out = append(out, "description is required")
	}
	if strings.TrimSpace(d.Author) == "" {
		out = append(out, "author is required")
	}
	switch {
	case d.Level == "":
		out = append(out, "level is required")
	case !d.Level.Valid():
		out = append(out, "level is invalid")
	}
	out = append(out, countProblems(d.Pages, d.Lessons)...)
	return out
}

// MaterialPatch carries only the fields an update changes. Nil means unchanged.
type MaterialPatch struct {
	Title       *string
	Type        *MaterialType
	CategoryID  *uint
	Description *string
	Author      *string
	Level       *MaterialLevel
	Duration    *string
	Pages       *int
	Lessons     *int
	PublishDate *time.Time
	URL         *string
	IsFeatured  *bool
	IsActive    *bool
}

func (p MaterialPatch) Problems() []string {
	var out []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		out = append(out, "title cannot be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		out = append(out, "type is invalid")
	}
	if p.CategoryID != nil && *p.CategoryID == 0 {
		out = append(out, "category cannot be empty")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		out = append(out, "description cannot be empty")
	}
	if p.Author != nil && strings.TrimSpace(*p.Author) == "" {
		out = append(out, "author cannot be empty")
	}
	if p.Level != nil && !p.Level.Valid() {
		out = append(out, "level is invalid")
	}
	out = append(out, countProblems(p.Pages, p.Lessons)...)
	return out
}

// Columns renders the patch as a column map for an UPDATE.
func (p MaterialPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Author != nil {
		cols["author"] = strings.TrimSpace(*p.Author)
	}
	if p.Level != nil {
		cols["level"] = *p.Level
	}
	if p.Duration != nil {
		cols["duration"] = strings.TrimSpace(*p.Duration)
	}
	if p.Pages != nil {
		cols["pages"] = *p.Pages
	}
	if p.Lessons != nil {
		cols["lessons"] = *p.Lessons
	}
	if p.PublishDate != nil {
		cols["publish_date"] = p.PublishDate.UTC()
	}
	if p.URL != nil {
		cols["url"] = *p.URL
	}
	if p.IsFeatured != nil {
		cols["is_featured"] = *p.IsFeatured
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	return cols
}

func countProblems(pages, lessons *int) []string {
	var out []string
	if pages != nil && *pages < 0 {
		out = append(out, "pages cannot be negative")
	}
	if lessons != nil && *lessons < 0 {
		out = append(out, "lessons cannot be negative")
	}
	return out
}

// AssetUpload is a binary part to be stored before the owning row is written.
type AssetUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// MaterialAssets groups the optional uploads of a create or update.
type MaterialAssets struct {
	File      *AssetUpload
	Thumbnail *AssetUpload
}

func (a MaterialAssets) Empty() bool {
	return a.File == nil && a.Thumbnail == nil
}
