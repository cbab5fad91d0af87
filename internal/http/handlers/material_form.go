package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/apierr"
)

const multipartMemory = 32 << 20

// materialForm is a parsed create/update body. Multipart and urlencoded bodies are
// both accepted; only multipart can carry assets.
type materialForm struct {
	values url.Values
	files  map[string]*multipart.FileHeader
}

func readMaterialForm(c *gin.Context, maxBytes int64) (*materialForm, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	form := &materialForm{files: map[string]*multipart.FileHeader{}}
	contentType := c.GetHeader("Content-Type")
	var err error
	if strings.HasPrefix(strings.ToLower(contentType), "multipart/") {
		err = c.Request.ParseMultipartForm(multipartMemory)
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apierr.New(http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return nil, apierr.BadRequest("invalid_form", "invalid form body")
	}
	form.values = c.Request.PostForm
	if mf := c.Request.MultipartForm; mf != nil {
		for _, name := range []string{"file", "thumbnail"} {
			if fhs := mf.File[name]; len(fhs) > 0 {
				form.files[name] = fhs[0]
			}
		}
	}
	return form, nil
}

func (f *materialForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *materialForm) str(key string) string {
	return strings.TrimSpace(f.values.Get(key))
}

func (f *materialForm) strPtr(key string) *string {
	if !f.has(key) {
		return nil
	}
	v := f.str(key)
	return &v
}

func (f *materialForm) intPtr(key string) (*int, error) {
	if !f.has(key) || f.str(key) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(f.str(key))
	if err != nil {
		return nil, apierr.BadRequest("invalid_form", key+" must be an integer")
	}
	return &n, nil
}

func (f *materialForm) uintPtr(key string) (*uint, error) {
	if !f.has(key) {
		return nil, nil
	}
	n, err := strconv.ParseUint(f.str(key), 10, 64)
	if err != nil {
		return nil, apierr.BadRequest("invalid_form", key+" must be a positive integer")
	}
	v := uint(n)
	return &v, nil
}

func (f *materialForm) boolPtr(key string) (*bool, error) {
	if !f.has(key) {
		return nil, nil
	}
	raw := strings.ToLower(f.str(key))
	if raw == "on" {
		raw = "true"
	}
	if raw == "" || raw == "off" {
		raw = "false"
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierr.BadRequest("invalid_form", key+" must be a boolean")
	}
	return &b, nil
}

func (f *materialForm) timePtr(key string) (*time.Time, error) {
	if !f.has(key) || f.str(key) == "" {
		return nil, nil
	}
	raw := f.str(key)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apierr.BadRequest("invalid_form", key+" must be a date (YYYY-MM-DD or RFC 3339)")
}

func (f *materialForm) tags() ([]string, error) {
	return parseTagList(f.values.Get("tags"))
}

func (f *materialForm) assets() types.MaterialAssets {
	return types.MaterialAssets{
		File:      assetUpload(f.files["file"]),
		Thumbnail: assetUpload(f.files["thumbnail"]),
	}
}

// parseTagList accepts a JSON array of names or a comma/semicolon delimited list.
func parseTagList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var names []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil, apierr.BadRequest("invalid_form", "tags must be a JSON array of strings")
		}
	} else {
		names = strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

func assetUpload(fh *multipart.FileHeader) *types.AssetUpload {
	if fh == nil || fh.Size == 0 {
		return nil
	}
	return &types.AssetUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (f *materialForm) draft() (types.MaterialDraft, error) {
	d := types.MaterialDraft{
		Title:       f.str("title"),
		Type:        types.ParseMaterialType(f.str("type")),
		Description: f.str("description"),
		Author:      f.str("author"),
		Level:       types.ParseMaterialLevel(f.str("level")),
		Duration:    f.str("duration"),
	}
	var err error
	if f.str("category_id") != "" {
		cat, err := f.uintPtr("category_id")
		if err != nil {
			return d, err
		}
		d.CategoryID = *cat
	}
	if d.Pages, err = f.intPtr("pages"); err != nil {
		return d, err
	}
	if d.Lessons, err = f.intPtr("lessons"); err != nil {
		return d, err
	}
	if d.PublishDate, err = f.timePtr("publish_date"); err != nil {
		return d, err
	}
	if u := f.str("url"); u != "" {
		d.URL = &u
	}
	featured, err := f.boolPtr("is_featured")
	if err != nil {
		return d, err
	}
	if featured != nil {
		d.IsFeatured = *featured
	}
	return d, nil
}

func (f *materialForm) patch() (types.MaterialPatch, error) {
	p := types.MaterialPatch{
		Title:       f.strPtr("title"),
		Description: f.strPtr("description"),
		Author:      f.strPtr("author"),
		Duration:    f.strPtr("duration"),
		URL:         f.strPtr("url"),
	}
	if f.has("type") {
		t := types.ParseMaterialType(f.str("type"))
		p.Type = &t
	}
	if f.has("level") {
		l := types.ParseMaterialLevel(f.str("level"))
		p.Level = &l
	}
	var err error
	if p.CategoryID, err = f.uintPtr("category_id"); err != nil {
		return p, err
	}
	if p.Pages, err = f.intPtr("pages"); err != nil {
		return p, err
	}
	if p.Lessons, err = f.intPtr("lessons"); err != nil {
		return p, err
	}
	if p.PublishDate, err = f.timePtr("publish_date"); err != nil {
		return p, err
	}
	if p.IsFeatured, err = f.boolPtr("is_featured"); err != nil {
		return p, err
	}
	if p.IsActive, err = f.boolPtr("is_active"); err != nil {
		return p, err
	}
	return p, nil
}
