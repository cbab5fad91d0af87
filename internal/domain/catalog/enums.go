package catalog

import "strings"

type MaterialType string

const (
	TypeVideo        MaterialType = "video"
	TypeBook         MaterialType = "book"
	TypeDocument     MaterialType = "document"
	TypeCourse       MaterialType = "course"
	TypeArticle      MaterialType = "article"
	TypePresentation MaterialType = "presentation"
	TypeWebinar      MaterialType = "webinar"
	TypeOther        MaterialType = "other"
)

var MaterialTypes = []MaterialType{
	TypeVideo, TypeBook, TypeDocument, TypeCourse,
	TypeArticle, TypePresentation, TypeWebinar, TypeOther,
}

func (t MaterialType) Valid() bool {
	for _, known := range MaterialTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CountsTowardVideoHours reports whether durations of this type feed the
// catalog's video_content_hours total.
func (t MaterialType) CountsTowardVideoHours() bool {
	return t == TypeVideo || t == TypeCourse
}

type MaterialLevel string

const (
	LevelBasic        MaterialLevel = "basic"
	LevelIntermediate MaterialLevel = "intermediate"
	LevelAdvanced     MaterialLevel = "advanced"
)

var MaterialLevels = []MaterialLevel{LevelBasic, LevelIntermediate, LevelAdvanced}

func (l MaterialLevel) Valid() bool {
	for _, known := range MaterialLevels {
		if l == known {
			return true
		}
	}
	return false
}

func ParseMaterialType(raw string) MaterialType {
	return MaterialType(strings.ToLower(strings.TrimSpace(raw)))
}

func ParseMaterialLevel(raw string) MaterialLevel {
	return MaterialLevel(strings.ToLower(strings.TrimSpace(raw)))
}

type TrackAction string

const (
	TrackView     TrackAction = "view"
	TrackDownload TrackAction = "download"
)

func (a TrackAction) Valid() bool {
	return a == TrackView || a == TrackDownload
}

// Column is the counter column this action increments.
func (a TrackAction) Column() string {
	switch a {
	case TrackView:
		return "view_count"
	case TrackDownload:
		return "download_count"
	default:
		return ""
	}
}
