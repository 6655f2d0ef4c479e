package video

import (
	"strings"
	"time"

	"github.com/sprakportal/backend/core"
)

// Video is a lesson clip stored under the media root; Filename is the stored
// name, never the upload's original name.
type Video struct {
	ID          int       `json:"id"`
	SectionID   int       `json:"section_id"`
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Description string    `json:"description,omitempty"`
	Filename    string    `json:"filename"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// FirstLetter returns the upper-cased initial used by the letter filter.
func (v Video) FirstLetter() string {
	for _, r := range v.Title {
		return strings.ToUpper(string([]rune{r}))
	}
	return ""
}

type NewVideo struct {
	SectionID   int    `json:"section_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Level       string `json:"level" validate:"required,cefrlevel"`
	Description string `json:"description"`
}

func (nv *NewVideo) Validate(svc *Service) error {
	nv.Title = core.CleanString(nv.Title)
	return svc.validate.Struct(nv)
}

type UpdateVideo struct {
	SectionID   int    `json:"section_id"`
	Title       string `json:"title"`
	Level       string `json:"level" validate:"omitempty,cefrlevel"`
	Description string `json:"description"`
}

func (uv *UpdateVideo) Validate(orig Video, svc *Service) error {
	if title := core.CleanString(uv.Title); title != "" {
		uv.Title = title
	} else {
		uv.Title = orig.Title
	}
	if uv.Level == "" {
		uv.Level = orig.Level
	}
	if uv.SectionID == 0 {
		uv.SectionID = orig.SectionID
	}
	return svc.validate.Struct(uv)
}
