package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/forum"
	"github.com/sprakportal/backend/core/study"
	"github.com/sprakportal/backend/core/user"
	"github.com/sprakportal/backend/core/video"
	"github.com/sprakportal/backend/core/vocab"
)

type statsApi struct {
	userSvc  *user.Service
	vocabSvc *vocab.Service
	studySvc *study.Service
	videoSvc *video.Service
	forumSvc *forum.Service
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := statsApi{
		userSvc:  deps.UserSvc,
		vocabSvc: deps.VocabSvc,
		studySvc: deps.StudySvc,
		videoSvc: deps.VideoSvc,
		forumSvc: deps.ForumSvc,
	}
	g.GET("/statistics", api.retrieve, jwt, adminMiddleware())
}

// retrieve aggregates the content and account counts the admin dashboard
// charts are built from.
func (api *statsApi) retrieve(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	users, err := api.userSvc.QueryAll(rctx)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	var active, students, admins int
	for _, usr := range users {
		if usr.IsActive {
			active++
		}
		if usr.IsAdmin() {
			admins++
		} else {
			students++
		}
	}

	words, wordsByLevel, err := api.vocabSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting words")
	}
	categories, sections, err := api.studySvc.CountContent(rctx)
	if err != nil {
		return errors.Wrap(err, "counting study content")
	}
	videos, err := api.videoSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting videos")
	}
	posts, answers, err := api.forumSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting forum content")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"users": echo.Map{
			"total":    len(users),
			"active":   active,
			"students": students,
			"admins":   admins,
		},
		"vocabulary": echo.Map{
			"total":    words,
			"by_level": wordsByLevel,
		},
		"study": echo.Map{
			"categories": categories,
			"sections":   sections,
		},
		"videos": videos,
		"forum": echo.Map{
			"posts":   posts,
			"answers": answers,
		},
	})
}
