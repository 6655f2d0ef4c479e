package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/forum"
	"github.com/sprakportal/backend/core/user"
)

type forumApi struct {
	svc     *forum.Service
	userSvc *user.Service
}

func registerForumAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := forumApi{svc: deps.ForumSvc, userSvc: deps.UserSvc}

	fg := g.Group("/forum", jwt)

	fg.GET("/posts", api.queryPosts)
	fg.POST("/posts", api.createPost)
	fg.GET("/posts/:id", api.retrievePost)
	fg.POST("/posts/:id/answers", api.answer)
	fg.POST("/posts/:id/vote", api.vote)

	fg.DELETE("/posts/:id", api.destroyPost, adminMiddleware())
	fg.DELETE("/answers/:id", api.destroyAnswer, adminMiddleware())
}

// Handlers

func (api *forumApi) queryPosts(ctx echo.Context) error {
	res, err := api.svc.QueryPosts(ctx.Request().Context(), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *forumApi) createPost(ctx echo.Context) error {
	author, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	post, err := api.svc.CreatePost(ctx.Request().Context(), author, data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *forumApi) retrievePost(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	post, err := api.svc.GetPost(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding post by ID")
	}
	return ctx.JSON(http.StatusOK, post)
}

func (api *forumApi) answer(ctx echo.Context) error {
	author, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}

	var data forum.NewAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnswer")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	ans, err := api.svc.Answer(ctx.Request().Context(), id, author, data)
	if err != nil {
		return errors.Wrap(err, "answering post")
	}
	return ctx.JSON(http.StatusCreated, ans)
}

func (api *forumApi) vote(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}

	var data forum.NewVote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVote")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	if err := api.svc.Vote(ctx.Request().Context(), id, claims.UserID(), data); err != nil {
		return errors.Wrap(err, "voting on post")
	}

	post, err := api.svc.GetPost(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "reloading post")
	}
	return ctx.JSON(http.StatusOK, post)
}

func (api *forumApi) destroyPost(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeletePosts(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *forumApi) destroyAnswer(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteAnswers(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting answer")
	}
	return ctx.NoContent(http.StatusNoContent)
}
