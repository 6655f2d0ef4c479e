package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/video"
	filesvc "github.com/sprakportal/backend/services/files"
)

type videoApi struct {
	svc   *video.Service
	store filesvc.Storage
}

func registerVideoAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := videoApi{svc: deps.VideoSvc, store: deps.FileStore}

	vg := g.Group("/videos", jwt)

	vg.GET("", api.query)
	vg.GET("/favorites", api.queryFavorites)
	vg.GET("/:id", api.retrieve)
	vg.GET("/:id/file", api.serveFile)
	vg.POST("/:id/favorite", api.toggleFavorite)

	vg.POST("", api.create, adminMiddleware())
	vg.PUT("/:id", api.update, adminMiddleware())
	vg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *videoApi) query(ctx echo.Context) error {
	params := bindListParams(ctx, "level", "letter", "section")
	res, err := api.svc.Query(ctx.Request().Context(), contextUserID(ctx), params)
	if err != nil {
		return errors.Wrap(err, "querying videos")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *videoApi) retrieve(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	v, err := api.svc.GetByID(ctx.Request().Context(), id, contextUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "finding video by ID")
	}
	return ctx.JSON(http.StatusOK, v)
}

// serveFile streams the stored media file; http.ServeContent underneath
// honors range requests so the player can seek.
func (api *videoApi) serveFile(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	v, err := api.svc.GetByID(ctx.Request().Context(), id, 0)
	if err != nil {
		return errors.Wrap(err, "finding video by ID")
	}
	return ctx.File(api.store.Path(v.Filename))
}

// create accepts a multipart form: the video metadata fields plus the media
// file itself under "file".
func (api *videoApi) create(ctx echo.Context) error {
	sectionID, _ := strconv.Atoi(ctx.FormValue("section_id"))
	data := video.NewVideo{
		SectionID:   sectionID,
		Title:       ctx.FormValue("title"),
		Level:       ctx.FormValue("level"),
		Description: ctx.FormValue("description"),
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return errMissingFile
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	filename, err := api.store.Save(src, fh.Filename)
	if err != nil {
		return errors.Wrap(err, "saving video file")
	}

	v, err := api.svc.Create(ctx.Request().Context(), data, filename)
	if err != nil {
		return errors.Wrap(err, "creating video")
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *videoApi) update(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(ctx.Request().Context(), id, 0)
	if err != nil {
		return errors.Wrap(err, "finding video by ID")
	}

	var data video.UpdateVideo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateVideo")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	v, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating video")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *videoApi) destroy(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	v, err := api.svc.GetByID(ctx.Request().Context(), id, 0)
	if err != nil {
		return errors.Wrap(err, "finding video by ID")
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting video")
	}
	// media file cleanup is best effort, the record is already gone
	if err := api.store.Remove(v.Filename); err != nil {
		ctx.Logger().Errorf("removing video file: %v", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *videoApi) queryFavorites(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	params := bindListParams(ctx, "level", "letter", "section")
	res, err := api.svc.QueryFavorites(ctx.Request().Context(), claims.UserID(), params)
	if err != nil {
		return errors.Wrap(err, "querying favorite videos")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *videoApi) toggleFavorite(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	favorite, err := api.svc.ToggleFavorite(ctx.Request().Context(), claims.UserID(), id)
	if err != nil {
		return errors.Wrap(err, "toggling favorite video")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"video_id": id, "is_favorite": favorite})
}
