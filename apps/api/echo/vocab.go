package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/vocab"
)

type vocabApi struct {
	svc *vocab.Service
}

func registerVocabAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := vocabApi{svc: deps.VocabSvc}

	wg := g.Group("/vocabulary")

	// the jwt subgroup must exist before the guest routes: adding group
	// middleware re-registers the catch-all routes and would shadow them
	ag := wg.Group("", jwt)

	// browse endpoints are open to guests; logged-in users additionally get
	// their favorite flags annotated
	wg.GET("", api.query, optionalJWT(jwt))
	wg.GET("/:id", api.retrieve, optionalJWT(jwt))
	ag.GET("/favorites", api.queryFavorites)
	ag.POST("/:id/favorite", api.toggleFavorite)
	ag.GET("/quiz", api.buildQuiz)
	ag.POST("/quiz", api.submitQuiz)
	ag.GET("/quiz/history", api.quizHistory)
	ag.GET("/quiz/progress", api.quizProgress)

	ag.POST("", api.create, adminMiddleware())
	ag.DELETE("", api.destroyMultiple, adminMiddleware())
	ag.PUT("/:id", api.update, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *vocabApi) query(ctx echo.Context) error {
	params := bindListParams(ctx, "level", "letter", "word_class")
	res, err := api.svc.Query(ctx.Request().Context(), contextUserID(ctx), params)
	if err != nil {
		return errors.Wrap(err, "querying words")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *vocabApi) retrieve(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	word, err := api.svc.GetByID(ctx.Request().Context(), id, contextUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "finding word by ID")
	}
	return ctx.JSON(http.StatusOK, word)
}

func (api *vocabApi) create(ctx echo.Context) error {
	var data vocab.NewWord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWord")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	force := ctx.QueryParam("force") == "true"
	word, err := api.svc.Create(ctx.Request().Context(), data, force)
	if err != nil {
		return errors.Wrap(err, "creating word")
	}
	return ctx.JSON(http.StatusCreated, word)
}

func (api *vocabApi) update(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(ctx.Request().Context(), id, 0)
	if err != nil {
		return errors.Wrap(err, "finding word by ID")
	}

	var data vocab.UpdateWord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateWord")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	word, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating word")
	}
	return ctx.JSON(http.StatusOK, word)
}

func (api *vocabApi) destroy(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting word")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *vocabApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting words")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *vocabApi) queryFavorites(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	params := bindListParams(ctx, "level", "letter", "word_class")
	res, err := api.svc.QueryFavorites(ctx.Request().Context(), claims.UserID(), params)
	if err != nil {
		return errors.Wrap(err, "querying favorite words")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *vocabApi) toggleFavorite(ctx echo.Context) error {
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
		return errors.Wrap(err, "toggling favorite word")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"word_id": id, "is_favorite": favorite})
}

func (api *vocabApi) buildQuiz(ctx echo.Context) error {
	questions, err := api.svc.BuildQuiz(ctx.Request().Context(), ctx.QueryParam("level"))
	if err != nil {
		return errors.Wrap(err, "building quiz")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *vocabApi) submitQuiz(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data vocab.QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}

	result, err := api.svc.SubmitQuiz(ctx.Request().Context(), claims.UserID(), data)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *vocabApi) quizHistory(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	entries, err := api.svc.QuizHistory(ctx.Request().Context(), claims.UserID(), ctx.QueryParam("level"))
	if err != nil {
		return errors.Wrap(err, "querying quiz history")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *vocabApi) quizProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	progress, err := api.svc.QuizProgress(ctx.Request().Context(), claims.UserID(), ctx.QueryParam("level"))
	if err != nil {
		return errors.Wrap(err, "querying quiz progress")
	}
	return ctx.JSON(http.StatusOK, progress)
}
