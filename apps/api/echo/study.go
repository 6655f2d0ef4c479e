package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/study"
)

type studyApi struct {
	svc *study.Service
}

func registerStudyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studyApi{svc: deps.StudySvc}

	sg := g.Group("/study", jwt)

	sg.GET("/categories", api.queryCategories)
	sg.POST("/categories", api.createCategory, adminMiddleware())
	sg.PUT("/categories/:id", api.updateCategory, adminMiddleware())
	sg.DELETE("/categories/:id", api.destroyCategory, adminMiddleware())

	sg.GET("/sections", api.querySections)
	sg.GET("/sections/:id", api.retrieveSection)
	sg.GET("/sections/:id/tests", api.queryTests)
	sg.POST("/sections", api.createSection, adminMiddleware())
	sg.PUT("/sections/:id", api.updateSection, adminMiddleware())
	sg.DELETE("/sections/:id", api.destroySection, adminMiddleware())

	sg.POST("/tests", api.createTest, adminMiddleware())
	sg.GET("/tests/:id", api.startTest)
	sg.PUT("/tests/:id", api.updateTest, adminMiddleware())
	sg.DELETE("/tests/:id", api.destroyTest, adminMiddleware())
	sg.POST("/tests/:id/submit", api.submitTest)
	sg.GET("/tests/:id/questions", api.queryQuestions, adminMiddleware())
	sg.POST("/tests/:id/questions", api.addQuestion, adminMiddleware())
	sg.PUT("/questions/:id", api.updateQuestion, adminMiddleware())
	sg.DELETE("/questions/:id", api.destroyQuestion, adminMiddleware())

	sg.GET("/results", api.queryResults)
}

// Category handlers

func (api *studyApi) queryCategories(ctx echo.Context) error {
	res, err := api.svc.QueryCategories(ctx.Request().Context(), bindListParams(ctx))
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) createCategory(ctx echo.Context) error {
	var data study.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *studyApi) updateCategory(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	var data study.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *studyApi) destroyCategory(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCategories(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Section handlers

func (api *studyApi) querySections(ctx echo.Context) error {
	categoryID, _ := strconv.Atoi(ctx.QueryParam("category_id"))
	params := bindListParams(ctx, "level")
	res, err := api.svc.QuerySections(ctx.Request().Context(), categoryID, params)
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) retrieveSection(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	sec, err := api.svc.GetSection(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding section by ID")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *studyApi) createSection(ctx echo.Context) error {
	var data study.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	sec, err := api.svc.CreateSection(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, sec)
}

func (api *studyApi) updateSection(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	var data study.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	sec, err := api.svc.UpdateSection(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *studyApi) destroySection(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSections(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting section")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Test handlers

func (api *studyApi) queryTests(ctx echo.Context) error {
	sectionID, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	tests, err := api.svc.QueryTestsBySection(ctx.Request().Context(), sectionID)
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *studyApi) createTest(ctx echo.Context) error {
	var data study.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	test, err := api.svc.CreateTest(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating test")
	}
	return ctx.JSON(http.StatusCreated, test)
}

// startTest hands the test and its questions to the student with the
// correct-answer flags stripped.
func (api *studyApi) startTest(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	test, questions, err := api.svc.StartTest(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "starting test")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"test": test, "questions": questions})
}

func (api *studyApi) updateTest(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	var data study.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	test, err := api.svc.UpdateTest(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating test")
	}
	return ctx.JSON(http.StatusOK, test)
}

func (api *studyApi) destroyTest(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTests(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) submitTest(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	testID, err := bindRouteID(ctx)
	if err != nil {
		return err
	}

	var data study.TestSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestSubmission")
	}

	result, err := api.svc.SubmitTest(ctx.Request().Context(), claims.UserID(), testID, data)
	if err != nil {
		return errors.Wrap(err, "submitting test")
	}
	return ctx.JSON(http.StatusOK, result)
}

// Question handlers

func (api *studyApi) queryQuestions(ctx echo.Context) error {
	testID, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	questions, err := api.svc.QueryQuestions(ctx.Request().Context(), testID)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *studyApi) addQuestion(ctx echo.Context) error {
	testID, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	var data study.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	question, err := api.svc.AddQuestion(ctx.Request().Context(), testID, data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, question)
}

func (api *studyApi) updateQuestion(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	var data study.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	question, err := api.svc.UpdateQuestion(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, question)
}

func (api *studyApi) destroyQuestion(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteQuestions(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Result handlers

func (api *studyApi) queryResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	params := bindListParams(ctx, "passed")
	res, err := api.svc.QueryResults(ctx.Request().Context(), claims.UserID(), params)
	if err != nil {
		return errors.Wrap(err, "querying test results")
	}
	return ctx.JSON(http.StatusOK, res)
}
