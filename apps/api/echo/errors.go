package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/forum"
	"github.com/sprakportal/backend/core/messaging"
	"github.com/sprakportal/backend/core/study"
	"github.com/sprakportal/backend/core/user"
	"github.com/sprakportal/backend/core/video"
	"github.com/sprakportal/backend/core/vocab"
)

var (
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Fel e-postadress eller lösenord.")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusUnauthorized, "Kontot är avstängt.")
	errRefreshExpired       = echo.NewHTTPError(http.StatusUnauthorized, "Refresh has expired.")
	errUnauthorized         = echo.ErrUnauthorized
	errForbidden            = echo.NewHTTPError(http.StatusForbidden, "Permission denied.")
	errHTTPNotFound         = echo.NewHTTPError(http.StatusNotFound, "Not found.")
	errMissingFile          = echo.NewHTTPError(http.StatusBadRequest, "A file is required.")
)

var notFoundSentinels = []error{
	user.ErrNotFound,
	vocab.ErrNotFound,
	study.ErrCategoryNotFound,
	study.ErrSectionNotFound,
	study.ErrTestNotFound,
	study.ErrQuestionNotFound,
	video.ErrNotFound,
	forum.ErrPostNotFound,
	forum.ErrAnswerNotFound,
	messaging.ErrMessageNotFound,
	messaging.ErrReplyNotFound,
	messaging.ErrNotificationNotFound,
}

// newAppHTTPErrorHandler returns a centralized HTTP error handler.
func newAppHTTPErrorHandler(logger core.Logger, trans ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		cause := errors.Cause(err)
		switch e := cause.(type) {
		case *echo.HTTPError:
			if e == middleware.ErrJWTMissing {
				sendErrorResponse(ctx, http.StatusUnauthorized, e.Message, logger)
				return
			}
			if e.Internal != nil {
				if herr, ok := e.Internal.(*echo.HTTPError); ok {
					e = herr
				}
			}
			sendErrorResponse(ctx, e.Code, e.Message, logger)

		case validator.ValidationErrors:
			fields := make(map[string]string, len(e))
			for _, fe := range e {
				fields[core.CleanString(fe.Field(), true)] = fe.Translate(trans)
			}
			sendErrorResponse(ctx, http.StatusBadRequest, fields, logger)

		case *core.ValidationError:
			if len(e.Fields) > 0 {
				fields := make(map[string]string, len(e.Fields))
				for _, fe := range e.Fields {
					fields[fe.Field] = fe.Error
				}
				sendErrorResponse(ctx, http.StatusBadRequest, fields, logger)
			} else {
				sendErrorResponse(ctx, http.StatusBadRequest, e.Error(), logger)
			}

		case *core.ConflictError:
			body := echo.Map{"error": e.Error(), "existing": e.Existing}
			if err := ctx.JSON(http.StatusConflict, body); err != nil {
				logger.Error("sending conflict response", err)
			}

		default:
			for _, sentinel := range notFoundSentinels {
				if cause == sentinel {
					sendErrorResponse(ctx, http.StatusNotFound, sentinel.Error(), logger)
					return
				}
			}

			args := []interface{}{err}
			if usr, ok := ctx.Get(userContextKey).(user.User); ok {
				args = append(args, usr)
			}
			logger.Error("an unexpected error occurred", args...)

			sendErrorResponse(ctx, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), logger)

			// shutdown gracefully on unexpected runtime errors
			if ok := core.IsShutdown(err); ok {
				logger.Error("integrity issue: shutting down", err)
				signalShutdown()
			}
		}
	}
}

func sendErrorResponse(ctx echo.Context, code int, message interface{}, logger core.Logger) {
	var err error
	if ctx.Request().Method == http.MethodHead {
		err = ctx.NoContent(code)
	} else {
		err = ctx.JSON(code, echo.Map{"error": message})
	}
	if err != nil {
		logger.Error("sending error response", err)
	}
}
