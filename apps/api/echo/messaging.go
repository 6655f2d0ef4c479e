package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core/messaging"
	"github.com/sprakportal/backend/core/user"
)

type messagingApi struct {
	svc     *messaging.Service
	userSvc *user.Service
}

func registerMessagingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := messagingApi{svc: deps.MessagingSvc, userSvc: deps.UserSvc}

	mg := g.Group("/messages", jwt)

	mg.GET("", api.queryInbox)
	mg.POST("", api.send)
	mg.GET("/:id", api.retrieveThread)
	mg.POST("/:id/replies", api.reply)
	mg.DELETE("/:id", api.destroy, adminMiddleware())
	mg.POST("/global", api.sendGlobal, adminMiddleware())

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.queryNotifications)
	ng.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *messagingApi) queryInbox(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	params := bindListParams(ctx, "sender_role")
	res, err := api.svc.QueryInbox(ctx.Request().Context(), viewer, params)
	if err != nil {
		return errors.Wrap(err, "querying inbox")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *messagingApi) send(ctx echo.Context) error {
	sender, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data messaging.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	// students write to the admin team, only admins address a recipient
	if !sender.IsAdmin() {
		data.RecipientID = 0
	}

	msg, err := api.svc.Send(ctx.Request().Context(), sender, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messagingApi) retrieveThread(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	msg, err := api.svc.GetThread(ctx.Request().Context(), viewer, id)
	if err != nil {
		return errors.Wrap(err, "finding message by ID")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messagingApi) reply(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}

	var data messaging.NewReply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReply")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	rep, err := api.svc.Reply(ctx.Request().Context(), viewer, id, data)
	if err != nil {
		return errors.Wrap(err, "replying to message")
	}
	return ctx.JSON(http.StatusCreated, rep)
}

func (api *messagingApi) destroy(ctx echo.Context) error {
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteMessages(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting message")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// sendGlobal broadcasts a notification to every active student.
func (api *messagingApi) sendGlobal(ctx echo.Context) error {
	var data messaging.GlobalMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GlobalMessage")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	recipients, err := api.userSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying recipients")
	}
	sent, err := api.svc.SendGlobal(ctx.Request().Context(), data, recipients)
	if err != nil {
		return errors.Wrap(err, "sending global message")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"recipients": sent})
}

func (api *messagingApi) queryNotifications(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	params := bindListParams(ctx, "is_read")
	res, err := api.svc.QueryNotifications(ctx.Request().Context(), claims.UserID(), params)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *messagingApi) markRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := bindRouteID(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.MarkRead(ctx.Request().Context(), claims.UserID(), id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, n)
}
