package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core"
)

type contactApi struct {
	conf     *core.Config
	mailSvc  core.EmailService
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, deps ServerDeps) {
	api := contactApi{
		conf:     deps.Conf,
		mailSvc:  deps.MailSvc,
		validate: deps.Validate,
	}
	g.POST("/contact", api.send)
}

// send forwards a contact form submission to the site's contact address.
// It is open to guests so prospective students can reach the school.
func (api *contactApi) send(ctx echo.Context) error {
	var data ContactRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ContactRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	api.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: api.conf.ContactEmail}},
		Subject:      "Kontaktformulär: " + data.Subject,
		TemplateName: "contact",
		TemplateData: data,
	})
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Tack för ditt meddelande! Vi återkommer så snart vi kan."})
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (cr *ContactRequest) Validate(validate *validator.Validate) error {
	cr.Name = core.CleanString(cr.Name)
	cr.Email = core.CleanString(cr.Email, true /* lower */)
	cr.Subject = core.CleanString(cr.Subject)
	cr.Message = core.CleanString(cr.Message)
	return validate.Struct(cr)
}
