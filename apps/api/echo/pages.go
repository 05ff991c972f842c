package echoapi

import (
	"context"
	"net/http"
	"net/url"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/admin"
	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/ui/breadcrumb"
	"github.com/trezcool/masomo-admin/ui/form"
)

type adminPages struct {
	auth       *auth
	registry   *admin.Registry
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
}

func registerAdminPages(app *echo.Echo, p *adminPages) {
	g := app.Group(adminPagesPath)

	// un-authed pages
	g.GET("/login", p.loginForm)
	g.POST("/login", p.login)

	// authed pages
	ag := g.Group("", p.auth.cookieMiddleware, adminMiddleware())
	ag.GET("", p.index)
	ag.POST("/logout", p.logout)

	rg := ag.Group("/:resource", resourceMiddleware(p.registry))
	rg.GET("", p.list)
	rg.POST("", p.create)
	rg.POST("/delete", p.destroy)
	rg.POST("/:id", p.update)
}

func resourcePath(name string) string {
	return adminPagesPath + "/" + name
}

// view wraps content in the layout of the logged in admin.
func (p *adminPages) view(ctx echo.Context, title, current string, content interface{}) view {
	v := view{Title: title, Content: content}
	for _, res := range p.registry.Resources() {
		v.Nav = append(v.Nav, navLink{
			Label:   res.Title(),
			Href:    resourcePath(res.Name()),
			Current: res.Name() == current,
		})
	}
	if claims, err := getContextClaims(ctx); err == nil {
		v.User = claims.Username
	}
	return v
}

func (p *adminPages) state(ctx echo.Context) admin.PageState {
	return admin.ParseState(ctx.QueryParams(), p.conf.UI.PageSize, p.conf.UI.PageSizes...)
}

func (p *adminPages) buildPage(ctx context.Context, res admin.Resource, st admin.PageState) (*admin.Page, error) {
	return admin.BuildPage(ctx, res, st, admin.Options{
		BasePath:  resourcePath(res.Name()),
		Home:      breadcrumb.Crumb{Label: "Home", Href: adminPagesPath},
		PageSizes: p.conf.UI.PageSizes,
	})
}

func (p *adminPages) render(ctx echo.Context, code int, res admin.Resource, page *admin.Page) error {
	return ctx.Render(code, "page", p.view(ctx, page.Title, res.Name(), page))
}

// postedValues returns the values of the request body, without the page state of the query.
func postedValues(ctx echo.Context) (url.Values, error) {
	if _, err := ctx.FormParams(); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form").SetInternal(err)
	}
	return ctx.Request().PostForm, nil
}

// formErrors extracts the field errors of a failed submission.
func (p *adminPages) formErrors(err error) (form.Errors, string, bool) {
	switch e := errors.Cause(err).(type) {
	case *core.ValidationError:
		if len(e.Fields) == 0 {
			return nil, e.Error(), true
		}
		return form.Errors(e.FieldMap()), "", true
	case validator.ValidationErrors:
		return form.Errors(core.FieldErrors(e, p.translator)), "", true
	}
	return nil, "", false
}

// Handlers

func (p *adminPages) index(ctx echo.Context) error {
	resources := p.registry.Resources()
	if len(resources) == 0 {
		return errHttpNotFound
	}
	return ctx.Redirect(http.StatusSeeOther, resourcePath(resources[0].Name()))
}

func (p *adminPages) list(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	actx, err := actorContext(ctx, p.auth)
	if err != nil {
		return err
	}

	page, err := p.buildPage(actx, res, p.state(ctx))
	if err != nil {
		return err
	}
	return p.render(ctx, http.StatusOK, res, page)
}

func (p *adminPages) create(ctx echo.Context) error {
	return p.submit(ctx, admin.ModalCreate, "", func(actx context.Context, res admin.Resource, values map[string]string) error {
		_, err := res.Create(actx, values)
		return err
	})
}

func (p *adminPages) update(ctx echo.Context) error {
	id := ctx.Param("id")
	return p.submit(ctx, admin.ModalEdit, id, func(actx context.Context, res admin.Resource, values map[string]string) error {
		_, err := res.Update(actx, id, values)
		return err
	})
}

// submit saves the posted form then redirects to the page with the modal closed.
// Invalid submissions re-render the open modal with the posted values and their errors.
func (p *adminPages) submit(ctx echo.Context, modal, id string, save func(context.Context, admin.Resource, map[string]string) error) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	posted, err := postedValues(ctx)
	if err != nil {
		return err
	}
	actx, err := actorContext(ctx, p.auth)
	if err != nil {
		return err
	}

	st := p.state(ctx).WithModal("", "")
	values := formValues(posted)
	if err = save(actx, res, values); err != nil {
		errs, msg, ok := p.formErrors(err)
		if !ok {
			return err
		}
		page, err := p.buildPage(actx, res, st.WithModal(modal, id))
		if err != nil {
			return err
		}
		page.BindForm(res, values, errs)
		if msg != "" {
			page.Modal.Message = msg
		}
		return p.render(ctx, http.StatusBadRequest, res, page)
	}
	return ctx.Redirect(http.StatusSeeOther, st.URL(resourcePath(res.Name())))
}

func (p *adminPages) destroy(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	posted, err := postedValues(ctx)
	if err != nil {
		return err
	}
	actx, err := actorContext(ctx, p.auth)
	if err != nil {
		return err
	}

	if ids := posted[admin.ParamID]; len(ids) > 0 {
		if _, err = res.Delete(actx, ids...); err != nil {
			return errors.Wrap(err, "deleting records")
		}
	}
	st := p.state(ctx).WithModal("", "").WithSelection()
	return ctx.Redirect(http.StatusSeeOther, st.URL(resourcePath(res.Name())))
}

type loginPage struct {
	Action   string
	Username string
	Error    string
}

func (p *adminPages) loginForm(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "login", view{Title: "Log in", Content: loginPage{Action: loginPath}})
}

func (p *adminPages) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	page := loginPage{Action: loginPath, Username: data.Username}

	failed := func(code int, msg string) error {
		page.Error = msg
		return ctx.Render(code, "login", view{Title: "Log in", Content: page})
	}

	if err := data.Validate(p.validate); err != nil {
		return failed(http.StatusBadRequest, "Please enter your username and password.")
	}
	claims, err := p.auth.authenticate(ctx, data.Username, data.Password)
	if err != nil {
		if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
			return failed(herr.Code, messageText(herr.Message))
		}
		return errors.Wrap(err, "authenticating")
	}
	if !claims.IsAdmin {
		return failed(http.StatusForbidden, messageText(errHttpForbidden.Message))
	}

	token, err := p.auth.generateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	p.auth.setTokenCookie(ctx, token)
	return ctx.Redirect(http.StatusSeeOther, adminPagesPath)
}

func (p *adminPages) logout(ctx echo.Context) error {
	p.auth.clearTokenCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, loginPath)
}
