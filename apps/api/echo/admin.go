package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/admin"
	"github.com/trezcool/masomo-admin/core"
)

type adminApi struct {
	auth     *auth
	registry *admin.Registry
	ui       core.UIConfig
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *adminApi) {
	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/resources", api.resources)

	rg := ag.Group("/:resource", resourceMiddleware(api.registry))
	rg.GET("", api.list)
	rg.POST("", api.create)
	rg.DELETE("", api.destroyMultiple)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

const contextResourceKey = "resource"

// resourceMiddleware looks the :resource up in registry.
func resourceMiddleware(registry *admin.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			res, err := registry.Get(ctx.Param("resource"))
			if err != nil {
				return err
			}
			ctx.Set(contextResourceKey, res)
			return next(ctx)
		}
	}
}

func contextResource(ctx echo.Context) (admin.Resource, error) {
	if res, ok := ctx.Get(contextResourceKey).(admin.Resource); ok {
		return res, nil
	}
	return nil, admin.ErrUnknownResource
}

// actorContext returns the request context carrying the logged in user.
func actorContext(ctx echo.Context, a *auth) (context.Context, error) {
	usr, err := a.contextUser(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting context user")
	}
	return admin.WithActor(ctx.Request().Context(), usr), nil
}

func (api *adminApi) state(ctx echo.Context) admin.PageState {
	return admin.ParseState(ctx.QueryParams(), api.ui.PageSize, api.ui.PageSizes...)
}

// Handlers

type resourceInfo struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	KeyField string        `json:"key_field"`
	Columns  []columnInfo  `json:"columns"`
}

type columnInfo struct {
	Key        string `json:"key"`
	Title      string `json:"title"`
	Sortable   bool   `json:"sortable"`
	Filterable bool   `json:"filterable"`
	Align      string `json:"align"`
}

func (api *adminApi) resources(ctx echo.Context) error {
	resources := api.registry.Resources()
	out := make([]resourceInfo, 0, len(resources))
	for _, res := range resources {
		info := resourceInfo{Name: res.Name(), Title: res.Title(), KeyField: res.KeyField()}
		for _, c := range res.Columns() {
			info.Columns = append(info.Columns, columnInfo{
				Key:        c.Key,
				Title:      c.Title,
				Sortable:   c.Sortable,
				Filterable: c.Filterable,
				Align:      c.Align.Class(),
			})
		}
		out = append(out, info)
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *adminApi) list(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	result, err := admin.List(ctx.Request().Context(), res, api.state(ctx))
	if err != nil {
		return errors.Wrap(err, "listing records")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *adminApi) retrieve(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	row, err := res.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting record")
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *adminApi) create(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	values, err := bindJSONValues(ctx)
	if err != nil {
		return err
	}
	actx, err := actorContext(ctx, api.auth)
	if err != nil {
		return err
	}

	row, err := res.Create(actx, values)
	if err != nil {
		return errors.Wrap(err, "creating record")
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *adminApi) update(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	values, err := bindJSONValues(ctx)
	if err != nil {
		return err
	}
	actx, err := actorContext(ctx, api.auth)
	if err != nil {
		return err
	}

	row, err := res.Update(actx, ctx.Param("id"), values)
	if err != nil {
		return errors.Wrap(err, "updating record")
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *adminApi) destroy(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	actx, err := actorContext(ctx, api.auth)
	if err != nil {
		return err
	}

	if _, err = res.Delete(actx, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// destroyMultiple deletes the selection: DELETE /v1/admin/:resource?id=1&id=2
func (api *adminApi) destroyMultiple(ctx echo.Context) error {
	res, err := contextResource(ctx)
	if err != nil {
		return err
	}
	var query DestroyMultipleRequest
	if err = ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	actx, err := actorContext(ctx, api.auth)
	if err != nil {
		return err
	}

	if _, err = res.Delete(actx, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting records")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type DestroyMultipleRequest struct {
	IDs []string `query:"id"`
}
