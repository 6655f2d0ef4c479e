package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sprakportal/backend/core/listquery"
)

// bindListParams reads the common list query string into listquery.Params.
// Only the whitelisted filter keys are forwarded; unknown query params are
// ignored so clients cannot filter on arbitrary fields.
func bindListParams(ctx echo.Context, filterKeys ...string) listquery.Params {
	params := listquery.Params{
		Search: ctx.QueryParam("search"),
		Sort:   listquery.Sort(ctx.QueryParam("sort")),
	}
	if page, err := strconv.Atoi(ctx.QueryParam("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(ctx.QueryParam("page_size")); err == nil {
		params.PageSize = size
	}
	for _, key := range filterKeys {
		if val := ctx.QueryParam(key); val != "" {
			if params.Filters == nil {
				params.Filters = make(map[string]string, len(filterKeys))
			}
			params.Filters[key] = val
		}
	}
	return params
}

func bindRouteID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, errHTTPNotFound
	}
	return id, nil
}
