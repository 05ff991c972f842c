package echoapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-admin/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads "?ordering=field,-other" into Orderings.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// formValues flattens posted form values; the last value of a key wins so that a
// checkbox overrides the hidden input preceding it.
func formValues(form url.Values) map[string]string {
	values := make(map[string]string, len(form))
	for k, vals := range form {
		if len(vals) > 0 {
			values[k] = vals[len(vals)-1]
		}
	}
	return values
}

// bindJSONValues reads a flat JSON object into form values.
func bindJSONValues(ctx echo.Context) (map[string]string, error) {
	var data map[string]interface{}
	if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON object").SetInternal(err)
	}
	values := make(map[string]string, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = val
		case bool:
			values[k] = strconv.FormatBool(val)
		case float64:
			values[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil, core.NewValidationError(nil, core.FieldError{Field: k, Error: "must be a string, number or boolean"})
		}
	}
	return values, nil
}
