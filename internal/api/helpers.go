package api

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/8arry/micro-transformer/internal/tensor"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "")
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Param:   param,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func matToRows(m *tensor.Mat) [][]float32 {
	rows := make([][]float32, m.R)
	for i := range rows {
		row := make([]float32, m.C)
		copy(row, m.Row(i))
		rows[i] = row
	}
	return rows
}

func rowsToMat(rows [][]float32) (tensor.Mat, bool) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return tensor.Mat{}, false
	}
	cols := len(rows[0])
	m := tensor.NewMat(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return tensor.Mat{}, false
		}
		copy(m.Row(i), row)
	}
	return m, true
}
