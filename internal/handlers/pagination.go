package handlers

import (
	"errors"
	"strconv"
)

var errInvalidPagination = errors.New("invalid pagination")

// parsePaginationParams pages only when both values are present.
func parsePaginationParams(pageStr, limitStr string) (page, limit int64, err error) {
	if pageStr == "" || limitStr == "" {
		return 0, 0, nil
	}

	page, err = strconv.ParseInt(pageStr, 10, 64)
	if err != nil || page < 1 {
		return 0, 0, errInvalidPagination
	}

	limit, err = strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		return 0, 0, errInvalidPagination
	}

	return page, limit, nil
}
