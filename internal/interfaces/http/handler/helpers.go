package handler

import (
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/interfaces/http/dto"
)

// listRequestToFilter converts list query parameters to a domain filter
func listRequestToFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter
}
