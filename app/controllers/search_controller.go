package controllers

import (
	"github.com/crowdfork/crowdfork/app/services"
	"github.com/crowdfork/crowdfork/pkg/ctx"
)

type SearchController struct {
	service *services.SearchService
}

func NewSearchController(service *services.SearchService) *SearchController {
	return &SearchController{service: service}
}

// query reads term, location, latitude, longitude and limit. A limit of 0
// lets the service pick its default.
func query(c *ctx.Context) (services.SearchQuery, error) {
	q := services.SearchQuery{Term: c.Query("term"), Location: c.Query("location")}

	var err error
	if q.Latitude, err = c.QueryFloat("latitude"); err != nil {
		return q, err
	}
	if q.Longitude, err = c.QueryFloat("longitude"); err != nil {
		return q, err
	}
	if q.Limit, err = c.QueryInt("limit", 0); err != nil {
		return q, err
	}
	return q, nil
}

func (h *SearchController) Restaurants(c *ctx.Context) {
	q, err := query(c)
	if err != nil {
		c.Fail(err)
		return
	}

	res, err := h.service.Restaurants(c.Context(), q)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(res)
}

func (h *SearchController) Nearby(c *ctx.Context) {
	q, err := query(c)
	if err != nil {
		c.Fail(err)
		return
	}

	res, err := h.service.Nearby(c.Context(), q)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(res)
}

func (h *SearchController) LocalPicks(c *ctx.Context) {
	q, err := query(c)
	if err != nil {
		c.Fail(err)
		return
	}

	res, err := h.service.LocalPicks(c.Context(), q)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(res)
}

func (h *SearchController) Autocomplete(c *ctx.Context) {
	q, err := query(c)
	if err != nil {
		c.Fail(err)
		return
	}

	res, err := h.service.Autocomplete(c.Context(), c.Query("text"), q.Latitude, q.Longitude)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(res)
}

func (h *SearchController) Business(c *ctx.Context) {
	res, err := h.service.Business(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(res)
}
