package controllers

import (
	"github.com/crowdfork/crowdfork/app/services"
	"github.com/crowdfork/crowdfork/pkg/ctx"
)

const defaultRestaurantLimit = 20

type RestaurantController struct {
	service *services.RestaurantService
}

func NewRestaurantController(service *services.RestaurantService) *RestaurantController {
	return &RestaurantController{service: service}
}

func (h *RestaurantController) Index(c *ctx.Context) {
	limit, err := c.QueryInt("limit", defaultRestaurantLimit)
	if err != nil {
		c.Fail(err)
		return
	}

	restaurants, err := h.service.List(c.Context(), c.Query("cuisine_type"), limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(restaurants)
}

func (h *RestaurantController) Store(c *ctx.Context) {
	var in services.RestaurantInput
	if !c.BindJSON(&in) {
		return
	}

	restaurant, err := h.service.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(restaurant)
}

func (h *RestaurantController) Show(c *ctx.Context) {
	restaurant, err := h.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(restaurant)
}

func (h *RestaurantController) Update(c *ctx.Context) {
	var in services.RestaurantUpdate
	if !c.BindJSON(&in) {
		return
	}

	restaurant, err := h.service.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(restaurant)
}

func (h *RestaurantController) Destroy(c *ctx.Context) {
	if err := h.service.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Restaurant and associated reviews deleted successfully")
}
