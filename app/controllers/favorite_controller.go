package controllers

import (
	"github.com/crowdfork/crowdfork/app/services"
	"github.com/crowdfork/crowdfork/pkg/ctx"
)

type FavoriteController struct {
	service *services.FavoriteService
}

func NewFavoriteController(service *services.FavoriteService) *FavoriteController {
	return &FavoriteController{service: service}
}

func (h *FavoriteController) Add(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id := c.Param("restaurant_id")
	if err := h.service.Add(c.Context(), p, id); err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]string{"message": "Restaurant added to favorites", "restaurant_id": id})
}

func (h *FavoriteController) Remove(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id := c.Param("restaurant_id")
	if err := h.service.Remove(c.Context(), p, id); err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]string{"message": "Restaurant removed from favorites", "restaurant_id": id})
}

func (h *FavoriteController) IDs(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ids, err := h.service.IDs(c.Context(), p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string][]string{"favorite_ids": ids})
}

func (h *FavoriteController) Index(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	restaurants, err := h.service.List(c.Context(), p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(restaurants)
}
