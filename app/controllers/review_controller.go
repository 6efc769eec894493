package controllers

import (
	"github.com/crowdfork/crowdfork/app/services"
	"github.com/crowdfork/crowdfork/pkg/ctx"
)

const defaultReviewLimit = 10

type ReviewController struct {
	service *services.ReviewService
}

func NewReviewController(service *services.ReviewService) *ReviewController {
	return &ReviewController{service: service}
}

// Store handles POST /restaurants/{id}/reviews.
func (h *ReviewController) Store(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var in services.ReviewInput
	if !c.BindJSON(&in) {
		return
	}

	review, err := h.service.Create(c.Context(), p, c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(review)
}

func (h *ReviewController) Destroy(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Context(), p, c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Review deleted successfully")
}

func (h *ReviewController) Mine(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	limit, err := c.QueryInt("limit", defaultReviewLimit)
	if err != nil {
		c.Fail(err)
		return
	}

	reviews, err := h.service.ForUser(c.Context(), p, limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(reviews)
}

func (h *ReviewController) ForRestaurant(c *ctx.Context) {
	limit, err := c.QueryInt("limit", defaultReviewLimit)
	if err != nil {
		c.Fail(err)
		return
	}

	reviews, err := h.service.ForRestaurant(c.Context(), c.Param("id"), limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(reviews)
}
