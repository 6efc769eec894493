package controllers

import (
	"github.com/crowdfork/crowdfork/app/services"
	"github.com/crowdfork/crowdfork/pkg/ctx"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

func (h *UserController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}

	msg, err := h.service.Signup(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]string{"message": msg})
}

func (h *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	token, err := h.service.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]string{"token": token})
}

// Ping echoes the caller's uid, a cheap check that a token is accepted.
func (h *UserController) Ping(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	c.OK(p.UserID)
}

func (h *UserController) Me(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.service.Me(c.Context(), p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(user)
}

func (h *UserController) UpdateMe(c *ctx.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var in services.ProfileUpdate
	if !c.BindJSON(&in) {
		return
	}

	user, err := h.service.UpdateMe(c.Context(), p, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(user)
}
