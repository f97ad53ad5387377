package rest

import (
	"net/http"

	"fareRadar/business/fareagent"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	AgentAdminHandler struct {
		validate *validator.Validate
		agent    AgentService
	}

	AgentService interface {
		Snapshot() map[string]fareagent.ActionValues
		Epsilon() float64
		SetEpsilon(epsilon float64) error
	}

	EpsilonRequest struct {
		Epsilon *float64 `json:"epsilon" validate:"required,min=0,max=1"`
	}
)

func NewAgentAdminHandler(agent AgentService) *AgentAdminHandler {
	return &AgentAdminHandler{
		validate: validator.New(),
		agent:    agent,
	}
}

// QTable dumps the learned table for inspection.
func (h *AgentAdminHandler) QTable(c echo.Context) error {
	payload := map[string]any{
		"epsilon": h.agent.Epsilon(),
		"actions": fareagent.Actions,
		"states":  h.agent.Snapshot(),
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(payload))
}

func (h *AgentAdminHandler) SetEpsilon(c echo.Context) error {
	var req EpsilonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.agent.SetEpsilon(*req.Epsilon); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]float64{"epsilon": h.agent.Epsilon()}))
}
