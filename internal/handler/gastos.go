package handler

import (
	"net/http"

	"blendcaja/internal/dto"
	"blendcaja/internal/service"

	"github.com/gin-gonic/gin"
)

type GastosHandler struct{ svc service.GastoService }

func NewGastosHandler(svc service.GastoService) *GastosHandler { return &GastosHandler{svc: svc} }

// Registrar godoc
// @Summary Registra un gasto pagado con dinero de la caja
// @Tags gastos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarGastoRequest true "Gasto"
// @Success 201 {object} dto.GastoResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/gastos [post]
func (h *GastosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.PuntoDeVenta = puntoDeVenta(c, req.PuntoDeVenta)

	resp, err := h.svc.RegistrarGasto(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Revertir godoc
// @Summary Revierte un gasto
// @Description Devuelve el monto a la sesion abierta y registra una reversa. El gasto original solo queda marcado.
// @Tags gastos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id   path string                   true "ID del gasto"
// @Param body body dto.RevertirGastoRequest true "Motivo"
// @Success 201 {object} dto.GastoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/gastos/{id}/revertir [post]
func (h *GastosHandler) Revertir(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.RevertirGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RevertirGasto(c.Request.Context(), usuarioID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
