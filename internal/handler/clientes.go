package handler

import (
	"net/http"

	"blendcaja/internal/config"
	"blendcaja/internal/dto"
	"blendcaja/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct {
	svc    service.ClienteService
	params config.Parametros
}

func NewClientesHandler(svc service.ClienteService, params config.Parametros) *ClientesHandler {
	return &ClientesHandler{svc: svc, params: params}
}

// Obtener godoc
// @Summary Consulta la deuda y el saldo a favor de un cliente
// @Tags clientes
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cliente"
// @Success 200 {object} dto.ClienteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/clientes/{id} [get]
func (h *ClientesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarAbono godoc
// @Summary Registra un abono a la cuenta del cliente
// @Description El abono cancela deuda primero; el excedente queda como saldo a favor.
// @Tags clientes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id   path string           true "ID del cliente"
// @Param body body dto.AbonoRequest true "Abono"
// @Success 201 {object} dto.AbonoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/clientes/{id}/abonos [post]
func (h *ClientesHandler) RegistrarAbono(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.PuntoDeVenta = puntoDeVenta(c, req.PuntoDeVenta)

	resp, err := h.svc.RegistrarAbono(c.Request.Context(), usuarioID(c), id, req, h.params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
