package handler

import (
	"net/http"

	"blendcaja/internal/apierror"
	"blendcaja/internal/config"
	"blendcaja/internal/dto"
	"blendcaja/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct {
	svc    service.VentaService
	params config.Parametros
}

func NewVentasHandler(svc service.VentaService, params config.Parametros) *VentasHandler {
	return &VentasHandler{svc: svc, params: params}
}

// Calcular godoc
// @Summary      Previsualizar una venta
// @Description  Calcula totales, IGTF, restante y vuelto sin modificar stock, caja ni clientes.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CalcularVentaRequest true "Carrito y pagos"
// @Success      200  {object} dto.CalculoVentaResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas/calcular [post]
func (h *VentasHandler) Calcular(c *gin.Context) {
	var req dto.CalcularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), req, h.params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarVenta godoc
// @Summary      Registrar una nueva venta
// @Description  Registra la venta en una sola transaccion: stock, saldos de caja, cuenta del cliente y auditoria.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      402  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.PuntoDeVenta = puntoDeVenta(c, req.PuntoDeVenta)

	resp, err := h.svc.RegistrarVenta(c.Request.Context(), usuarioID(c), req, h.params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnularVenta godoc
// @Summary      Anular venta
// @Description  Revierte caja, stock y cuenta del cliente. La venta queda anulada, nunca se borra.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                 true "UUID de la venta"
// @Param        body body     dto.AnularVentaRequest true "Motivo de anulacion"
// @Success      200  {object} dto.VentaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas/{id} [delete]
func (h *VentasHandler) AnularVenta(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AnularVenta(c.Request.Context(), usuarioID(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Retorna lista paginada de ventas filtrada por punto de venta, fecha y estado.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        punto_de_venta query int    false "Punto de venta"
// @Param        fecha          query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Param        estado         query string false "completada | anulada | all"
// @Param        page           query int    false "Pagina (default 1)"
// @Param        limit          query int    false "Registros por pagina (default 50)"
// @Success      200    {object} dto.VentaListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	filter.PuntoDeVenta = puntoDeVenta(c, filter.PuntoDeVenta)
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
