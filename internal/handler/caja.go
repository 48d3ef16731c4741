package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"blendcaja/internal/apierror"
	"blendcaja/internal/dto"
	"blendcaja/internal/repository"
	"blendcaja/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CajaHandler struct {
	svc        service.CajaService
	cierreRepo repository.CierreRepository
}

func NewCajaHandler(svc service.CajaService, cierreRepo repository.CierreRepository) *CajaHandler {
	return &CajaHandler{svc: svc, cierreRepo: cierreRepo}
}

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Saldos iniciales por moneda y metodo"
// @Success 201 {object} dto.SesionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.PuntoDeVenta = puntoDeVenta(c, req.PuntoDeVenta)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion con conteo ciego opcional
// @Description El desvio se calcula recien despues de recibir la declaracion. Un desvio critico exige observaciones.
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Declaracion de cierre"
// @Success 200 {object} dto.CierreResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.PuntoDeVenta = puntoDeVenta(c, req.PuntoDeVenta)

	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetActiva returns the open session of a register with its running balances.
func (h *CajaHandler) GetActiva(c *gin.Context) {
	solicitado, _ := strconv.Atoi(c.Query("punto_de_venta"))
	resp, err := h.svc.Activa(c.Request.Context(), puntoDeVenta(c, solicitado))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarReporte godoc
// @Summary Descarga el reporte Z de un cierre
// @Tags caja
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/cierres/{id}/reporte [get]
func (h *CajaHandler) DescargarReporte(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cierre, err := h.cierreRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apierror.Estado("cierre_no_encontrado", "cierre %s no encontrado", id))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if cierre.ReportePath == nil {
		c.JSON(http.StatusAccepted, apierror.New("El reporte todavia se esta generando"))
		return
	}
	c.FileAttachment(*cierre.ReportePath, fmt.Sprintf("cierre_pdv%d_%s.pdf", cierre.PuntoDeVenta, cierre.ClosedAt.Format("20060102_1504")))
}
