package handler

import (
	"net/http"
	"strconv"

	"almapos/internal/dto"
	"almapos/internal/middleware"
	"almapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// AsegurarSesion godoc
// @Summary      Abrir o recuperar la sesión de caja de una fecha
// @Description  Idempotente: si la sesión ya existe la devuelve, si no la crea heredando saldos del último cierre.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AsegurarSesionRequest true "Fecha de la sesión"
// @Success      200  {object} dto.SesionResponse
// @Router       /v1/caja/sesion [post]
func (h *CajaHandler) AsegurarSesion(c *gin.Context) {
	var req dto.AsegurarSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AsegurarSesion(c.Request.Context(), middleware.ComercioID(c), req.Fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary      Resumen de caja del día
// @Description  Totales de ventas, comisiones, gastos e ingresos más el teórico. Lectura de tablero, cacheada brevemente.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string true "Fecha YYYY-MM-DD"
// @Success      200   {object} dto.ResumenCaja
// @Failure      404   {object} apierror.Error
// @Router       /v1/caja/resumen [get]
func (h *CajaHandler) Resumen(c *gin.Context) {
	fecha := c.Query("fecha")
	resp, err := h.svc.Resumen(c.Request.Context(), middleware.ComercioID(c), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary      Cerrar la caja del día
// @Description  Congela la sesión, calcula la diferencia contra lo declarado y registra el cierre. El reporte PDF se genera en segundo plano.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CerrarCajaRequest true "Montos declarados"
// @Success      200  {object} dto.CierreResponse
// @Failure      404  {object} apierror.Error
// @Failure      409  {object} apierror.Error
// @Router       /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), middleware.ComercioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reabrir godoc
// @Summary      Reabrir una caja cerrada
// @Description  Vuelve la sesión a abierta para correcciones. Los cierres ya registrados se conservan.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ReabrirCajaRequest true "Fecha de la sesión"
// @Success      200  {object} dto.SesionResponse
// @Failure      404  {object} apierror.Error
// @Failure      409  {object} apierror.Error
// @Router       /v1/caja/reabrir [post]
func (h *CajaHandler) Reabrir(c *gin.Context) {
	var req dto.ReabrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Reabrir(c.Request.Context(), middleware.ComercioID(c), req.Fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IniciarDiaSiguiente godoc
// @Summary      Abrir la sesión del día siguiente
// @Description  Requiere la sesión del día cerrada; los saldos declarados pasan como iniciales del día siguiente.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.DiaSiguienteRequest true "Fecha de la sesión cerrada"
// @Success      201  {object} dto.SesionResponse
// @Failure      404  {object} apierror.Error
// @Failure      409  {object} apierror.Error
// @Router       /v1/caja/dia-siguiente [post]
func (h *CajaHandler) IniciarDiaSiguiente(c *gin.Context) {
	var req dto.DiaSiguienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.IniciarDiaSiguiente(c.Request.Context(), middleware.ComercioID(c), req.Fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarCierres godoc
// @Summary      Historial de cierres
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Página (default 1)"
// @Param        limit query int false "Registros por página (default 20)"
// @Success      200   {object} map[string]interface{}
// @Router       /v1/caja/cierres [get]
func (h *CajaHandler) ListarCierres(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := h.svc.ListarCierres(c.Request.Context(), middleware.ComercioID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
