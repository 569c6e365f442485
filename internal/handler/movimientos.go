package handler

import (
	"net/http"

	"almapos/internal/apierror"
	"almapos/internal/dto"
	"almapos/internal/middleware"
	"almapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MovimientosHandler struct{ svc service.MovimientoService }

func NewMovimientosHandler(svc service.MovimientoService) *MovimientosHandler {
	return &MovimientosHandler{svc: svc}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// CrearGasto godoc
// @Summary      Registrar un gasto
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GastoRequest true "Detalle del gasto"
// @Success      201  {object} dto.MovimientoResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/gastos [post]
func (h *MovimientosHandler) CrearGasto(c *gin.Context) {
	var req dto.GastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearGasto(c.Request.Context(), middleware.ComercioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActualizarGasto godoc
// @Summary      Modificar un gasto
// @Description  Solo mientras la sesión que lo contiene sigue abierta.
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string          true "UUID del gasto"
// @Param        body body dto.GastoRequest true "Detalle del gasto"
// @Success      200  {object} dto.MovimientoResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/gastos/{id} [put]
func (h *MovimientosHandler) ActualizarGasto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.GastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarGasto(c.Request.Context(), middleware.ComercioID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarGasto godoc
// @Summary      Eliminar un gasto
// @Tags         movimientos
// @Security     BearerAuth
// @Param        id path string true "UUID del gasto"
// @Success      204
// @Failure      409 {object} apierror.Error
// @Router       /v1/gastos/{id} [delete]
func (h *MovimientosHandler) EliminarGasto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarGasto(c.Request.Context(), middleware.ComercioID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CrearIngreso godoc
// @Summary      Registrar un ingreso extra
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.IngresoRequest true "Detalle del ingreso"
// @Success      201  {object} dto.MovimientoResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/ingresos [post]
func (h *MovimientosHandler) CrearIngreso(c *gin.Context) {
	var req dto.IngresoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearIngreso(c.Request.Context(), middleware.ComercioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActualizarIngreso godoc
// @Summary      Modificar un ingreso extra
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string            true "UUID del ingreso"
// @Param        body body dto.IngresoRequest true "Detalle del ingreso"
// @Success      200  {object} dto.MovimientoResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/ingresos/{id} [put]
func (h *MovimientosHandler) ActualizarIngreso(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.IngresoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarIngreso(c.Request.Context(), middleware.ComercioID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarIngreso godoc
// @Summary      Eliminar un ingreso extra
// @Tags         movimientos
// @Security     BearerAuth
// @Param        id path string true "UUID del ingreso"
// @Success      204
// @Failure      409 {object} apierror.Error
// @Router       /v1/ingresos/{id} [delete]
func (h *MovimientosHandler) EliminarIngreso(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarIngreso(c.Request.Context(), middleware.ComercioID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarMovimientos godoc
// @Summary      Gastos e ingresos de una fecha
// @Tags         movimientos
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string true "Fecha YYYY-MM-DD"
// @Success      200   {object} map[string]interface{}
// @Failure      404   {object} apierror.Error
// @Router       /v1/movimientos [get]
func (h *MovimientosHandler) ListarMovimientos(c *gin.Context) {
	fecha := c.Query("fecha")
	gastos, ingresos, err := h.svc.ListarMovimientos(c.Request.Context(), middleware.ComercioID(c), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gastos":   gastos,
		"ingresos": ingresos,
	})
}
