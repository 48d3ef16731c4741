package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaldoRequest is one (moneda, metodo) amount: an opening balance or a declared count.
type SaldoRequest struct {
	Moneda string          `json:"moneda" validate:"required,oneof=principal secundaria extranjera"`
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo tarjeta digital"`
	Monto  decimal.Decimal `json:"monto"  validate:"min=0"`
}

type AbrirCajaRequest struct {
	PuntoDeVenta int            `json:"punto_de_venta" validate:"min=0"`
	Saldos       []SaldoRequest `json:"saldos"         validate:"dive"`
}

// CerrarCajaRequest closes the register's open session. Declaracion is optional:
// without it no discrepancy is computed.
type CerrarCajaRequest struct {
	PuntoDeVenta  int            `json:"punto_de_venta" validate:"min=0"`
	Declaracion   []SaldoRequest `json:"declaracion"    validate:"dive"`
	Observaciones *string        `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaldoResponse struct {
	Moneda  string          `json:"moneda"`
	Metodo  string          `json:"metodo"`
	Inicial decimal.Decimal `json:"inicial"`
	Actual  decimal.Decimal `json:"actual"`
}

type SesionResponse struct {
	ID           string          `json:"id"`
	PuntoDeVenta int             `json:"punto_de_venta"`
	UsuarioID    string          `json:"usuario_id"`
	Estado       string          `json:"estado"`
	Saldos       []SaldoResponse `json:"saldos"`
	OpenedAt     string          `json:"opened_at"`
	ClosedAt     *string         `json:"closed_at"`
}

type CierreSaldoResponse struct {
	Moneda     string           `json:"moneda"`
	Metodo     string           `json:"metodo"`
	Inicial    decimal.Decimal  `json:"inicial"`
	Ventas     decimal.Decimal  `json:"ventas"`
	Gastos     decimal.Decimal  `json:"gastos"`
	Abonos     decimal.Decimal  `json:"abonos"`
	Esperado   decimal.Decimal  `json:"esperado"`
	Declarado  *decimal.Decimal `json:"declarado"`
	Diferencia *decimal.Decimal `json:"diferencia"`
}

type CierreResponse struct {
	ID               string                `json:"id"`
	SesionCajaID     string                `json:"sesion_caja_id"`
	PuntoDeVenta     int                   `json:"punto_de_venta"`
	CantidadVentas   int                   `json:"cantidad_ventas"`
	CantidadAnuladas int                   `json:"cantidad_anuladas"`
	TotalVentas      decimal.Decimal       `json:"total_ventas"`
	TotalIGTF        decimal.Decimal       `json:"total_igtf"`
	TotalCredito     decimal.Decimal       `json:"total_credito"`
	CantidadGastos   int                   `json:"cantidad_gastos"`
	Saldos           []CierreSaldoResponse `json:"saldos"`
	DesvioPct        *decimal.Decimal      `json:"desvio_pct"`
	Clasificacion    *string               `json:"clasificacion"` // normal | advertencia | critico
	Observaciones    *string               `json:"observaciones"`
	VentaIDs         []string              `json:"venta_ids"`
	OpenedAt         string                `json:"opened_at"`
	ClosedAt         string                `json:"closed_at"`
}
