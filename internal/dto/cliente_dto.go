package dto

import "github.com/shopspring/decimal"

// AbonoRequest is a customer paying on account at the register.
type AbonoRequest struct {
	PuntoDeVenta int             `json:"punto_de_venta" validate:"min=0"`
	Monto        decimal.Decimal `json:"monto"`
	Moneda       string          `json:"moneda"         validate:"required,oneof=principal secundaria extranjera"`
	Metodo       string          `json:"metodo"         validate:"required,oneof=efectivo tarjeta digital"`
	// Tasa converts a moneda=extranjera amount into primary currency.
	Tasa       decimal.Decimal `json:"tasa"`
	TasaCambio decimal.Decimal `json:"tasa_cambio"`
	Referencia *string         `json:"referencia"`
}

type ClienteResponse struct {
	ID         string          `json:"id"`
	Nombre     string          `json:"nombre"`
	Deuda      decimal.Decimal `json:"deuda"`
	SaldoFavor decimal.Decimal `json:"saldo_favor"`
}

type AbonoResponse struct {
	Cliente         ClienteResponse `json:"cliente"`
	MontoPrincipal  decimal.Decimal `json:"monto_principal"`
	AplicadoADeuda  decimal.Decimal `json:"aplicado_a_deuda"`
	AplicadoAWallet decimal.Decimal `json:"aplicado_a_wallet"`
}
