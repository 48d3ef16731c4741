package dto

import "github.com/shopspring/decimal"

type RegistrarGastoRequest struct {
	PuntoDeVenta int             `json:"punto_de_venta" validate:"min=0"`
	Monto        decimal.Decimal `json:"monto"`
	Moneda       string          `json:"moneda"         validate:"required,oneof=principal secundaria extranjera"`
	Metodo       string          `json:"metodo"         validate:"required,oneof=efectivo tarjeta digital"`
	Motivo       string          `json:"motivo"         validate:"required,min=3"`
	TasaCambio   decimal.Decimal `json:"tasa_cambio"`
}

type RevertirGastoRequest struct {
	PuntoDeVenta int    `json:"punto_de_venta" validate:"min=0"`
	Motivo       string `json:"motivo"         validate:"required,min=3"`
}

type GastoResponse struct {
	ID              string          `json:"id"`
	Tipo            string          `json:"tipo"` // gasto | reversa
	PuntoDeVenta    int             `json:"punto_de_venta"`
	Monto           decimal.Decimal `json:"monto"`
	Moneda          string          `json:"moneda"`
	Metodo          string          `json:"metodo"`
	Motivo          string          `json:"motivo"`
	TasaCambio      decimal.Decimal `json:"tasa_cambio"`
	SaldoResultante decimal.Decimal `json:"saldo_resultante"`
	ReversaDeID     *string         `json:"reversa_de_id"`
	Revertido       bool            `json:"revertido"`
	CreatedAt       string          `json:"created_at"`
}
