package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	PuntoDeVenta int    `form:"punto_de_venta"`
	Fecha        string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado       string `form:"estado,default=completada"` // completada | anulada | all
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// VentaListItem is returned inside VentaListResponse for GET /v1/ventas.
type VentaListItem struct {
	ID           string              `json:"id"`
	NumeroTicket int                 `json:"numero_ticket"`
	PuntoDeVenta int                 `json:"punto_de_venta"`
	SesionCajaID string              `json:"sesion_caja_id"`
	UsuarioID    string              `json:"usuario_id"`
	CajeroNombre string              `json:"cajero_nombre"`
	Total        decimal.Decimal     `json:"total"`
	TotalConIGTF decimal.Decimal     `json:"total_con_igtf"`
	EsCredito    bool                `json:"es_credito"`
	Estado       string              `json:"estado"`
	Items        []ItemVentaResponse `json:"items"`
	Pagos        []PagoResponse      `json:"pagos"`
	CreatedAt    string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaListItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	// Unidad: unidad | paquete | bulto (empty = unidad)
	Unidad string `json:"unidad" validate:"omitempty,oneof=unidad paquete bulto"`
}

type PagoRequest struct {
	Monto      decimal.Decimal `json:"monto"`
	Moneda     string          `json:"moneda"      validate:"required,oneof=principal secundaria extranjera"`
	Metodo     string          `json:"metodo"      validate:"required,oneof=efectivo tarjeta digital saldo_favor"`
	AplicaIGTF bool            `json:"aplica_igtf"`
	// Tasa converts a moneda=extranjera amount into primary currency.
	Tasa       decimal.Decimal `json:"tasa"`
	Referencia *string         `json:"referencia"`
}

// VueltoRequest is the cashier's manual change distribution. When omitted, all
// change is handed back in primary-currency cash.
type VueltoRequest struct {
	EfectivoPrincipal  decimal.Decimal `json:"efectivo_principal"`
	EfectivoSecundaria decimal.Decimal `json:"efectivo_secundaria"`
	// AcreditarResto sends whatever is not handed back to the customer's wallet.
	AcreditarResto bool `json:"acreditar_resto"`
}

// CalcularVentaRequest is the preview input: no register, no customer, no state.
type CalcularVentaRequest struct {
	Items  []ItemVentaRequest `json:"items"  validate:"dive"`
	Pagos  []PagoRequest      `json:"pagos"  validate:"dive"`
	Vuelto *VueltoRequest     `json:"vuelto"`
	// TasaCambio overrides the configured rate for this sale when positive.
	TasaCambio decimal.Decimal `json:"tasa_cambio"`
}

type RegistrarVentaRequest struct {
	CalcularVentaRequest
	// PuntoDeVenta is taken from the token when the cashier is pinned to a register.
	PuntoDeVenta int     `json:"punto_de_venta" validate:"min=0"`
	ClienteID    *string `json:"cliente_id"     validate:"omitempty,uuid"`
	EsCredito    bool    `json:"es_credito"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	Unidad         string          `json:"unidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Impuesto       decimal.Decimal `json:"impuesto"`
	Total          decimal.Decimal `json:"total"`
}

type PagoResponse struct {
	Moneda         string          `json:"moneda"`
	Metodo         string          `json:"metodo"`
	Monto          decimal.Decimal `json:"monto"`
	MontoPrincipal decimal.Decimal `json:"monto_principal"`
	AplicaIGTF     bool            `json:"aplica_igtf"`
}

type VueltoResponse struct {
	EfectivoPrincipal  decimal.Decimal `json:"efectivo_principal"`
	EfectivoSecundaria decimal.Decimal `json:"efectivo_secundaria"`
	AWallet            decimal.Decimal `json:"a_wallet"`
}

// CalculoVentaResponse is what the payment screen renders before committing.
type CalculoVentaResponse struct {
	Items           []ItemVentaResponse `json:"items"`
	SubtotalBase    decimal.Decimal     `json:"subtotal_base"`
	TotalImpuesto   decimal.Decimal     `json:"total_impuesto"`
	TotalExento     decimal.Decimal     `json:"total_exento"`
	Total           decimal.Decimal     `json:"total"`
	TotalSecundaria decimal.Decimal     `json:"total_secundaria"`
	MontoIGTF       decimal.Decimal     `json:"monto_igtf"`
	TotalConIGTF    decimal.Decimal     `json:"total_con_igtf"`
	PagadoGlobal    decimal.Decimal     `json:"pagado_global"`
	Restante        decimal.Decimal     `json:"restante"`
	Vuelto          decimal.Decimal     `json:"vuelto"`
	Distribucion    *VueltoResponse     `json:"distribucion,omitempty"`
	// ErrorDistribucion explains why the requested change distribution is not valid yet.
	ErrorDistribucion *string `json:"error_distribucion,omitempty"`
}

type VentaResponse struct {
	ID              string              `json:"id"`
	NumeroTicket    int                 `json:"numero_ticket"`
	PuntoDeVenta    int                 `json:"punto_de_venta"`
	ClienteID       *string             `json:"cliente_id"`
	Items           []ItemVentaResponse `json:"items"`
	Pagos           []PagoResponse      `json:"pagos"`
	SubtotalBase    decimal.Decimal     `json:"subtotal_base"`
	TotalImpuesto   decimal.Decimal     `json:"total_impuesto"`
	TotalExento     decimal.Decimal     `json:"total_exento"`
	Total           decimal.Decimal     `json:"total"`
	TotalSecundaria decimal.Decimal     `json:"total_secundaria"`
	MontoIGTF       decimal.Decimal     `json:"monto_igtf"`
	TotalConIGTF    decimal.Decimal     `json:"total_con_igtf"`
	TasaCambio      decimal.Decimal     `json:"tasa_cambio"`
	Vuelto          VueltoResponse      `json:"vuelto"`
	EsCredito       bool                `json:"es_credito"`
	DeudaPendiente  decimal.Decimal     `json:"deuda_pendiente"`
	ConflictoStock  bool                `json:"conflicto_stock"`
	Estado          string              `json:"estado"`
	VersionEsquema  string              `json:"version_esquema"`
	CreatedAt       string              `json:"created_at"`
}
