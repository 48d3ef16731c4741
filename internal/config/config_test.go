package config_test

import (
	"testing"

	"blendcaja/internal/config"
	"blendcaja/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParametros_ParseaDecimales(t *testing.T) {
	cfg := &config.Config{
		TasaImpuesto:   "16",
		TasaCambio:     "36.5",
		IGTFHabilitado: true,
		IGTFTasa:       "3",
		Epsilon:        "0.0001",
	}
	p, err := cfg.Parametros()
	require.NoError(t, err)
	assert.True(t, p.TasaCambio.Equal(decimal.RequireFromString("36.5")))
	assert.True(t, p.IGTF.Habilitado)
	assert.True(t, p.IGTF.TasaPct.Equal(decimal.NewFromInt(3)))
	assert.True(t, p.IGTF.Epsilon.Equal(money.DefaultEpsilon))
}

func TestParametros_EpsilonPorDefecto(t *testing.T) {
	p, err := (&config.Config{Epsilon: "0"}).Parametros()
	require.NoError(t, err)
	assert.True(t, p.Epsilon.Equal(money.DefaultEpsilon))
}

func TestParametros_NumeroInvalido(t *testing.T) {
	_, err := (&config.Config{TasaCambio: "treinta"}).Parametros()
	assert.Error(t, err)
}

func TestParametros_ConTasa(t *testing.T) {
	p := config.Parametros{TasaCambio: decimal.NewFromInt(36)}
	assert.True(t, p.ConTasa(decimal.Zero).TasaCambio.Equal(decimal.NewFromInt(36)))
	assert.True(t, p.ConTasa(decimal.NewFromInt(40)).TasaCambio.Equal(decimal.NewFromInt(40)))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "9100")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "0.0001", cfg.Epsilon)
}
