// cmd/seeduser/main.go: crea o actualiza un usuario y opcionalmente productos de demo.
// Uso: go run ./cmd/seeduser -username admin -password 1234 -rol administrador -demo
package main

import (
	"context"
	"flag"
	"fmt"

	"blendcaja/internal/config"
	"blendcaja/internal/infra"
	"blendcaja/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	username := flag.String("username", "admin", "username del usuario")
	password := flag.String("password", "1234", "password en texto plano")
	nombre := flag.String("nombre", "Admin Demo", "nombre visible")
	rol := flag.String("rol", "administrador", "cajero | supervisor | administrador")
	pdv := flag.Int("pdv", 0, "punto de venta fijo (0 = ninguno)")
	demo := flag.Bool("demo", false, "crear productos y un cliente de demo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	u := model.Usuario{
		Username:     *username,
		Nombre:       *nombre,
		PasswordHash: string(hash),
		Rol:          *rol,
		Activo:       true,
	}
	if *pdv > 0 {
		u.PuntoDeVenta = pdv
	}
	ctx := context.Background()
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "nombre", "rol", "punto_de_venta", "activo"}),
	}).Create(&u).Error
	if err != nil {
		log.Fatal().Err(err).Msg("insert error")
	}
	fmt.Printf("Usuario '%s' creado/actualizado (rol %s)\n", *username, *rol)

	if *demo {
		if err := seedDemo(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("demo seed error")
		}
		fmt.Println("Datos de demo creados")
	}
}

func seedDemo(ctx context.Context, db *gorm.DB) error {
	productos := []model.Producto{
		{Nombre: "Harina 1kg", CodigoBarras: "7590000000011", PrecioVenta: decimal.RequireFromString("1.50"), Stock: decimal.NewFromInt(100), Activo: true},
		{Nombre: "Refresco 2L", CodigoBarras: "7590000000028", PrecioVenta: decimal.RequireFromString("2.25"), Stock: decimal.NewFromInt(48), Activo: true},
		{Nombre: "Queso (kg)", CodigoBarras: "7590000000035", PrecioVenta: decimal.RequireFromString("6.80"), Stock: decimal.NewFromInt(20), PorPeso: true, Activo: true},
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range productos {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&productos[i]).Error; err != nil {
				return err
			}
		}
		doc := "V-00000000"
		cliente := model.Cliente{Nombre: "Cliente Demo", Documento: &doc}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cliente).Error
	})
}
