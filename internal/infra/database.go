package infra

import (
	"fmt"

	"blendcaja/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. When autoMigrate is
// set it creates / updates all tables and then applies the idempotent SQL
// patches GORM cannot express (sequences, partial indexes).
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if !autoMigrate {
		return db, nil
	}
	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema. Used at startup and by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.Cliente{},
		&model.SesionCaja{},
		&model.SaldoCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.VentaPago{},
		&model.VentaVuelto{},
		&model.Gasto{},
		&model.CierreCaja{},
		&model.CierreSaldo{},
		&model.Auditoria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own. Each statement uses IF NOT EXISTS semantics so re-running
// on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// ticket numbers come from a sequence so concurrent sales never collide
		`CREATE SEQUENCE IF NOT EXISTS ventas_numero_ticket_seq START 1`,
		`SELECT setval('ventas_numero_ticket_seq',
		        GREATEST((SELECT COALESCE(MAX(numero_ticket), 0) FROM ventas), 1),
		        (SELECT COUNT(*) > 0 FROM ventas))`,
		// at most one open session per register
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sesion_abierta_por_pdv
		    ON sesion_cajas (punto_de_venta)
		    WHERE estado = 'abierta'`,
		`CREATE INDEX IF NOT EXISTS idx_ventas_sesion_estado
		    ON ventas (sesion_caja_id, estado)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
