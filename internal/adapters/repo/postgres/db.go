package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/storefront/internal/config"
	"github.com/phenrril/storefront/internal/domain"
)

// Open abre el pool de conexiones contra PostgreSQL.
func Open(cfg config.Database) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(cfg.PostgresDSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate crea o actualiza el esquema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Category{}, &domain.SortimentCategory{}, &domain.Product{}, &domain.ProductImage{}, &domain.ProductAttribute{},
		&domain.User{}, &domain.CartItem{}, &domain.Order{}, &domain.OrderItem{},
		&domain.AttributeCategory{}, &domain.AttributeValue{}, &domain.ContactMessage{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_image_order ON product_images(product_id, display_order)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages(created_at)",
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			log.Warn().Err(err).Str("stmt", s).Msg("migrate index")
		}
	}
	return nil
}

// translate mapea errores de gorm a los del dominio.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.Errorf(domain.ErrNotFound, "%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Errorf(domain.ErrDuplicate, "%s already exists", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// likePattern arma el patrón para LOWER(col) LIKE ?.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// los comodines del usuario se buscan literalmente; las consultas usan ESCAPE '\'
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
