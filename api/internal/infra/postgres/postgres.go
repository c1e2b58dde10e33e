package postgres

import (
	"checkout/api/internal/config"
	"checkout/api/internal/domain"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Tables = []any{&domain.PaymentSessions{}, &domain.Orders{}, &domain.Events{}}

func Init(config *config.Config) *gorm.DB {
	dbConfig := config.Postgres
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s", dbConfig.Host, dbConfig.User, dbConfig.Password, dbConfig.Db_name, dbConfig.Port, dbConfig.Ssl_mode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic("Gorm error: " + err.Error())
	}

	if err := Migrate(db); err != nil {
		panic("Auto migrate error: " + err.Error())
	}

	return db
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Tables...); err != nil {
		return err
	}

	// order numbers come from a sequence, max+1 races under concurrent checkouts
	return db.Exec(fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH %d", ORDER_NUMBER_SEQ, domain.ORDER_NUMBER_START)).Error
}

const ORDER_NUMBER_SEQ = "order_number_seq"

func DropTables(db *gorm.DB) error {
	if err := db.Migrator().DropTable(Tables...); err != nil {
		return err
	}
	return db.Exec("DROP SEQUENCE IF EXISTS " + ORDER_NUMBER_SEQ).Error
}
