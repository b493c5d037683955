package data

import (
	"log"

	"github.com/sauti-platform/sauti/src/api/types"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&types.User{}, &types.Bill{}, &types.BillClause{},
	&types.ClauseAnalytics{}, &types.Submission{},
	&types.CitizenEngagement{}, &types.BillFollower{},
	&types.Notification{},
}

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

func Migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}
