package main

import (
	"fmt"
	"time"

	"github.com/quocanhngo/kickoff/internal/config"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/auth"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type seedField struct {
	name, address string
	lat, long     float64
	pricePerHour  string
}

var fields = []seedField{
	{"Sân bóng Chảo Lửa", "30 Phan Thúc Duyện, Tân Bình, TP.HCM", 10.8009, 106.6634, "300000"},
	{"Sân Hoa Lư", "2 Đinh Tiên Hoàng, Quận 1, TP.HCM", 10.7883, 106.7000, "350000"},
	{"Sân K34", "34 Đường số 7, Bình Tân, TP.HCM", 10.7550, 106.6050, "250000"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Info("✅ Connected to Database")

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, 30*24*time.Hour)

	log.Info("🌱 Seeding 10 users...")
	users := make([]model.User, 0, 10)
	for i := 1; i <= 10; i++ {
		nickname := fmt.Sprintf("player%d", i)
		user := model.User{
			ID:        fmt.Sprintf("seed-user-%d", i),
			FullName:  fmt.Sprintf("Player Number %d", i),
			Nickname:  &nickname,
			AvatarURL: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", nickname),
		}
		if err := db.Where("id = ?", user.ID).FirstOrCreate(&user).Error; err != nil {
			log.Errorf("❌ Failed to create user %s: %v", user.ID, err)
			continue
		}
		users = append(users, user)

		var roles []string
		if i == 1 {
			roles = append(roles, auth.RoleAdmin)
		}
		token, err := jwtManager.GenerateToken(user.ID, user.FullName, roles...)
		if err != nil {
			log.Fatalf("❌ Failed to sign token: %v", err)
		}
		log.Infof("✅ %s (%s) roles=%v token=%s", user.ID, nickname, roles, token)
	}
	if len(users) < 3 {
		log.Fatal("❌ Not enough users to seed games")
	}

	log.Info("🌱 Seeding fields...")
	seeded := make([]model.Field, 0, len(fields))
	for _, f := range fields {
		field := model.Field{
			Name:             f.name,
			Address:          f.address,
			Latitude:         f.lat,
			Longitude:        f.long,
			OpeningTime:      "06:00:00",
			ClosingTime:      "23:00:00",
			BasePricePerHour: decimal.RequireFromString(f.pricePerHour),
			Amenities:        datatypes.JSONMap{"parking": true, "showers": true},
		}
		if err := db.Where("name = ?", f.name).FirstOrCreate(&field).Error; err != nil {
			log.Errorf("❌ Failed to create field %s: %v", f.name, err)
			continue
		}
		seeded = append(seeded, field)
	}

	seedGames(db, seeded, users)

	log.Info("🎉 Seeding completed!")
}

// seedGames creates one upcoming 5-a-side and one 7-a-side game per field, with
// the second and third users already joined to the first game.
func seedGames(db *gorm.DB, fields []model.Field, users []model.User) {
	var count int64
	db.Model(&model.Game{}).Count(&count)
	if count > 0 {
		return
	}

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	for i, field := range fields {
		organizer := users[i%len(users)]
		for j, gameType := range []int{5, 7} {
			begin := start.Add(time.Duration(i*24+j*3) * time.Hour)
			game := model.Game{
				FieldID:        field.ID,
				OrganizerID:    organizer.ID,
				GameType:       gameType,
				GameLevel:      2 + j,
				StartTime:      begin,
				EndTime:        begin.Add(90 * time.Minute),
				TotalSpots:     gameType * 2,
				AvailableSpots: gameType * 2,
				PricePerPlayer: decimal.NewFromInt(int64(50000 + j*20000)),
				Status:         model.GameStatusOpen,
			}
			if err := db.Create(&game).Error; err != nil {
				log.Errorf("❌ Failed to create game at %s: %v", field.Name, err)
				continue
			}
			if i == 0 && j == 0 {
				joinSeedPlayers(db, &game, users[1:3])
			}
		}
	}
	log.Infof("✅ Created demo games on %d fields", len(fields))
}

func joinSeedPlayers(db *gorm.DB, game *model.Game, players []model.User) {
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, p := range players {
			if err := tx.Create(&model.GamePlayer{
				GameID:   game.ID,
				PlayerID: p.ID,
				JoinedAt: time.Now(),
				Status:   model.PlayerStatusJoined,
			}).Error; err != nil {
				return err
			}
		}
		game.AvailableSpots -= len(players)
		return tx.Model(game).Update("available_spots", game.AvailableSpots).Error
	})
	if err != nil {
		log.Errorf("❌ Failed to join seed players: %v", err)
	}
}
