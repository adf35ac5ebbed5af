package reconnect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DoyleJ11/mafia-client/internal/state"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Credentials are what a player needs to take its seat back.
type Credentials struct {
	RoomCode state.RoomCode
	PlayerID state.PlayerID
	SavedAt  time.Time
}

// record is one stored seat per profile.
type record struct {
	ID        uint      `gorm:"primaryKey"`
	Profile   string    `gorm:"size:64;uniqueIndex;not null"`
	RoomCode  uint32    `gorm:"not null"`
	PlayerID  uint32    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (record) TableName() string { return "reconnect_credentials" }

// Store keeps reconnect credentials in sqlite or postgres.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

// Open connects to dsn and migrates the credentials table. A postgres://
// dsn uses postgres; anything else is a sqlite path. Credentials older than
// ttl are treated as missing; ttl 0 keeps them forever.
func Open(dsn string, ttl time.Duration, log *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("reconnect dsn is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open reconnect store: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate reconnect store: %w", err)
	}
	log.Debug("reconnect store ready", zap.String("driver", dialector.Name()))
	return &Store{db: db, ttl: ttl, log: log, now: time.Now}, nil
}

// Save replaces the credentials stored for profile.
func (s *Store) Save(ctx context.Context, profile string, c Credentials) error {
	now := s.now()
	rec := record{
		Profile:   profile,
		RoomCode:  uint32(c.RoomCode),
		PlayerID:  uint32(c.PlayerID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}},
		DoUpdates: clause.AssignmentColumns([]string{"room_code", "player_id", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	s.log.Debug("saved credentials", zap.String("profile", profile), zap.Stringer("room", c.RoomCode))
	return nil
}

// Load returns the credentials for profile. Expired credentials are deleted
// and reported as missing.
func (s *Store) Load(ctx context.Context, profile string) (Credentials, bool, error) {
	var rec record
	err := s.db.WithContext(ctx).Where("profile = ?", profile).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, fmt.Errorf("load credentials: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(rec.UpdatedAt) > s.ttl {
		s.log.Debug("credentials expired", zap.String("profile", profile))
		return Credentials{}, false, s.Delete(ctx, profile)
	}
	return Credentials{
		RoomCode: state.RoomCode(rec.RoomCode),
		PlayerID: state.PlayerID(rec.PlayerID),
		SavedAt:  rec.UpdatedAt,
	}, true, nil
}

// Delete forgets profile. Deleting a missing profile is not an error.
func (s *Store) Delete(ctx context.Context, profile string) error {
	if err := s.db.WithContext(ctx).Where("profile = ?", profile).Delete(&record{}).Error; err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
