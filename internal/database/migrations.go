package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/memelab/memehub/internal/chat"
	"github.com/memelab/memehub/internal/users"
)

const migrationSeedPresetCharacters = "2026-08-10_seed_preset_characters"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationSeedPresetCharacters, apply: seedPresetCharacters},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// seedPresetCharacters installs the sentinel system user and the five preset
// chat personalities.
func seedPresetCharacters(db *gorm.DB) error {
	systemUser := users.User{ID: chat.SystemOwnerID, Username: "系统"}
	if err := db.Where("id = ?", systemUser.ID).FirstOrCreate(&systemUser).Error; err != nil {
		return err
	}

	presets := []chat.Character{
		{
			ID:          "char-1",
			Name:        "梗博士",
			Personality: "一个博学多才的梗文化专家，喜欢解释各种梗的来源和含义，说话幽默风趣，喜欢用专业术语分析梗的传播规律。",
			Avatar:      "🎓",
			CreatedByID: chat.SystemOwnerID,
		},
		{
			ID:          "char-2",
			Name:        "段子手小王",
			Personality: "一个搞笑的段子手，说话风趣幽默，擅长即兴创作新梗，喜欢用网络流行语，总是能让人捧腹大笑。",
			Avatar:      "😂",
			CreatedByID: chat.SystemOwnerID,
		},
		{
			ID:          "char-3",
			Name:        "吐槽君",
			Personality: "一个犀利的吐槽达人，对各种现象都有独到见解，说话直接犀利但又不失幽默，喜欢吐槽各种奇葩梗。",
			Avatar:      "🗣️",
			CreatedByID: chat.SystemOwnerID,
		},
		{
			ID:          "char-4",
			Name:        "温暖姐姐",
			Personality: "一个温柔体贴的知心姐姐，说话温柔治愈，喜欢用温暖的方式解读梗，关心每个人的情绪。",
			Avatar:      "💝",
			CreatedByID: chat.SystemOwnerID,
		},
		{
			ID:          "char-5",
			Name:        "程序员小李",
			Personality: "一个热爱编程的程序员，喜欢用代码和技术的角度解读梗，经常提到BUG、加班、996等程序员话题。",
			Avatar:      "💻",
			CreatedByID: chat.SystemOwnerID,
		},
	}

	for _, preset := range presets {
		character := preset
		if err := db.Where("id = ?", character.ID).FirstOrCreate(&character).Error; err != nil {
			return err
		}
	}
	return nil
}
