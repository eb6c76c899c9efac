package db

import (
	"fmt"
	"time"

	"messenger/models"

	"gorm.io/gorm"
)

// migration - именованный raw-SQL шаг. Примененные шаги фиксируются
// в таблице migrations и повторно не выполняются.
type migration struct {
	Name string
	SQL  string
}

// Индексы, которые AutoMigrate выразить не может.
// Частичный уникальный индекс гарантирует не более одной pending-заявки
// на неупорядоченную пару пользователей: из двух конкурирующих вставок
// ровно одна упадет с нарушением уникальности.
var messagingMigrations = []migration{
	{
		Name: "friend_requests_pending_pair_idx",
		SQL: `
			CREATE UNIQUE INDEX IF NOT EXISTS friend_requests_pending_pair_idx
			ON friend_requests (least(sender_id, receiver_id), greatest(sender_id, receiver_id))
			WHERE status = 'pending';
		`,
	},
	{
		// Выборка истории диалога от новых к старым
		Name: "idx_messages_dialog_id",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_messages_dialog_id
			ON messages (user_a, user_b, id DESC);
		`,
	},
	{
		Name: "idx_messages_group_id",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_messages_group_id
			ON messages (group_id, id DESC);
		`,
	},
}

// ApplyMessagingIndexes применяет raw-SQL миграции мессенджера.
// SQLite (тесты) не поддерживает least/greatest, там инвариант
// уникальности pending-пары обеспечивается транзакционной
// перепроверкой в сервисе.
func ApplyMessagingIndexes(database *gorm.DB) error {
	if database.Dialector.Name() != "postgres" {
		return nil
	}
	return applyMigrations(database, messagingMigrations)
}

// applyMigrations выполняет шаги, еще не отмеченные в таблице migrations,
// и записывает каждый примененный шаг
func applyMigrations(database *gorm.DB, steps []migration) error {
	for _, step := range steps {
		var applied int64
		err := database.Model(&models.Migration{}).
			Where("name = ?", step.Name).
			Count(&applied).Error
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", step.Name, err)
		}
		if applied > 0 {
			continue
		}
		if err := database.Exec(step.SQL).Error; err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", step.Name, err)
		}
		record := &models.Migration{Name: step.Name, AppliedAt: time.Now()}
		if err := database.Create(record).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", step.Name, err)
		}
	}
	return nil
}
