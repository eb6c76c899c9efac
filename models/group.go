package models

import "time"

// Group - группа для групповых сообщений
type Group struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	OwnerID   int64     `gorm:"index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupMember - членство пользователя в группе, одна строка на пару (group, user)
type GroupMember struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID  int64     `gorm:"index:group_member_idx,unique" json:"group_id"`
	UserID   int64     `gorm:"index:group_member_idx,unique" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
