package domain

// AutoResponse 是 FAQ 机器人使用的问答对。
type AutoResponse struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Question string `gorm:"type:varchar(191);uniqueIndex:idx_question;not null" json:"question"`
	Response string `gorm:"type:text;not null" json:"response"`
}

// TableName 实现 GORM 的 tabler 接口。
func (AutoResponse) TableName() string { return "auto_responses" }
