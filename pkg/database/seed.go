package database

import (
	"lingua_backend/internal/model"

	"gorm.io/gorm"
)

// DefaultAchievements 成就目录，名称即唯一键
func DefaultAchievements() []model.Achievement {
	return []model.Achievement{
		{Name: "First Steps", Description: "Complete your first lesson", Icon: "👶", Category: model.CategoryLesson, Threshold: 1, XPReward: 10, GemReward: 5},
		{Name: "Scholar", Description: "Complete 5 lessons", Icon: "📚", Category: model.CategoryLesson, Threshold: 5, XPReward: 25, GemReward: 10},
		{Name: "Dedicated Learner", Description: "Complete 10 lessons", Icon: "🎓", Category: model.CategoryLesson, Threshold: 10, XPReward: 50, GemReward: 20},
		{Name: "Lesson Master", Description: "Complete 25 lessons", Icon: "🏛️", Category: model.CategoryLesson, Threshold: 25, XPReward: 100, GemReward: 50},

		{Name: "Warming Up", Description: "Reach a 3-day streak", Icon: "🔥", Category: model.CategoryStreak, Threshold: 3, XPReward: 15, GemReward: 10},
		{Name: "On Fire", Description: "Reach a 7-day streak", Icon: "🔥", Category: model.CategoryStreak, Threshold: 7, XPReward: 30, GemReward: 20},
		{Name: "Wildfire", Description: "Reach a 14-day streak", Icon: "🌋", Category: model.CategoryStreak, Threshold: 14, XPReward: 75, GemReward: 40},
		{Name: "Unstoppable", Description: "Reach a 30-day streak", Icon: "⚡", Category: model.CategoryStreak, Threshold: 30, XPReward: 150, GemReward: 100},
		{Name: "Legendary Streak", Description: "Reach a 100-day streak", Icon: "👑", Category: model.CategoryStreak, Threshold: 100, XPReward: 500, GemReward: 250},

		{Name: "Rising Star", Description: "Earn 100 XP", Icon: "⭐", Category: model.CategoryXP, Threshold: 100, XPReward: 20, GemReward: 10},
		{Name: "Experience Hunter", Description: "Earn 500 XP", Icon: "🌟", Category: model.CategoryXP, Threshold: 500, XPReward: 50, GemReward: 25},
		{Name: "XP Champion", Description: "Earn 1000 XP", Icon: "💫", Category: model.CategoryXP, Threshold: 1000, XPReward: 100, GemReward: 50},
		{Name: "XP Legend", Description: "Earn 5000 XP", Icon: "🌠", Category: model.CategoryXP, Threshold: 5000, XPReward: 250, GemReward: 150},

		{Name: "Perfectionist", Description: "Finish a lesson without mistakes", Icon: "💯", Category: model.CategoryPerfect, Threshold: 1, XPReward: 20, GemReward: 15},
		{Name: "Flawless Five", Description: "Finish 5 lessons without mistakes", Icon: "✨", Category: model.CategoryPerfect, Threshold: 5, XPReward: 50, GemReward: 30},
		{Name: "Perfect Ten", Description: "Finish 10 lessons without mistakes", Icon: "🏆", Category: model.CategoryPerfect, Threshold: 10, XPReward: 100, GemReward: 60},

		{Name: "Quest Starter", Description: "Complete your first quest", Icon: "🎯", Category: model.CategoryQuest, Threshold: 1, XPReward: 15, GemReward: 10},
		{Name: "Quest Warrior", Description: "Complete 10 quests", Icon: "⚔️", Category: model.CategoryQuest, Threshold: 10, XPReward: 50, GemReward: 30},
		{Name: "Quest Master", Description: "Complete 25 quests", Icon: "🛡️", Category: model.CategoryQuest, Threshold: 25, XPReward: 125, GemReward: 75},

		{Name: "Early Bird", Description: "Complete a lesson before 8 AM", Icon: "🌅", Category: model.CategoryTime, Threshold: 8, XPReward: 25, GemReward: 15},
		{Name: "Night Owl", Description: "Complete a lesson after 10 PM", Icon: "🦉", Category: model.CategoryTime, Threshold: 22, XPReward: 25, GemReward: 15},

		{Name: "Gem Collector", Description: "Hold 100 gems", Icon: "💎", Category: model.CategoryGems, Threshold: 100, XPReward: 50, GemReward: 25},
		{Name: "Treasure Hunter", Description: "Hold 500 gems", Icon: "💰", Category: model.CategoryGems, Threshold: 500, XPReward: 150, GemReward: 75},
	}
}

func DefaultQuests() []model.DailyQuest {
	return []model.DailyQuest{
		{QuestType: model.QuestEarnXP, Title: "Earn 50 XP", Description: "Earn 50 XP today", TargetValue: 50, XPReward: 10, GemReward: 5, IsActive: true},
		{QuestType: model.QuestCompleteLessons, Title: "Complete 3 lessons", Description: "Finish 3 lessons today", TargetValue: 3, XPReward: 15, GemReward: 10, IsActive: true},
		{QuestType: model.QuestPerfectLesson, Title: "Perfect lesson", Description: "Finish a lesson without mistakes", TargetValue: 1, XPReward: 20, GemReward: 10, IsActive: true},
		{QuestType: model.QuestWeeklyWarrior, Title: "Weekly Warrior", Description: "Finish 5 perfect lessons this week", TargetValue: 5, XPReward: 50, GemReward: 30, IsWeekly: true, IsActive: true},
		{QuestType: model.QuestStreakMaster, Title: "Streak Master", Description: "Keep a 7-day streak", TargetValue: 7, XPReward: 40, GemReward: 25, IsWeekly: true, IsActive: true},
	}
}

// Seed 仅在表为空时写入默认数据
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		achievements := DefaultAchievements()
		if err := db.Create(&achievements).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&model.DailyQuest{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		quests := DefaultQuests()
		if err := db.Create(&quests).Error; err != nil {
			return err
		}
	}
	return nil
}
