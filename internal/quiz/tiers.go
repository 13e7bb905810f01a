package quiz

import (
	"fmt"
	"sort"
)

type TierName string

const (
	TierPerfect        TierName = "perfect"
	TierExcellent      TierName = "excellent"
	TierVeryGood       TierName = "very_good"
	TierKeepPracticing TierName = "keep_practicing"
)

// Tier 成绩档位：得分百分比 >= Threshold 即命中
type Tier struct {
	Threshold float64  `mapstructure:"threshold" json:"threshold"`
	Name      TierName `mapstructure:"name" json:"name"`
	Title     string   `mapstructure:"title" json:"title"`
	Message   string   `mapstructure:"message" json:"message"`
	Icon      string   `mapstructure:"icon" json:"icon"`
}

// TierPolicy 自上而下匹配的档位表
type TierPolicy []Tier

func DefaultTierPolicy() TierPolicy {
	return TierPolicy{
		{
			Threshold: 100,
			Name:      TierPerfect,
			Title:     "PERFEKT! 🎉",
			Message:   "Congratulations! You got every question correct! You're a German vocabulary master!",
			Icon:      "🏆",
		},
		{
			Threshold: 90,
			Name:      TierExcellent,
			Title:     "AUSGEZEICHNET! 💪",
			Message:   "Excellent work! You have a strong grasp of this vocabulary. Keep up the great effort!",
			Icon:      "🌟",
		},
		{
			Threshold: 80,
			Name:      TierVeryGood,
			Title:     "SEHR GUT! ✅",
			Message:   "Very good! You're doing well with these vocabulary words. A bit more practice and you'll be excellent!",
			Icon:      "👍",
		},
		{
			Threshold: 0,
			Name:      TierKeepPracticing,
			Title:     "WEITER ÜBEN! 📚",
			Message:   "Keep practicing! Review the words you got wrong and try again. You'll improve with each attempt!",
			Icon:      "📖",
		},
	}
}

// Validate 要求阈值严格递减且最后一档为 0，保证任何百分比都能命中
func (p TierPolicy) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("tier policy is empty")
	}
	if !sort.SliceIsSorted(p, func(i, j int) bool { return p[i].Threshold > p[j].Threshold }) {
		return fmt.Errorf("tier thresholds must be in descending order")
	}
	for i := 1; i < len(p); i++ {
		if p[i].Threshold == p[i-1].Threshold {
			return fmt.Errorf("duplicate tier threshold %.0f", p[i].Threshold)
		}
	}
	if p[len(p)-1].Threshold != 0 {
		return fmt.Errorf("last tier threshold must be 0, got %.0f", p[len(p)-1].Threshold)
	}
	return nil
}

// Evaluate 返回百分比命中的第一档
func (p TierPolicy) Evaluate(percent float64) Tier {
	for _, t := range p {
		if percent >= t.Threshold {
			return t
		}
	}
	if len(p) > 0 {
		return p[len(p)-1]
	}
	return Tier{Name: TierKeepPracticing}
}

// Percent 计算得分百分比，total 为 0 时返回 0
func Percent(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) * 100 / float64(total)
}
