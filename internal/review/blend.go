package review

import (
	"fmt"
	"math"
)

const (
	PolicyThreeTerm      = "three_term"
	PolicyMeanNormalized = "mean_normalized"

	maxScore = 5.0
)

// ExternalMark 教师给出的小组分（0-100）与等级（1-5），未设置时为 nil
type ExternalMark struct {
	GroupMark *float64
	Rating    *int
}

// BlendInput 成绩合成的输入
type BlendInput struct {
	Average    *float64 // 未发布时为 nil
	CohortMean float64  // 仅 mean_normalized 使用
	Mark       ExternalMark
}

// BlendPolicy 最终成绩合成策略
type BlendPolicy interface {
	Name() string
	Blend(in BlendInput) (float64, error)
}

// NewBlendPolicy 按名称返回合成策略
func NewBlendPolicy(name string) (BlendPolicy, error) {
	switch name {
	case PolicyThreeTerm, "":
		return ThreeTermBlend{}, nil
	case PolicyMeanNormalized:
		return MeanNormalizedBlend{}, nil
	default:
		return nil, fmt.Errorf("未知的成绩合成策略: %s", name)
	}
}

func checkInput(in BlendInput) (avg, gm, rating float64, err error) {
	if in.Average == nil {
		return 0, 0, 0, ErrNotReady
	}
	if in.Mark.GroupMark == nil || in.Mark.Rating == nil {
		return 0, 0, 0, ErrMarkIncomplete
	}
	return *in.Average, *in.Mark.GroupMark, float64(*in.Mark.Rating), nil
}

// ThreeTermBlend 50% 小组分 + 25% 按互评平均分缩放 + 25% 按教师等级缩放
type ThreeTermBlend struct{}

func (ThreeTermBlend) Name() string { return PolicyThreeTerm }

func (ThreeTermBlend) Blend(in BlendInput) (float64, error) {
	avg, gm, rating, err := checkInput(in)
	if err != nil {
		return 0, err
	}
	final := gm*0.50 +
		gm*0.25*(avg/maxScore) +
		gm*0.25*(rating/maxScore)
	return Round2(final), nil
}

// MeanNormalizedBlend 先把个人平均分按小组均值归一化（小组均值映射为 3.0，限制在 [0,5]），
// 再按 83% 互评 / 17% 教师等级合成
type MeanNormalizedBlend struct{}

func (MeanNormalizedBlend) Name() string { return PolicyMeanNormalized }

func (MeanNormalizedBlend) Blend(in BlendInput) (float64, error) {
	avg, gm, rating, err := checkInput(in)
	if err != nil {
		return 0, err
	}
	normalized := NormalizeToCohort(avg, in.CohortMean)
	peerPart := math.Min(100, gm*normalized/3)
	final := 0.83*peerPart + 0.17*gm*(rating/maxScore)
	return Round2(final), nil
}

// NormalizeToCohort 将平均分换算到小组均值为 3.0 的尺度
// 小组均值为 0 时所有人得分相同，统一记为 3.0
func NormalizeToCohort(avg, cohortMean float64) float64 {
	if cohortMean <= 0 {
		return 3
	}
	n := avg * 3 / cohortMean
	return math.Max(0, math.Min(maxScore, n))
}
