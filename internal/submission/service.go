package submission

import (
	"errors"
	"fmt"
	"time"

	"github.com/FitArena/activity-score-backend/internal/achievement"
	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/user"
	"gorm.io/gorm"
)

// SubmissionResult 是一次活动提交的完整结果。
type SubmissionResult struct {
	Record      activity.ActivityRecord
	Breakdown   activity.ScoreBreakdown
	Unlocks     []achievement.UnlockEvent
	TotalPoints float64
}

// ProcessSubmission 是处理活动提交的核心函数。
// 整个流程在该用户的串行锁内执行：装配上下文、归一化、评分、
// 在一个SQLite事务中落盘记录和新上下文，最后把记录交给处理器
// 异步更新Redis侧的派生视图。被拒绝的记录同样落盘，供审计使用。
func ProcessSubmission(userID string, raw activity.RawReport) (*SubmissionResult, error) {
	user.LockUser(userID)
	defer user.UnlockUser(userID)

	// 确保用户已持久化，首次提交时完成激活
	if err := user.ActivateUser(userID); err != nil {
		return nil, fmt.Errorf("无法激活用户 %s: %w", userID, err)
	}

	// 1. 归一化原始上报，用户身份以cookie为准
	raw.UserUUID = userID
	rec, err := activity.Normalize(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	// 2. 装配评分上下文快照
	ctx, err := user.BuildContext(userID, now)
	if err != nil {
		return nil, err
	}

	// 3. 纯函数评分
	engine := activity.DefaultEngine()
	scored, err := engine.Score(rec, ctx)
	if err != nil {
		return nil, err
	}

	rec.IsValid = scored.Breakdown.IsValid
	rec.RejectionReason = scored.Breakdown.RejectionReason
	rec.Points = scored.Breakdown.CappedTotal
	rec.Breakdown = &scored.Breakdown

	// 反作弊拒绝单独留痕，审计行之外再打一条日志供人工复核
	if !rec.IsValid && activity.IsFraudReason(rec.RejectionReason) {
		fmt.Printf("反作弊: 用户 %s 的活动 %s 被拒绝 (%s)，待人工复核\n",
			userID, rec.ActivityID, rec.RejectionReason)
	}

	result := &SubmissionResult{Breakdown: scored.Breakdown}

	// 4. 在一个SQLite事务中落盘
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			if database.IsDuplicateKeyError(err) {
				return errors.New("活动记录已存在")
			}
			return fmt.Errorf("无法持久化活动记录: %w", err)
		}

		if !scored.Breakdown.IsValid {
			// 被拒绝的记录只留审计行，上下文保持不变
			result.TotalPoints = ctx.TotalPoints
			return nil
		}

		newCtx := scored.UpdatedContext

		// 5. 在同一事务中推进成就状态
		input := achievement.EvalInput{
			Lifetime:   newCtx.LifetimeTotals,
			Session:    activity.SessionMetrics(&rec, &scored.Breakdown, scored.SessionOneRepMax),
			StreakDays: newCtx.StreakDays,
		}
		unlocks, reward, err := achievement.ApplyScoredActivity(tx, userID, input, now)
		if err != nil {
			return err
		}
		if reward > 0 {
			newCtx.TotalPoints += reward
			newCtx.AddLifetime(activity.MetricPoints, reward)
		}

		// 6. 写回新上下文
		if err := user.CommitContext(tx, &ctx, &newCtx); err != nil {
			return err
		}

		result.Unlocks = unlocks
		result.TotalPoints = newCtx.TotalPoints
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Record = rec

	// 7. 事务提交后，把记录交给单一写入者异步更新Redis
	submitRecordToQueue(rec)

	return result, nil
}
