package submission

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/leaderboard"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/platform/metadata"
	"github.com/FitArena/activity-score-backend/internal/user"
	"github.com/FitArena/activity-score-backend/pkg/lifecycle"
	"gorm.io/gorm"
)

// recordMinHeap 实现了 container/heap 接口
type recordMinHeap []activity.ActivityRecord

func (h recordMinHeap) Len() int            { return len(h) }
func (h recordMinHeap) Less(i, j int) bool  { return h[i].ID < h[j].ID }
func (h recordMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *recordMinHeap) Push(x interface{}) { *h = append(*h, x.(activity.ActivityRecord)) }
func (h *recordMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// recordProcessor 是一个单一写入者，负责按记录ID的顺序把
// 已落盘的活动记录应用到Redis侧的派生视图（榜单分数和检查点）。
type recordProcessor struct {
	recordChan            chan activity.ActivityRecord
	lastProcessedRecordID uint
	buffer                *recordMinHeap
	processMutex          sync.Mutex
	isShutdown            bool
	shutdownMutex         sync.Mutex
}

// globalRecordProcessor 是一个私有的、全局的recordProcessor实例
var globalRecordProcessor = recordProcessor{
	recordChan: make(chan activity.ActivityRecord, 10000),
}

// initializeProcessor 初始化全局的recordProcessor实例
func initializeProcessor(startID uint) {
	globalRecordProcessor.lastProcessedRecordID = startID
	h := &recordMinHeap{}
	heap.Init(h)
	globalRecordProcessor.buffer = h
}

// startProcessor 启动处理器的主循环和巡查员
func startProcessor(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	defer gracefulHandle.Close()
	defer forcefulHandle.Close()
	fmt.Println("活动记录处理器 (Record Processor) 已启动。")

	// 立刻收集缺失的记录
	globalRecordProcessor.checkAndRequeueMissedRecords(gracefulHandle.Ctx())
	// 巡查员的生命周期与优雅关闭信号绑定
	patrollerCtx, patrollerCancel := context.WithCancel(gracefulHandle.Ctx())
	defer patrollerCancel()
	go globalRecordProcessor.runPatroller(patrollerCtx)

	globalRecordProcessor.runMainLoop(gracefulHandle, forcefulHandle)
}

// submitRecordToQueue 供服务层调用，提交一条已落盘的记录
func submitRecordToQueue(rec activity.ActivityRecord) {
	globalRecordProcessor.shutdownMutex.Lock()
	if globalRecordProcessor.isShutdown {
		globalRecordProcessor.shutdownMutex.Unlock()
		fmt.Printf("警告: 记录处理队列已关闭，放弃处理 record ID: %d\n", rec.ID)
		return
	}
	select {
	case globalRecordProcessor.recordChan <- rec:
		globalRecordProcessor.shutdownMutex.Unlock()
	default:
		globalRecordProcessor.shutdownMutex.Unlock()
		fmt.Printf("警告: 记录处理队列已满，暂时放弃实时处理 record ID: %d\n", rec.ID)
	}
}

// runMainLoop 是处理器的主事件循环，响应两阶段停机
func (rp *recordProcessor) runMainLoop(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	for {
		select {
		case <-gracefulHandle.Done():
			fmt.Println("Record Processor: 收到优雅停机信号，正在处理剩余任务...")
			rp.drainQueue(forcefulHandle)
			fmt.Println("Record Processor: 优雅停机完成，主循环退出。")
			return
		default:
			rp.processSingleRecord(gracefulHandle)
		}
	}
}

// drainQueue 在收到优雅停机信号后，尽力处理完暂存区和channel中的剩余任务
func (rp *recordProcessor) drainQueue(forcefulHandle *lifecycle.Handle) {
	rp.checkAndRequeueMissedRecords(forcefulHandle.Ctx())
	select {
	case <-forcefulHandle.Done():
		fmt.Println("Record Processor: 收到强制停机信号，排空队列被中断。")
		return
	default:
	}

	// 关闭channel，不再接收新任务
	rp.shutdownMutex.Lock()
	rp.isShutdown = true
	close(rp.recordChan)
	rp.shutdownMutex.Unlock()

	// 将channel中所有剩余的任务都转移到暂存区
	for rec := range rp.recordChan {
		rp.processMutex.Lock()
		heap.Push(rp.buffer, rec)
		rp.processMutex.Unlock()
	}

	// 循环处理暂存区，直到它为空或收到强制关闭信号
	for {
		select {
		case <-forcefulHandle.Done():
			fmt.Println("Record Processor: 收到强制停机信号，排空队列被中断。")
			return
		default:
		}

		rp.processMutex.Lock()
		if rp.buffer.Len() == 0 {
			rp.processMutex.Unlock()
			return
		}
		// 只处理连续的任务
		if (*rp.buffer)[0].ID == rp.lastProcessedRecordID+1 {
			rec := heap.Pop(rp.buffer).(activity.ActivityRecord)
			rp.processMutex.Unlock()
			// 排空模式下简化重试逻辑，失败则放弃
			if err := rp.applyRecordToRepository(rec); err == nil {
				rp.processMutex.Lock()
				rp.lastProcessedRecordID = rec.ID
				rp.processMutex.Unlock()
			} else {
				fmt.Printf("排空队列时处理 record ID %d 失败，已放弃: %v\n", rec.ID, err)
			}
		} else {
			rp.processMutex.Unlock()
			// 不连续说明有任务丢失，排空结束
			return
		}
	}
}

func (rp *recordProcessor) processSingleRecord(gracefulHandle *lifecycle.Handle) {
	nextRec, err := rp.getNextContinuousRecord(gracefulHandle)
	if err != nil {
		return
	}

	// 检查Redis健康状态
	if !database.IsRedisHealthy() {
		fmt.Println("Record Processor: 检测到Redis不可用或正在重建，暂停处理...")
		gracefulHandle.Sleep(5 * time.Second) // 与健康检查器同步休眠
		rp.processMutex.Lock()
		heap.Push(rp.buffer, nextRec)
		rp.processMutex.Unlock()
		return
	}

	select {
	case <-gracefulHandle.Done():
		return
	default:
	}

	err = rp.applyRecordToRepositoryWithRetry(gracefulHandle, nextRec)
	if err != nil {
		if err != context.Canceled && err != context.DeadlineExceeded {
			fmt.Printf("错误: 处理 record ID %d 失败，已放回队列: %v\n", nextRec.ID, err)
		}
		rp.processMutex.Lock()
		heap.Push(rp.buffer, nextRec)
		rp.processMutex.Unlock()
		return
	}

	// 只有在成功处理后才更新ID
	rp.processMutex.Lock()
	rp.lastProcessedRecordID = nextRec.ID
	rp.processMutex.Unlock()
}

// getNextContinuousRecord 是一个阻塞函数，它会一直等待直到获取到下一个连续的记录
// 可以被gracefulHandle中断
func (rp *recordProcessor) getNextContinuousRecord(gracefulHandle *lifecycle.Handle) (activity.ActivityRecord, error) {
	for {
		rp.processMutex.Lock()
		// 丢弃所有过时的堆顶元素
		for rp.buffer.Len() > 0 && (*rp.buffer)[0].ID <= rp.lastProcessedRecordID {
			heap.Pop(rp.buffer)
		}

		// 检查暂存区是否有需要的下一条记录
		if rp.buffer.Len() > 0 && (*rp.buffer)[0].ID == rp.lastProcessedRecordID+1 {
			rec := heap.Pop(rp.buffer).(activity.ActivityRecord)
			rp.processMutex.Unlock()
			return rec, nil
		}
		rp.processMutex.Unlock()

		select {
		case <-gracefulHandle.Done():
			return activity.ActivityRecord{}, gracefulHandle.Err()
		case rec := <-rp.recordChan:
			rp.processMutex.Lock()
			if rec.ID <= rp.lastProcessedRecordID {
				rp.processMutex.Unlock()
				continue // 过时的记录，直接丢弃
			}
			if rec.ID == rp.lastProcessedRecordID+1 {
				rp.processMutex.Unlock()
				return rec, nil
			}
			// 记录太新，放入暂存区
			heap.Push(rp.buffer, rec)
			rp.processMutex.Unlock()
		}
	}
}

// applyRecordToRepositoryWithRetry 带指数退避和健康检查的重试逻辑
func (rp *recordProcessor) applyRecordToRepositoryWithRetry(gracefulHandle *lifecycle.Handle, rec activity.ActivityRecord) error {
	initialDelay := 8 * time.Millisecond
	maxDelay := 2 * time.Second

	delay := initialDelay
	for delay < maxDelay { // 短循环重试
		err := rp.applyRecordToRepository(rec)
		if err == nil {
			return nil
		}
		if err = gracefulHandle.Sleep(delay); err != nil {
			return err
		}
		delay *= 2
	}

	// 进入长循环告警模式
	for {
		if !database.IsRedisHealthy() {
			return context.Canceled
		}

		err := rp.applyRecordToRepository(rec)
		if err == nil {
			return nil
		}

		fmt.Printf("告警: Redis持续写入失败，将在%v后重试 record ID %d\n", maxDelay, rec.ID)
		if err := gracefulHandle.Sleep(maxDelay); err != nil {
			return err
		}
	}
}

// runPatroller 启动一个后台巡查员，定期检查数据库中是否有被遗漏的记录
func (rp *recordProcessor) runPatroller(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rp.checkAndRequeueMissedRecords(ctx)
		}
	}
}

func (rp *recordProcessor) checkAndRequeueMissedRecords(ctx context.Context) {
	if !database.IsRedisHealthy() {
		return // 如果Redis不健康，则跳过本次巡查
	}

	rp.processMutex.Lock()
	startID := rp.lastProcessedRecordID
	bufferMinID := uint(0)
	if rp.buffer.Len() > 0 {
		bufferMinID = (*rp.buffer)[0].ID
	}
	rp.processMutex.Unlock()

	select {
	case <-ctx.Done():
		return
	default:
	}

	var missedRecords []activity.ActivityRecord
	query := database.DB.Where("id > ?", startID)
	if bufferMinID > 0 {
		query = query.Where("id < ?", bufferMinID)
	}
	query.Order("id asc").Limit(1000).Find(&missedRecords)

	if len(missedRecords) > 0 {
		rp.processMutex.Lock()
		currentID := rp.lastProcessedRecordID
		rp.processMutex.Unlock()
		if bufferMinID > 0 && currentID >= bufferMinID {
			return
		}

		fmt.Printf("巡查员: 发现 %d 条被遗漏的活动记录，正在提交处理...\n", len(missedRecords))
		for _, rec := range missedRecords {
			select {
			case <-ctx.Done():
				return
			default:
				if rec.ID > currentID {
					submitRecordToQueue(rec)
				}
			}
		}
	}
}

// applyRecordToRepository 把单条记录的影响应用到Redis。
// SQLite是事实来源，这里只刷新榜单分数并推进检查点；
// 被拒绝的记录只推进检查点，保持ID序列连续。
// 先写分数后写检查点：两步之间失败时该记录会被重放，
// 而写入的是SQLite里的绝对总分，重放是幂等的。
func (rp *recordProcessor) applyRecordToRepository(rec activity.ActivityRecord) error {
	rp.processMutex.Lock()
	currentID := rp.lastProcessedRecordID
	rp.processMutex.Unlock()
	if currentID > rec.ID {
		return nil
	}

	if rec.IsValid {
		// 从SQLite重读当前总分，而不是信任队列里的快照
		var u user.User
		if err := database.DB.Select("uuid", "total_points").
			Where("uuid = ?", rec.UserUUID).First(&u).Error; err != nil {
			return fmt.Errorf("无法读取用户 %s 的总分: %w", rec.UserUUID, err)
		}
		if err := leaderboard.UpdateUserScore(u.UUID, u.TotalPoints); err != nil {
			return err
		}
	}
	return database.RDB.Set(database.Ctx, metadata.RedisLastAppliedActivityIDKey, rec.ID, 0).Err()
}

// lastRecordID 返回SQLite中最新一条活动记录的ID。
func lastRecordID() (uint, error) {
	var rec activity.ActivityRecord
	err := database.DB.Order("id desc").First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}
