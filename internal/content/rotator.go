package content

import (
	"math/rand"

	apperrors "github.com/wfunc/whale-bot/internal/errors"
	"github.com/wfunc/whale-bot/internal/models"
	"github.com/wfunc/whale-bot/internal/store"
	"go.uber.org/zap"
)

// Rotator 内容轮换器
//
// 从内容池随机抽取条目并避开近期用过的内容：
// 每个分类维护一个持久化的使用环，环容量为池大小的一半（向下取整），
// 可选集合耗尽时清空环重新开始，因此非空池的抽取永远成功。
type Rotator struct {
	pools *Pools
	store *store.Store
	log   *zap.Logger
	pick  func(n int) int
}

// NewRotator 创建轮换器
func NewRotator(pools *Pools, st *store.Store, log *zap.Logger) *Rotator {
	return &Rotator{
		pools: pools,
		store: st,
		log:   log,
		pick:  rand.Intn,
	}
}

// Draw 从分类中抽取一条未在近期使用过的内容
func (r *Rotator) Draw(category string) (string, error) {
	pool := r.pools.Get(category)
	if len(pool) == 0 {
		// 保底内容保证了正常配置下不会走到这里
		return "", apperrors.Newf(apperrors.ErrContentEmpty, "分类 %s 为空", category)
	}

	var selected string
	r.store.Update(func(data *models.Store) bool {
		ring := data.UsedRing(category)

		eligible := excludeUsed(pool, ring)
		if len(eligible) == 0 {
			// 全部用过：清空环，整个池重新可选
			ring = nil
			eligible = pool
		}

		selected = eligible[r.pick(len(eligible))]

		ring = append(ring, selected)

		// 环最多保留最近的 floor(池大小/2) 条
		if capLen := len(pool) / 2; len(ring) > capLen {
			ring = ring[len(ring)-capLen:]
		}

		data.SetUsedRing(category, ring)
		return true
	})

	return selected, nil
}

// excludeUsed 返回池中未出现在环里的条目
func excludeUsed(pool, ring []string) []string {
	if len(ring) == 0 {
		return pool
	}

	used := make(map[string]struct{}, len(ring))
	for _, item := range ring {
		used[item] = struct{}{}
	}

	var eligible []string
	for _, item := range pool {
		if _, ok := used[item]; !ok {
			eligible = append(eligible, item)
		}
	}
	return eligible
}
