package content

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/wfunc/whale-bot/internal/config"
	apperrors "github.com/wfunc/whale-bot/internal/errors"
	"go.uber.org/zap"
)

// 内容分类名，同时作为存储中使用环的键前缀
const (
	CategoryQuestions   = "questions"
	CategoryChallenges  = "challenges"
	CategoryConfessions = "confessions"
	CategoryMentions    = "mentions"
)

// Categories 全部内容分类
var Categories = []string{
	CategoryQuestions,
	CategoryChallenges,
	CategoryConfessions,
	CategoryMentions,
}

// 文件缺失或为空时的保底内容
var fallbacks = map[string][]string{
	CategoryQuestions: {
		"ما هو أكثر شيء تحبه في الحياة؟",
		"لو استطعت السفر لأي مكان، أين تذهب؟",
		"ما هي أمنيتك التي لم تتحقق بعد؟",
	},
	CategoryChallenges: {
		"تحدى نفسك وأرسل رسالة لأقرب شخص لك",
		"غيّر صورتك الشخصية لمدة ساعة",
	},
	CategoryConfessions: {
		"اعترف بشيء لم تخبر به أحداً من قبل",
		"اعترف بآخر كذبة قلتها",
	},
	CategoryMentions: {
		"منشن شخص تحب التحدث معه دائماً",
		"منشن أكثر شخص يضحكك",
	},
}

// Pools 内容池集合
//
// 每个分类对应一份从文件加载的固定文本序列。
// 加载一次后只读，Reload整体替换，因此读路径用读锁。
type Pools struct {
	mu    sync.RWMutex
	cfg   config.ContentConfig
	pools map[string][]string
	log   *zap.Logger
}

// LoadPools 从内容目录加载全部分类
//
// 文件缺失或为空时回退到内置保底内容，保证每个分类非空。
func LoadPools(cfg config.ContentConfig, log *zap.Logger) *Pools {
	p := &Pools{
		cfg:   cfg,
		pools: make(map[string][]string),
		log:   log,
	}
	p.loadAll()
	return p
}

// fileFor 分类对应的文件名
func (p *Pools) fileFor(category string) string {
	switch category {
	case CategoryQuestions:
		return p.cfg.QuestionsFile
	case CategoryChallenges:
		return p.cfg.ChallengesFile
	case CategoryConfessions:
		return p.cfg.ConfessionsFile
	case CategoryMentions:
		return p.cfg.MentionsFile
	default:
		return ""
	}
}

// loadAll 加载所有分类（整体替换）
func (p *Pools) loadAll() {
	fresh := make(map[string][]string, len(Categories))
	for _, category := range Categories {
		items := p.loadFile(category)
		if len(items) == 0 {
			p.log.Warn("内容文件缺失或为空，使用保底内容",
				zap.String("category", category))
			items = append([]string(nil), fallbacks[category]...)
		}
		fresh[category] = items
	}

	p.mu.Lock()
	p.pools = fresh
	p.mu.Unlock()

	for category, items := range fresh {
		p.log.Info("内容池加载完成",
			zap.String("category", category),
			zap.Int("items", len(items)))
	}
}

// loadFile 读取单个分类文件，忽略空行
func (p *Pools) loadFile(category string) []string {
	name := p.fileFor(category)
	if name == "" {
		return nil
	}

	path := filepath.Join(p.cfg.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.log.Error("打开内容文件失败",
				zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	var items []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			items = append(items, line)
		}
	}
	if err := scanner.Err(); err != nil {
		p.log.Error("读取内容文件失败",
			zap.String("path", path), zap.Error(err))
	}
	return items
}

// Get 获取分类的全部条目
func (p *Pools) Get(category string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pools[category]
}

// Reload 重新加载全部分类（管理端触发或目录变化时）
func (p *Pools) Reload() {
	p.loadAll()
}

// Validate 校验所有分类非空（启动时调用）
func (p *Pools) Validate() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, category := range Categories {
		if len(p.pools[category]) == 0 {
			return apperrors.Newf(apperrors.ErrContentEmpty, "分类 %s 为空", category)
		}
	}
	return nil
}

// Watch 监听内容目录变化并自动重载
//
// 返回停止函数；目录不可监听时返回错误但不影响正常运行。
func (p *Pools) Watch() (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(p.cfg.Dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					p.log.Info("内容目录变化，重新加载",
						zap.String("file", event.Name))
					p.Reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Warn("内容目录监听错误", zap.Error(err))
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
