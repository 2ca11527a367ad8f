package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Line    LineConfig    `mapstructure:"line"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Game    GameConfig    `mapstructure:"game"`
	Content ContentConfig `mapstructure:"content"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LineConfig LINE平台配置
type LineConfig struct {
	ChannelToken  string `mapstructure:"channel_token"`
	ChannelSecret string `mapstructure:"channel_secret"`
	APIEndpoint   string `mapstructure:"api_endpoint"`
}

// AdminConfig 管理接口配置
type AdminConfig struct {
	Token     string        `mapstructure:"token"`      // 明文令牌（与token_hash二选一）
	TokenHash string        `mapstructure:"token_hash"` // argon2id哈希后的令牌
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTExpiry time.Duration `mapstructure:"jwt_expiry"`
}

// GameConfig 游戏配置
type GameConfig struct {
	PointsCorrect   int64         `mapstructure:"points_correct"`   // 答对加分
	PointsHint      int64         `mapstructure:"points_hint"`      // 提示扣分（负数）
	RateLimit       int           `mapstructure:"rate_limit"`       // 窗口内最大消息数
	RateWindow      time.Duration `mapstructure:"rate_window"`      // 限流窗口长度
	CleanupDays     int           `mapstructure:"cleanup_days"`     // 不活跃清理阈值（天）
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // 清理任务周期
	LeaderboardSize int           `mapstructure:"leaderboard_size"` // 排行榜条目数
}

// ContentConfig 内容池配置
type ContentConfig struct {
	Dir             string `mapstructure:"dir"`
	QuestionsFile   string `mapstructure:"questions_file"`
	ChallengesFile  string `mapstructure:"challenges_file"`
	ConfessionsFile string `mapstructure:"confessions_file"`
	MentionsFile    string `mapstructure:"mentions_file"`
	WatchDir        bool   `mapstructure:"watch_dir"` // 监听目录变化自动重载
}

// StorageConfig 存储配置
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	Output string        `mapstructure:"output"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		// 设置配置文件路径
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 设置环境变量前缀
		v.SetEnvPrefix("WHALE_BOT")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		// 设置默认值
		setDefaults(v)

		// 读取配置文件
		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		// 解析配置到结构体
		cfg = &Config{}
		if err = v.Unmarshal(cfg); err != nil {
			return
		}

		err = validate(cfg)
	})

	return err
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// LINE默认配置
	v.SetDefault("line.api_endpoint", "https://api.line.me")

	// 管理接口默认配置
	v.SetDefault("admin.jwt_expiry", "1h")

	// 游戏默认配置
	v.SetDefault("game.points_correct", 2)
	v.SetDefault("game.points_hint", -1)
	v.SetDefault("game.rate_limit", 10)
	v.SetDefault("game.rate_window", "60s")
	v.SetDefault("game.cleanup_days", 45)
	v.SetDefault("game.cleanup_interval", "24h")
	v.SetDefault("game.leaderboard_size", 10)

	// 内容池默认配置
	v.SetDefault("content.dir", "./content")
	v.SetDefault("content.questions_file", "questions.txt")
	v.SetDefault("content.challenges_file", "challenges.txt")
	v.SetDefault("content.confessions_file", "confessions.txt")
	v.SetDefault("content.mentions_file", "mentions.txt")
	v.SetDefault("content.watch_dir", false)

	// 存储默认配置
	v.SetDefault("storage.path", "./data/whale-bot.json")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "both")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "whale-bot.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)
}

// validate 校验关键配置项
func validate(c *Config) error {
	if c.Game.RateLimit <= 0 {
		return fmt.Errorf("game.rate_limit 必须大于0")
	}
	if c.Game.RateWindow <= 0 {
		return fmt.Errorf("game.rate_window 必须大于0")
	}
	if c.Game.CleanupDays <= 0 {
		return fmt.Errorf("game.cleanup_days 必须大于0")
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()

		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := validate(newCfg); err != nil {
			fmt.Printf("配置重载校验失败: %v\n", err)
			return
		}

		cfg = newCfg

		if callback != nil {
			callback(cfg)
		}

		fmt.Println("配置已重新加载")
	})
}

// GetString 获取字符串配置
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool 获取布尔配置
func GetBool(key string) bool {
	return v.GetBool(key)
}
