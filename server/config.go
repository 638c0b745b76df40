package server

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wandworld/game"
	"wandworld/protocol"
)

const envPrefix = "WANDWORLD_"

// Config 进程配置。优先级：命令行 > 环境变量 > .env 文件 > 默认值
type Config struct {
	Addr       string
	PathPrefix string // /ws 与管理接口的前缀
	StaticDir  string // 为空则不提供静态文件

	LogFile   string
	LogLevel  string
	LogStderr bool

	TickInterval time.Duration
	Codec        string
	SpawnShrine  bool
	Seed         int64
	Pixies       int
	Raining      bool
	IndoorScenes []game.SceneKey
}

// Log 返回日志配置
func (c Config) Log() LogConfig {
	return LogConfig{File: c.LogFile, Level: c.LogLevel, Stderr: c.LogStderr}
}

// WorldConfig 返回世界构造参数
func (c Config) WorldConfig() game.WorldConfig {
	rules := game.DefaultRules()
	rules.Raining = c.Raining
	return game.WorldConfig{
		Rules:        rules,
		SpawnShrine:  c.SpawnShrine,
		Seed:         c.Seed,
		Pixies:       c.Pixies,
		IndoorScenes: c.IndoorScenes,
	}
}

// parseSceneKeys 解析空白分隔的 "x,y" 列表，如 "0,1 -2,3"
func parseSceneKeys(s string) ([]game.SceneKey, error) {
	var keys []game.SceneKey
	for _, f := range strings.Fields(s) {
		x, y, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("scene %q: want x,y", f)
		}
		kx, err := strconv.Atoi(x)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", f, err)
		}
		ky, err := strconv.Atoi(y)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", f, err)
		}
		keys = append(keys, game.SceneKey{X: kx, Y: ky})
	}
	return keys, nil
}

// envDefaults 从环境变量读取 flag 默认值，记录第一个解析错误
type envDefaults struct {
	err error
}

func (e *envDefaults) str(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return def
}

func (e *envDefaults) boolean(key string, def bool) bool {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return b
}

func (e *envDefaults) integer(key string, def int64) int64 {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *envDefaults) duration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *envDefaults) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("env %s%s: %w", envPrefix, key, err)
	}
}

// LoadConfig 解析命令行参数（不含程序名）
func LoadConfig(args []string) (Config, error) {
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var env envDefaults
	var cfg Config
	var indoor string
	flags := flag.NewFlagSet("wandworld", flag.ContinueOnError)
	flags.StringVar(&cfg.Addr, "addr", env.str("ADDR", ":8080"), "server listen address, e.g. :8080")
	flags.StringVar(&cfg.PathPrefix, "path-prefix", env.str("PATH_PREFIX", ""), "prefix for /ws and admin routes, e.g. /game")
	flags.StringVar(&cfg.StaticDir, "static", env.str("STATIC_DIR", ""), "directory served at / (empty disables)")
	flags.StringVar(&cfg.LogFile, "log-file", env.str("LOG_FILE", "app.log"), "rotating log file (empty disables)")
	flags.StringVar(&cfg.LogLevel, "log-level", env.str("LOG_LEVEL", "info"), "debug, info, warn or error")
	flags.BoolVar(&cfg.LogStderr, "log-stderr", env.boolean("LOG_STDERR", false), "also log to stderr")
	flags.DurationVar(&cfg.TickInterval, "tick", env.duration("TICK_INTERVAL", game.DefaultTickInterval), "tick interval")
	flags.StringVar(&cfg.Codec, "codec", env.str("CODEC", "json"), "wire codec: json or msgpack")
	flags.BoolVar(&cfg.SpawnShrine, "spawn-shrine", env.boolean("SPAWN_SHRINE", true), "build the shrine around the spawn point")
	flags.Int64Var(&cfg.Seed, "seed", env.integer("SEED", time.Now().UnixNano()), "random seed")
	flags.IntVar(&cfg.Pixies, "pixies", int(env.integer("PIXIES", 3)), "mana pixies in the spawn scene")
	flags.BoolVar(&cfg.Raining, "rain", env.boolean("RAIN", false), "rain soaks players outdoors")
	flags.StringVar(&indoor, "indoor-scenes", env.str("INDOOR_SCENES", ""), "indoor scenes as space separated x,y pairs")
	if env.err != nil {
		return Config{}, env.err
	}
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.PathPrefix = strings.TrimRight(cfg.PathPrefix, "/")
	keys, err := parseSceneKeys(indoor)
	if err != nil {
		return Config{}, fmt.Errorf("indoor scenes: %w", err)
	}
	cfg.IndoorScenes = keys
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.Pixies < 0 {
		return fmt.Errorf("pixies must be >= 0, got %d", c.Pixies)
	}
	if c.PathPrefix != "" && !strings.HasPrefix(c.PathPrefix, "/") {
		return fmt.Errorf("path prefix must start with /, got %q", c.PathPrefix)
	}
	if _, err := protocol.CodecByName(c.Codec); err != nil {
		return err
	}
	return nil
}
