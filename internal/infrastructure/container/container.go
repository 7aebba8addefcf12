package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
	"finbot/internal/infrastructure/config"
	"finbot/internal/infrastructure/storage"
	badgerrepo "finbot/internal/infrastructure/storage/badgerdb"
	"finbot/internal/infrastructure/storage/composite"
	pgrepo "finbot/internal/infrastructure/storage/postgres"
	redisrepo "finbot/internal/infrastructure/storage/redis"
	sqliterepo "finbot/internal/infrastructure/storage/sqlite"
)

// Container 存储层依赖：按配置打开各个后端，合成一个 port.Repository
type Container struct {
	cfg         *config.Config
	sqliteRepo  *sqliterepo.Repo
	redisRepo   *redisrepo.Repo
	pgRepo      *pgrepo.Repo
	badgerRepo  *badgerrepo.Repo
	repo        port.Repository
	closeOnce   sync.Once
	closerChain []func() error
}

// New 创建新的容器实例；没有启用任何后端时使用内存存储
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}

	if err := c.initStorage(ctx); err != nil {
		// 清理已初始化的资源
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// initStorage 初始化存储层（SQLite、Redis、Postgres、Badger），顺序即读取优先级
func (c *Container) initStorage(ctx context.Context) error {
	var backends []port.Repository

	if c.cfg.Storage.SQLite.Enabled {
		if err := c.initSQLite(); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
		backends = append(backends, c.sqliteRepo)
	}

	if c.cfg.Storage.Redis.Enabled {
		if err := c.initRedis(ctx); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		backends = append(backends, c.redisRepo)
	}

	if c.cfg.Storage.Postgres.Enabled {
		if err := c.initPostgres(); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
		backends = append(backends, c.pgRepo)
	}

	if c.cfg.Storage.Badger.Enabled {
		if err := c.initBadger(); err != nil {
			return fmt.Errorf("badger init failed: %w", err)
		}
		backends = append(backends, c.badgerRepo)
	}

	switch len(backends) {
	case 0:
		log.Warn().Msg("no storage backend enabled, seen ids will not survive restart")
		c.repo = storage.NewInMemoryRepo()
	case 1:
		c.repo = backends[0]
	default:
		comp := composite.New(backends...)
		log.Info().Int("backends", comp.Len()).Msg("composite storage initialized")
		c.repo = comp
	}
	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis(ctx context.Context) error {
	rc := c.cfg.Storage.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	// 测试连接
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisRepo = redisrepo.New(
		rdb,
		rc.Prefix,
		time.Duration(rc.TTLHours)*time.Hour,
		rc.DispatchStream,
		rc.DispatchChannel,
	)

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return c.redisRepo.Close()
	})

	log.Info().
		Str("addr", rc.Addr).
		Int("db", rc.DB).
		Msg("redis initialized")
	return nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() error {
	repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
	if err != nil {
		return err
	}
	c.sqliteRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", c.cfg.Storage.SQLite.Path).
		Msg("sqlite initialized")
	return nil
}

func (c *Container) initPostgres() error {
	repo, err := pgrepo.New(c.cfg.Storage.Postgres.DSN)
	if err != nil {
		return err
	}
	c.pgRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})
	log.Info().Msg("postgres initialized")
	return nil
}

func (c *Container) initBadger() error {
	repo, err := badgerrepo.New(c.cfg.Storage.Badger.Path)
	if err != nil {
		return err
	}
	c.badgerRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing badger")
		return repo.Close()
	})
	log.Info().
		Str("path", c.cfg.Storage.Badger.Path).
		Bool("in_memory", c.cfg.Storage.Badger.Path == "").
		Msg("badger initialized")
	return nil
}

// Repository 合成后的仓储，已读窗口和发送日志都走这里
func (c *Container) Repository() port.Repository {
	return c.repo
}

// SQLiteRepo 获取 SQLite 仓储
func (c *Container) SQLiteRepo() *sqliterepo.Repo {
	return c.sqliteRepo
}

func (c *Container) BadgerRepo() *badgerrepo.Repo {
	return c.badgerRepo
}

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Info().Msg("container closed")
	})
	return err
}
