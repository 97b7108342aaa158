package repositories

import (
	"context"

	"classhub/internal/core/ports"
	"classhub/internal/infrastructure/repositories/memory"
	pgrepo "classhub/internal/infrastructure/repositories/postgres"
	redisrepo "classhub/internal/infrastructure/repositories/redis"
	"classhub/pkg/config"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// RepositoryFactory creates repositories for the configured storage
// driver. A backend that cannot be reached at startup degrades to the
// memory driver with a warning rather than refusing to boot.
type RepositoryFactory struct {
	driver      string
	redisClient *redis.Client
	pgClient    *sqlx.DB
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		driver: cfg.Storage.Driver,
		logger: logger,
	}

	switch cfg.Storage.Driver {
	case DriverRedis:
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.driver = DriverMemory
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}

	case DriverPostgres:
		db, err := pgrepo.NewPostgresClient(cfg, logger)
		if err != nil {
			logger.Warnw("failed to connect to Postgres, falling back to memory repositories",
				"error", err,
			)
			factory.driver = DriverMemory
		} else {
			factory.pgClient = db
			logger.Info("using Postgres repositories")
		}
	}

	if factory.driver == DriverMemory {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateChannelRepository() ports.ChannelRepository {
	switch f.driver {
	case DriverRedis:
		return redisrepo.NewRedisChannelRepository(f.redisClient)
	case DriverPostgres:
		return pgrepo.NewPostgresChannelRepository(f.pgClient)
	}
	return memory.NewMemoryChannelRepository()
}

func (f *RepositoryFactory) CreateMembershipRepository() ports.MembershipRepository {
	switch f.driver {
	case DriverRedis:
		return redisrepo.NewRedisMembershipRepository(f.redisClient)
	case DriverPostgres:
		return pgrepo.NewPostgresMembershipRepository(f.pgClient)
	}
	return memory.NewMemoryMembershipRepository()
}

func (f *RepositoryFactory) CreateMembershipSettingRepository() ports.MembershipSettingRepository {
	switch f.driver {
	case DriverRedis:
		return redisrepo.NewRedisMembershipSettingRepository(f.redisClient)
	case DriverPostgres:
		return pgrepo.NewPostgresMembershipSettingRepository(f.pgClient)
	}
	return memory.NewMemoryMembershipSettingRepository()
}

func (f *RepositoryFactory) CreateDeviceSettingsRepository() ports.DeviceSettingsRepository {
	switch f.driver {
	case DriverRedis:
		return redisrepo.NewRedisDeviceSettingsRepository(f.redisClient)
	case DriverPostgres:
		return pgrepo.NewPostgresDeviceSettingsRepository(f.pgClient)
	}
	return memory.NewMemoryDeviceSettingsRepository()
}

func (f *RepositoryFactory) CreateChatMessageRepository() ports.ChatMessageRepository {
	switch f.driver {
	case DriverRedis:
		return redisrepo.NewRedisChatMessageRepository(f.redisClient)
	case DriverPostgres:
		return pgrepo.NewPostgresChatMessageRepository(f.pgClient)
	}
	return memory.NewMemoryChatMessageRepository()
}

func (f *RepositoryFactory) CreateMeetingTokenRepository() ports.MeetingTokenRepository {
	switch f.driver {
	case DriverRedis:
		return redisrepo.NewRedisMeetingTokenRepository(f.redisClient)
	case DriverPostgres:
		return pgrepo.NewPostgresMeetingTokenRepository(f.pgClient)
	}
	return memory.NewMemoryMeetingTokenRepository()
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	switch f.driver {
	case DriverRedis:
		return redisrepo.NewRedisUserRepository(f.redisClient)
	case DriverPostgres:
		return pgrepo.NewPostgresUserRepository(f.pgClient)
	}
	return memory.NewMemoryUserRepository()
}

// Close closes backend connections if any are open.
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	if f.pgClient != nil {
		return f.pgClient.Close()
	}
	return nil
}

// HealthCheck checks the configured backend's connectivity.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	switch f.driver {
	case DriverRedis:
		if f.redisClient != nil {
			return f.redisClient.Ping(ctx).Err()
		}
	case DriverPostgres:
		if f.pgClient != nil {
			return f.pgClient.PingContext(ctx)
		}
	}
	return nil
}
