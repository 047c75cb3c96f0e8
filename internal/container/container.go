package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/config"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router wires modules from these singletons. Optional integrations stay nil
// when not configured.

// Repositories are the storage backends selected at startup.
type Repositories struct {
	Users    repo.UserRepository
	Listings repo.ListingRepository
	Audit    repo.AuditRepository
}

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	repos       Repositories

	brochures  *helpers.BrochureSigner
	assertions *helpers.AssertionManager
	rabbitPub  *helpers.RabbitPublisher
	esClient   *elasticsearch.Client
)

func SetConfig(c *config.Config)     { cfg = c }
func GetConfig() *config.Config      { return cfg }
func SetLogger(l *logrus.Logger)     { logger = l }
func GetLogger() *logrus.Logger      { return logger }
func SetPGPool(p *pgxpool.Pool)      { pgPool = p }
func GetPGPool() *pgxpool.Pool       { return pgPool }
func SetRedis(r *redis.Client)       { redisClient = r }
func GetRedis() *redis.Client        { return redisClient }
func SetRepositories(r Repositories) { repos = r }
func GetRepositories() Repositories  { return repos }

func SetBrochures(s *helpers.BrochureSigner)    { brochures = s }
func GetBrochures() *helpers.BrochureSigner     { return brochures }
func SetAssertions(m *helpers.AssertionManager) { assertions = m }
func GetAssertions() *helpers.AssertionManager  { return assertions }
func SetRabbitPub(p *helpers.RabbitPublisher)   { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher    { return rabbitPub }
func SetES(c *elasticsearch.Client)             { esClient = c }
func GetES() *elasticsearch.Client              { return esClient }
