package freqsketch

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	clientLock    sync.Mutex
	redisClient   *redis.Client
	clientOptions RedisConnOptions
)

// RedisConnOptions describes the Redis server shared sketches live on. Every process
// ingesting into the same sketch must point at the same server and DB.
type RedisConnOptions struct {
	DB                int
	Network           string
	Address           string
	Username          string
	Password          string
	ConnectionTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	PoolSize          int
	TLSConfig         *tls.Config
}

func (o RedisConnOptions) redisOptions() *redis.Options {
	return &redis.Options{
		DB:           o.DB,
		Network:      o.Network,
		Addr:         o.Address,
		Username:     o.Username,
		Password:     o.Password,
		DialTimeout:  o.ConnectionTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
		TLSConfig:    o.TLSConfig,
	}
}

// GetRedisClient returns the client shared sketches are created on, nil until
// MakeRedisClient succeeds
func GetRedisClient() *redis.Client {
	clientLock.Lock()
	defer clientLock.Unlock()
	return redisClient
}

// MakeRedisClient creates the client shared sketches are created on. Sketches attach
// to each other by key, so a process talks to one server: calling it again with the
// same options is a no-op, with other options it fails.
func MakeRedisClient(options RedisConnOptions) error {
	if options.Address == "" {
		return fmt.Errorf("%w: redis address should not be empty", ErrInvalidParameter)
	}
	clientLock.Lock()
	defer clientLock.Unlock()
	if redisClient != nil {
		if options != clientOptions {
			return fmt.Errorf("%w: redis client already made for %s db %d", ErrInvalidParameter, clientOptions.Address, clientOptions.DB)
		}
		return nil
	}
	redisClient = redis.NewClient(options.redisOptions())
	clientOptions = options
	return nil
}

// ParseRedisURI converts a redis:// or rediss:// uri into RedisConnOptions
func ParseRedisURI(uri string) (*RedisConnOptions, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("freqsketch: could not parse redis uri: %v", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("freqsketch: unsupported uri scheme %q", u.Scheme)
	}
	options, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("freqsketch: error while parsing redis uri: %v", err)
	}
	return makeConnOptions(options), nil
}

func makeConnOptions(options *redis.Options) *RedisConnOptions {
	return &RedisConnOptions{
		DB:                options.DB,
		Network:           options.Network,
		Address:           options.Addr,
		Username:          options.Username,
		Password:          options.Password,
		ConnectionTimeout: options.DialTimeout,
		ReadTimeout:       options.ReadTimeout,
		WriteTimeout:      options.WriteTimeout,
		PoolSize:          options.PoolSize,
		TLSConfig:         options.TLSConfig,
	}
}
