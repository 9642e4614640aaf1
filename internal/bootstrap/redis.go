package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gitnudge/portal/config"
)

const defaultRedisPingTimeout = 5 * time.Second

// RedisConnConfig contains configuration for the Redis connection backing
// sessions and registration flags.
type RedisConnConfig struct {
	Redis  config.RedisConfig
	Logger *slog.Logger
}

// redisMode names the topology a portal instance talks to.
type redisMode string

const (
	redisModeDirect   redisMode = "direct"
	redisModeSentinel redisMode = "sentinel"
	redisModeCluster  redisMode = "cluster"
)

// redisTarget is the resolved connection plan: topology, options and a
// credential-free description for logs.
type redisTarget struct {
	mode redisMode
	opts *redis.UniversalOptions
	desc string
}

// ConnectRedis resolves the configured topology, opens the client and
// checks it with a PING before handing it out.
//
//nolint:ireturn // sessions and flags only need redis.UniversalClient.
func ConnectRedis(cfg RedisConnConfig) (redis.UniversalClient, error) {
	target, err := resolveRedisTarget(cfg.Redis)
	if err != nil {
		return nil, err
	}

	client := target.client()

	timeout := cfg.Redis.PingTimeout
	if timeout <= 0 {
		timeout = defaultRedisPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis (%s): %w", target.mode, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "mode", string(target.mode), "addr", target.desc)
	}
	return client, nil
}

//nolint:ireturn // topology is chosen at runtime.
func (t redisTarget) client() redis.UniversalClient {
	switch t.mode {
	case redisModeCluster:
		return redis.NewClusterClient(t.opts.Cluster())
	case redisModeSentinel:
		return redis.NewFailoverClient(t.opts.Failover())
	default:
		return redis.NewClient(t.opts.Simple())
	}
}

// resolveRedisTarget turns RedisConfig into a connection plan without
// dialing anything.
func resolveRedisTarget(cfg config.RedisConfig) (redisTarget, error) {
	base := &redis.UniversalOptions{
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	}

	switch {
	case cfg.UseCluster:
		return clusterTarget(cfg, base)
	case cfg.UseSentinel:
		return sentinelTarget(cfg, base)
	default:
		return directTarget(cfg, base)
	}
}

func clusterTarget(cfg config.RedisConfig, opts *redis.UniversalOptions) (redisTarget, error) {
	opts.Addrs = trimmedAddrs(cfg.ClusterNodes)
	// Cluster mode ignores DB selection.
	opts.DB = 0

	if len(opts.Addrs) == 0 && strings.TrimSpace(cfg.URI) != "" {
		if err := applyURI(opts, cfg.URI); err != nil {
			return redisTarget{}, fmt.Errorf("parse redis cluster url: %w", err)
		}
		opts.DB = 0
	}
	if len(opts.Addrs) == 0 {
		return redisTarget{}, errors.New("redis cluster configuration requires at least one address")
	}

	return redisTarget{
		mode: redisModeCluster,
		opts: opts,
		desc: strings.Join(opts.Addrs, ","),
	}, nil
}

func sentinelTarget(cfg config.RedisConfig, opts *redis.UniversalOptions) (redisTarget, error) {
	opts.Addrs = trimmedAddrs(cfg.SentinelNodes)
	if len(opts.Addrs) == 0 {
		return redisTarget{}, errors.New("redis sentinel configuration requires at least one sentinel node")
	}
	if strings.TrimSpace(cfg.SentinelMasterName) == "" {
		return redisTarget{}, errors.New("redis sentinel configuration requires a master name")
	}
	opts.MasterName = cfg.SentinelMasterName
	opts.SentinelPassword = cfg.SentinelPassword

	return redisTarget{
		mode: redisModeSentinel,
		opts: opts,
		desc: cfg.SentinelMasterName + "@" + strings.Join(opts.Addrs, ","),
	}, nil
}

func directTarget(cfg config.RedisConfig, opts *redis.UniversalOptions) (redisTarget, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return redisTarget{}, errors.New("redis direct configuration requires a URI")
	}
	if err := applyURI(opts, uri); err != nil {
		return redisTarget{}, fmt.Errorf("parse redis url: %w", err)
	}

	return redisTarget{
		mode: redisModeDirect,
		opts: opts,
		desc: redactRedisAddr(uri),
	}, nil
}

// applyURI accepts either a bare host:port or a redis:// / rediss:// URL.
// Credentials and DB in the URL win over the separately configured ones.
func applyURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if !isRedisURL(uri) {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return err
	}
	opts.Addrs = []string{parsed.Addr}
	if parsed.Username != "" {
		opts.Username = parsed.Username
	}
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	if parsed.DB != 0 {
		opts.DB = parsed.DB
	}
	opts.TLSConfig = parsed.TLSConfig
	return nil
}

func trimmedAddrs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// redactRedisAddr strips userinfo so the address can be logged.
func redactRedisAddr(addr string) string {
	if !isRedisURL(addr) {
		return addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		if i := strings.LastIndex(addr, "@"); i > -1 {
			return addr[i+1:]
		}
		return addr
	}
	u.User = nil
	return u.String()
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}
