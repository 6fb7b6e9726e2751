package infra

import (
    "time"

    "github.com/gocql/gocql"
)

// ScyllaConfig holds everything needed to build a session against the
// cluster under test.
type ScyllaConfig struct {
    Hosts    []string
    Port     int
    Keyspace string
    Username string
    Password string
    SSL      bool
    Timeout  time.Duration
}

type ScyllaClient struct {
    Session *gocql.Session
}

func NewScyllaClient(cfg ScyllaConfig) (*ScyllaClient, error) {
    cluster := gocql.NewCluster(cfg.Hosts...)
    if cfg.Port > 0 {
        cluster.Port = cfg.Port
    }
    cluster.Keyspace = cfg.Keyspace
    cluster.Consistency = gocql.Quorum
    cluster.ProtoVersion = 4
    cluster.Timeout = cfg.Timeout
    if cluster.Timeout == 0 {
        cluster.Timeout = 5 * time.Second
    }
    cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 3}
    cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

    if cfg.Username != "" && cfg.Password != "" {
        cluster.Authenticator = gocql.PasswordAuthenticator{
            Username: cfg.Username,
            Password: cfg.Password,
        }
    }
    if cfg.SSL {
        cluster.SslOpts = &gocql.SslOptions{EnableHostVerification: false}
    }

    session, err := cluster.CreateSession()
    if err != nil {
        return nil, err
    }

    return &ScyllaClient{Session: session}, nil
}

func (s *ScyllaClient) Close() {
    if s.Session != nil {
        s.Session.Close()
    }
}
