package config

import "time"

const (
	KindMemory   = "memory"
	KindPostgres = "postgres"
	KindRedis    = "redis"
)

type Config struct {
	Kind          string        `yaml:"kind"`
	DBDsn         string        `yaml:"dsn"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Timeout       time.Duration `yaml:"timeout"`
}
