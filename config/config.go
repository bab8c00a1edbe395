package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// loadEnv loads .env once; missing files fall back to the process
// environment.
func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file found, using environment variables")
		}
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

var (
	redisOnce   sync.Once
	redisConfig *RedisConfig
)

type RedisConfig struct {
	Addr string
	DB   int
}

func GetRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		loadEnv()
		redisConfig = &RedisConfig{
			Addr: getenv("REDIS_ADDR", "localhost:6379"),
			DB:   getenvInt("REDIS_DB", 0),
		}
	})
	return redisConfig
}

var (
	minioOnce   sync.Once
	minioConfig *MinioConfig
)

type MinioConfig struct {
	AccessKey  string
	SecretKey  string
	Endpoint   string
	UseSSL     bool
	Region     string
	BucketName string
}

func GetMinioConfig() *MinioConfig {
	minioOnce.Do(func() {
		loadEnv()
		minioConfig = &MinioConfig{
			AccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:  os.Getenv("MINIO_SECRET_KEY"),
			Endpoint:   getenv("MINIO_ENDPOINT", "localhost:9000"),
			UseSSL:     getenvBool("MINIO_USE_SSL", false),
			Region:     os.Getenv("MINIO_REGION"),
			BucketName: getenv("MINIO_BUCKET_NAME", "clincerta-documents"),
		}
	})
	return minioConfig
}

var (
	s3Once   sync.Once
	s3Config *S3Config
)

type S3Config struct {
	AccessKey  string
	SecretKey  string
	Region     string
	BucketName string
}

func GetS3Config() *S3Config {
	s3Once.Do(func() {
		loadEnv()
		s3Config = &S3Config{
			AccessKey:  os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Region:     getenv("AWS_REGION", "us-east-1"),
			BucketName: getenv("S3_BUCKET_NAME", "clincerta-documents"),
		}
	})
	return s3Config
}

var (
	textractOnce   sync.Once
	textractConfig *TextractConfig
)

type TextractConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

func GetTextractConfig() *TextractConfig {
	textractOnce.Do(func() {
		loadEnv()
		textractConfig = &TextractConfig{
			Region:    getenv("AWS_REGION", "us-east-1"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
	})
	return textractConfig
}

var (
	storageOnce sync.Once
	storageType string
)

// GetStorageType returns the configured object storage backend name.
func GetStorageType() string {
	storageOnce.Do(func() {
		loadEnv()
		storageType = getenv("STORAGE_BACKEND", "minio")
	})
	return storageType
}
