package storage

import (
	"errors"

	"doc-anchor/conf"
)

// Storage unified mirror storage interface. Keys are content identifiers
// returned by the pinning service, so a mirror copy of every pinned
// document can be served without a round trip to the public gateway.
type Storage interface {
	Save(key string, data []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Exists(key string) bool
}

var (
	ErrNotFound = errors.New("file not found")
	ErrInvalid  = errors.New("invalid storage configuration")
)

// NewStorage create storage instance by configuration
func NewStorage() (Storage, error) {
	storageType := conf.Cfg.Mirror.Type

	switch storageType {
	case "local":
		return NewLocalStorage(conf.Cfg.Mirror.Local.BasePath)
	case "oss":
		return NewOSSStorage(conf.Cfg.Mirror.OSS.Endpoint, conf.Cfg.Mirror.OSS.AccessKey,
			conf.Cfg.Mirror.OSS.SecretKey, conf.Cfg.Mirror.OSS.Bucket)
	case "s3":
		return NewS3Storage(conf.Cfg.Mirror.S3.Region, conf.Cfg.Mirror.S3.Endpoint,
			conf.Cfg.Mirror.S3.AccessKey, conf.Cfg.Mirror.S3.SecretKey, conf.Cfg.Mirror.S3.Bucket)
	default:
		// Default to local storage
		return NewLocalStorage(conf.Cfg.Mirror.Local.BasePath)
	}
}
