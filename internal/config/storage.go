package config

import (
	"os"
	"sync"
)

type StorageConfig struct {
	Driver    string // "local" or "gcs"
	UploadDir string
	Bucket    string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		driver := os.Getenv("STORAGE_DRIVER")
		if driver == "" {
			driver = "local"
		}
		storageConfig = &StorageConfig{
			Driver:    driver,
			UploadDir: os.Getenv("STORAGE_UPLOAD_DIR"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
		}
	})
	return storageConfig
}
