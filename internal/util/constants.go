package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 题目配图上传相关常量
const (
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)
