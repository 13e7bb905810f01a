package util

// 文档来源
const (
	StorageLocal = "local"
	StorageHTTP  = "http"
	StorageMinio = "minio"
)

const MimeJSON = "application/json"

// 文档名，用于日志和指标标签
const (
	DocumentQuestions = "questions"
	DocumentContent   = "content"
)
