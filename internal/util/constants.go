package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 附件上传允许的 MIME 类型
const (
	MimeImage = "image/"
	MimePDF   = "application/pdf"
	MimeText  = "text/plain"
)

var AllowedAttachmentTypes = []string{MimeImage, MimePDF, MimeText}

const CSRFHeader = "X-CSRF-Token"

// UploadURLPrefix is where local-disk uploads are served from.
const UploadURLPrefix = "/uploads/"
