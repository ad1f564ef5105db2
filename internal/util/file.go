package util

import (
	"fmt"
	"net/http"
	"strings"
)

// SniffLen is how much of a file DetectAllowedType looks at.
const SniffLen = 512

// DetectAllowedType 根据文件头判断 MIME 类型，不信任客户端声明的 Content-Type
// allowed 中的条目可以是前缀（如 "image/"）或完整类型
func DetectAllowedType(head []byte, allowed []string) (string, error) {
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	mimeType := http.DetectContentType(head)
	for _, a := range allowed {
		if strings.HasPrefix(mimeType, a) {
			return mimeType, nil
		}
	}
	return mimeType, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
}
