package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ExportsPrefix 是异步导出文件的根前缀。
const ExportsPrefix = "exports/"

// UploadKey 生成 uploads/<userID>/<uuid><ext>。
func UploadKey(userID uint, ext string) string {
	return fmt.Sprintf("uploads/%d/%s%s", userID, uuid.NewString(), strings.ToLower(ext))
}

// ExportPrefix 返回某份简历导出文件的前缀。
func ExportPrefix(userID, resumeID uint) string {
	return fmt.Sprintf("%s%d/%d/", ExportsPrefix, userID, resumeID)
}

// ExportKey 生成 exports/<userID>/<resumeID>/<uuid>.pdf。
func ExportKey(userID, resumeID uint) string {
	return ExportPrefix(userID, resumeID) + uuid.NewString() + ".pdf"
}

// OwnedBy 判断对象键是否位于该用户的上传目录下。
func OwnedBy(objectKey string, userID uint) bool {
	return strings.HasPrefix(objectKey, fmt.Sprintf("uploads/%d/", userID))
}
