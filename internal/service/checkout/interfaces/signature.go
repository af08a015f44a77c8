// internal/service/checkout/interfaces/signature.go
package interfaces

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"codgate/internal/service/checkout/domain"
)

// ComputeProxySignature 计算代理请求的期望签名:
// 除 signature 外的全部参数按 key 字典序排列，拼为 key=value 并以 & 连接，
// 用共享密钥做 HMAC-SHA256，取十六进制摘要。多值参数以逗号连接。
func ComputeProxySignature(query url.Values, secret string) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyProxySignature 校验代理请求签名。
// 签名缺失、密钥缺失、摘要不匹配一律拒绝（fail closed）；比较为常数时间。
func VerifyProxySignature(query url.Values, secret string) error {
	provided := query.Get("signature")
	if provided == "" || secret == "" {
		return domain.ErrUnauthenticated
	}
	expected := ComputeProxySignature(query, secret)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
		return domain.ErrUnauthenticated
	}
	return nil
}
