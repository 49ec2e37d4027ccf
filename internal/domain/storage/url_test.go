package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinKey(t *testing.T) {
	tests := []struct {
		prefix   string
		filename string
		expected string
	}{
		{"", "a.png", "a.png"},
		{"uploads", "a.png", "uploads/a.png"},
		{"uploads/", "a.png", "uploads/a.png"},
		{"uploads", "/a.png", "uploads/a.png"},
		{"a/b", "c/d.png", "a/b/c/d.png"},
		{"uploads", "../a.png", "uploads/../a.png"},
		{"./uploads", "a.png", "./uploads/a.png"},
		{"uploads", "", "uploads"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, JoinKey(tt.prefix, tt.filename), "JoinKey(%q, %q)", tt.prefix, tt.filename)
	}
}

func TestEffectiveEndpoint(t *testing.T) {
	assert.Equal(t, "s3.example.com", EffectiveEndpoint("s3.example.com", "oss-cn-beijing"))
	assert.Equal(t, "oss-cn-beijing.aliyuncs.com", EffectiveEndpoint("", "oss-cn-beijing"))
	assert.Equal(t, "oss-cn-hangzhou.aliyuncs.com", EffectiveEndpoint("", ""))
}

func TestGenerateURL(t *testing.T) {
	tests := []struct {
		name     string
		params   URLParams
		expected string
	}{
		{
			name:     "default endpoint without tls",
			params:   URLParams{Bucket: "assets", Filename: "a.png"},
			expected: "http://assets.oss-cn-hangzhou.aliyuncs.com/a.png",
		},
		{
			name:     "region and prefix",
			params:   URLParams{Bucket: "assets", Region: "oss-cn-beijing", Secure: true, Prefix: "uploads", Filename: "a.png"},
			expected: "https://assets.oss-cn-beijing.aliyuncs.com/uploads/a.png",
		},
		{
			name:     "explicit endpoint",
			params:   URLParams{Bucket: "assets", Endpoint: "storage.internal", Region: "ignored", Secure: true, Filename: "a.png"},
			expected: "https://assets.storage.internal/a.png",
		},
		{
			name:     "custom domain on public acl",
			params:   URLParams{ACL: "public-read", CustomDomain: "cdn.example.com", Bucket: "assets", Endpoint: "e", Secure: true, Prefix: "p", Filename: "a.png"},
			expected: "https://cdn.example.com/p/a.png",
		},
		{
			name:     "custom domain without acl",
			params:   URLParams{CustomDomain: "cdn.example.com", Bucket: "assets", Filename: "a.png"},
			expected: "http://cdn.example.com/a.png",
		},
		{
			name:     "private acl ignores custom domain",
			params:   URLParams{ACL: ACLPrivate, CustomDomain: "cdn.example.com", Bucket: "assets", Region: "oss-cn-beijing", Secure: true, Filename: "a.png"},
			expected: "https://assets.oss-cn-beijing.aliyuncs.com/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateURL(tt.params))
			// deterministic
			assert.Equal(t, GenerateURL(tt.params), GenerateURL(tt.params))
		})
	}
}
