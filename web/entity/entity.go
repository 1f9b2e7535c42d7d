// Package entity defines data structures shared by the web layer.
package entity

import (
	"crypto/tls"
	"math"
	"net"
	"strings"

	"quill/util/common"
)

// Msg is the standard JSON response envelope.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// AllSetting mirrors the key/value settings table as one typed object. The
// json tag of each field doubles as its settings key.
type AllSetting struct {
	// Web server
	WebListen     string `json:"webListen" form:"webListen"`
	WebDomain     string `json:"webDomain" form:"webDomain"`
	WebPort       int    `json:"webPort" form:"webPort"`
	WebCertFile   string `json:"webCertFile" form:"webCertFile"`
	WebKeyFile    string `json:"webKeyFile" form:"webKeyFile"`
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // minutes
	PageSize      int    `json:"pageSize" form:"pageSize"`
	TimeLocation  string `json:"timeLocation" form:"timeLocation"`

	// Security
	TwoFactorEnable bool   `json:"twoFactorEnable" form:"twoFactorEnable"`
	TwoFactorToken  string `json:"twoFactorToken" form:"twoFactorToken"`
	LoginLimit      int    `json:"loginLimit" form:"loginLimit"` // attempts per minute per IP, 0 disables

	// Contact mail relay
	SMTPHost         string `json:"smtpHost" form:"smtpHost"`
	SMTPPort         int    `json:"smtpPort" form:"smtpPort"`
	SMTPUsername     string `json:"smtpUsername" form:"smtpUsername"`
	SMTPPassword     string `json:"smtpPassword" form:"smtpPassword"`
	SMTPFrom         string `json:"smtpFrom" form:"smtpFrom"`
	ContactRecipient string `json:"contactRecipient" form:"contactRecipient"`
	SMTPTimeout      int    `json:"smtpTimeout" form:"smtpTimeout"` // seconds

	// Telegram notifications
	TgBotEnable      bool   `json:"tgBotEnable" form:"tgBotEnable"`
	TgBotToken       string `json:"tgBotToken" form:"tgBotToken"`
	TgBotChatId      string `json:"tgBotChatId" form:"tgBotChatId"`
	TgBotLoginNotify bool   `json:"tgBotLoginNotify" form:"tgBotLoginNotify"`

	// Rate-limit store
	RedisAddr     string `json:"redisAddr" form:"redisAddr"`
	RedisPassword string `json:"redisPassword" form:"redisPassword"`
	RedisDB       int    `json:"redisDB" form:"redisDB"`
}

// CheckValid validates the settings before they are persisted.
func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not valid ip:", s.WebListen)
		}
	}

	if s.WebPort <= 0 || s.WebPort > math.MaxUint16 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}

	if s.WebCertFile != "" || s.WebKeyFile != "" {
		_, err := tls.LoadX509KeyPair(s.WebCertFile, s.WebKeyFile)
		if err != nil {
			return common.NewErrorf("cert file <%v> or key file <%v> invalid: %v", s.WebCertFile, s.WebKeyFile, err)
		}
	}

	if s.SMTPPort < 0 || s.SMTPPort > math.MaxUint16 {
		return common.NewError("smtp port is not a valid port:", s.SMTPPort)
	}

	if s.SessionMaxAge <= 0 {
		return common.NewError("session max age must be positive:", s.SessionMaxAge)
	}

	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}

	return nil
}
